package yahoo

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/milestoneml/equityprep/internal/dataset"
	"github.com/milestoneml/equityprep/internal/featureconfig"
)

// makeStatement builds a wire statement with {raw} values plus an endDate.
func makeStatement(endDate string, rows map[string]float64) Statement {
	stmt := Statement{
		"endDate": json.RawMessage(fmt.Sprintf(`{"raw": 0, "fmt": %q}`, endDate)),
		"maxAge":  json.RawMessage(`86400`),
	}
	for k, v := range rows {
		stmt[k] = json.RawMessage(fmt.Sprintf(`{"raw": %g, "fmt": "x"}`, v))
	}
	return stmt
}

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AAPL", "AAPL"},
		{"BRK.B", "BRK-B"},
		{"BF.B", "BF-B"},
		{" MSFT ", "MSFT"},
		{"BRK-B", "BRK-B"},
	}

	for _, tt := range tests {
		if got := NormalizeSymbol(tt.in); got != tt.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Total Revenue", "totalrevenue"},
		{"totalRevenue", "totalrevenue"},
		{"Income Tax (Benefit) Expense", "incometaxbenefitexpense"},
		{"EPS (Diluted)", "epsdiluted"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeLabel(tt.in); got != tt.want {
			t.Errorf("normalizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveExact(t *testing.T) {
	stmt := makeStatement("2024-03-31", map[string]float64{
		"Total Revenue": 100,
		"totalRevenue":  200,
	})

	// First candidate with an exact key wins even when a normalized
	// equivalent exists.
	v, ok := Resolve(stmt, []string{"Total Revenue", "TotalRevenue"}, nil)
	if !ok || v != 100 {
		t.Errorf("Resolve = (%v, %v), want (100, true)", v, ok)
	}
}

func TestResolveNormalized(t *testing.T) {
	stmt := makeStatement("2024-03-31", map[string]float64{
		"totalRevenue":     100,
		"operatingIncome":  25,
		"netIncomeCommon":  10,
		"interestExpense":  3,
		"incomeTaxExpense": 5,
	})

	tests := []struct {
		candidates []string
		want       float64
	}{
		{[]string{"Total Revenue", "TotalRevenue"}, 100},
		{[]string{"Operating Income", "OperatingIncome"}, 25},
		{[]string{"Interest Expense"}, 3},
	}

	for _, tt := range tests {
		v, ok := Resolve(stmt, tt.candidates, nil)
		if !ok || v != tt.want {
			t.Errorf("Resolve(%v) = (%v, %v), want (%v, true)", tt.candidates, v, ok, tt.want)
		}
	}
}

func TestResolveKeywordShortestKey(t *testing.T) {
	stmt := makeStatement("2024-03-31", map[string]float64{
		"interestExpenseNonOperating": 7,
		"interestExpense":             3,
		"totalRevenue":                100,
	})

	// No candidate matches; the keyword tier must pick the shortest
	// hit (the roll-up row), not the qualified variant.
	v, ok := Resolve(stmt, []string{"Interest And Debt Expense Net Of Capitalized Interest"}, []string{"interest"})
	if !ok || v != 3 {
		t.Errorf("Resolve = (%v, %v), want (3, true)", v, ok)
	}
}

func TestResolveNoMatch(t *testing.T) {
	stmt := makeStatement("2024-03-31", map[string]float64{"totalRevenue": 100})

	if _, ok := Resolve(stmt, []string{"Gross Profit"}, nil); ok {
		t.Error("expected no match without keywords")
	}
	if _, ok := Resolve(stmt, []string{"Gross Profit"}, []string{"gross"}); ok {
		t.Error("expected no match with unmatched keywords")
	}
}

func testWindow() []dataset.Quarter {
	return []dataset.Quarter{
		{Year: 2024, Q: 3}, {Year: 2024, Q: 4}, {Year: 2025, Q: 1},
	}
}

func TestItemsForQuarters(t *testing.T) {
	stmts := &QuarterlyStatements{
		Symbol: "AAPL",
		Income: []Statement{
			makeStatement("2025-03-31", map[string]float64{"totalRevenue": 300, "netIncome": 30}),
			makeStatement("2024-12-31", map[string]float64{"totalRevenue": 200, "netIncome": 20}),
			makeStatement("2024-09-30", map[string]float64{"totalRevenue": 100, "netIncome": 10}),
			// Before the window: must not appear.
			makeStatement("2024-06-30", map[string]float64{"totalRevenue": 50, "netIncome": 5}),
		},
	}

	items := []featureconfig.LineItem{
		{Name: "Revenue", Statement: featureconfig.StatementIncome, Candidates: []string{"Total Revenue"}},
		{Name: "NetIncome", Statement: featureconfig.StatementIncome, Candidates: []string{"Net Income"}},
	}

	cells := ItemsForQuarters(stmts, items, nil, testWindow())

	want := map[string]float64{
		"Revenue_2024Q3":   100,
		"Revenue_2024Q4":   200,
		"Revenue_2025Q1":   300,
		"NetIncome_2024Q3": 10,
		"NetIncome_2024Q4": 20,
		"NetIncome_2025Q1": 30,
	}
	if len(cells) != len(want) {
		t.Fatalf("got %d cells, want %d: %v", len(cells), len(want), cells)
	}
	for col, v := range want {
		if cells[col] != v {
			t.Errorf("%s = %v, want %v", col, cells[col], v)
		}
	}
}

func TestItemsForQuartersFallbackStatement(t *testing.T) {
	stmts := &QuarterlyStatements{
		Symbol: "XOM",
		Income: []Statement{
			makeStatement("2024-12-31", map[string]float64{"totalRevenue": 200}),
		},
		Cashflow: []Statement{
			makeStatement("2024-12-31", map[string]float64{"interestPaid": 4}),
		},
	}

	items := []featureconfig.LineItem{
		{
			Name:              "InterestExpense",
			Statement:         featureconfig.StatementIncome,
			Candidates:        []string{"Interest Expense"},
			Keywords:          []string{"interest"},
			FallbackStatement: featureconfig.StatementCashflow,
		},
	}

	cells := ItemsForQuarters(stmts, items, nil, testWindow())
	if got := cells["InterestExpense_2024Q4"]; got != 4 {
		t.Errorf("InterestExpense_2024Q4 = %v, want 4 (from cashflow fallback)", got)
	}
}

func TestItemsForQuartersDerived(t *testing.T) {
	stmts := &QuarterlyStatements{
		Symbol: "NVDA",
		Income: []Statement{
			makeStatement("2024-12-31", map[string]float64{
				"pretaxIncome": 120,
				"netIncome":    100,
			}),
			makeStatement("2025-03-31", map[string]float64{
				"pretaxIncome":     150,
				"netIncome":        130,
				"incomeTaxExpense": 19,
			}),
		},
	}

	items := []featureconfig.LineItem{
		{Name: "PretaxIncome", Statement: featureconfig.StatementIncome, Candidates: []string{"Pretax Income"}},
		{Name: "NetIncome", Statement: featureconfig.StatementIncome, Candidates: []string{"Net Income"}},
		{Name: "IncomeTaxExpense", Statement: featureconfig.StatementIncome, Candidates: []string{"Income Tax Expense"}},
	}
	derived := []featureconfig.Derived{
		{Name: "IncomeTaxExpense", Minuend: "PretaxIncome", Subtrahend: "NetIncome"},
	}

	cells := ItemsForQuarters(stmts, items, derived, testWindow())

	// 2024Q4 has no vendor tax row: derived as 120 - 100.
	if got := cells["IncomeTaxExpense_2024Q4"]; got != 20 {
		t.Errorf("IncomeTaxExpense_2024Q4 = %v, want derived 20", got)
	}
	// 2025Q1 resolved directly: the derived value must not overwrite it.
	if got := cells["IncomeTaxExpense_2025Q1"]; got != 19 {
		t.Errorf("IncomeTaxExpense_2025Q1 = %v, want vendor 19", got)
	}
}

func TestItemsForQuartersEmpty(t *testing.T) {
	stmts := &QuarterlyStatements{Symbol: "GHST"}
	items := []featureconfig.LineItem{
		{Name: "Revenue", Statement: featureconfig.StatementIncome, Candidates: []string{"Total Revenue"}},
	}

	cells := ItemsForQuarters(stmts, items, nil, testWindow())
	if len(cells) != 0 {
		t.Errorf("expected no cells for empty statements, got %v", cells)
	}
}
