package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Quarter identifies one calendar quarter, e.g. 2024Q1.
type Quarter struct {
	Year int
	Q    int // 1..4
}

// ParseQuarter parses a "2024Q1"-style label.
func ParseQuarter(label string) (Quarter, error) {
	if len(label) != 6 || label[4] != 'Q' {
		return Quarter{}, fmt.Errorf("invalid quarter label: %q", label)
	}

	year, err := strconv.Atoi(label[:4])
	if err != nil {
		return Quarter{}, fmt.Errorf("invalid quarter label: %q", label)
	}

	q, err := strconv.Atoi(label[5:])
	if err != nil || q < 1 || q > 4 {
		return Quarter{}, fmt.Errorf("invalid quarter label: %q", label)
	}

	return Quarter{Year: year, Q: q}, nil
}

// Label returns the "2024Q1" form.
func (q Quarter) Label() string {
	return fmt.Sprintf("%04dQ%d", q.Year, q.Q)
}

// Index returns a monotonically increasing quarter number,
// usable as the x-axis of a regression over quarters.
func (q Quarter) Index() int {
	return q.Year*4 + q.Q - 1
}

// Before reports whether q is earlier than other.
func (q Quarter) Before(other Quarter) bool {
	return q.Index() < other.Index()
}

// Next returns the following quarter.
func (q Quarter) Next() Quarter {
	if q.Q == 4 {
		return Quarter{Year: q.Year + 1, Q: 1}
	}
	return Quarter{Year: q.Year, Q: q.Q + 1}
}

// Prev returns the preceding quarter.
func (q Quarter) Prev() Quarter {
	if q.Q == 1 {
		return Quarter{Year: q.Year - 1, Q: 4}
	}
	return Quarter{Year: q.Year, Q: q.Q - 1}
}

// QuarterOf returns the calendar quarter containing t.
func QuarterOf(t time.Time) Quarter {
	return Quarter{
		Year: t.Year(),
		Q:    (int(t.Month())-1)/3 + 1,
	}
}

// StartDate returns the first day of the quarter (UTC).
func (q Quarter) StartDate() time.Time {
	return time.Date(q.Year, time.Month((q.Q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
}

// EndDate returns the last day of the quarter (UTC).
func (q Quarter) EndDate() time.Time {
	return q.Next().StartDate().AddDate(0, 0, -1)
}

// LastCompleted returns the most recent quarter that has fully
// elapsed as of now, i.e. the quarter before the current one.
func LastCompleted(now time.Time) Quarter {
	return QuarterOf(now).Prev()
}

// Window returns n consecutive quarters in ascending order,
// ending at (and including) end.
func Window(end Quarter, n int) []Quarter {
	if n <= 0 {
		return nil
	}

	quarters := make([]Quarter, n)
	q := end
	for i := n - 1; i >= 0; i-- {
		quarters[i] = q
		q = q.Prev()
	}
	return quarters
}

// PeriodColumn joins a feature name with a quarter suffix:
// PeriodColumn("Revenue", 2024Q1) -> "Revenue_2024Q1".
func PeriodColumn(base string, q Quarter) string {
	return base + "_" + q.Label()
}

// SplitPeriodColumn splits a period-suffixed column name into its base
// feature name and quarter. ok is false for column names without a
// well-formed "_YYYYQn" suffix (static descriptors, Rate columns, ...).
func SplitPeriodColumn(name string) (base string, q Quarter, ok bool) {
	// Suffix layout is fixed-width: "_" + 4-digit year + "Q" + digit.
	if len(name) < 8 || name[len(name)-7] != '_' {
		return "", Quarter{}, false
	}

	q, err := ParseQuarter(name[len(name)-6:])
	if err != nil {
		return "", Quarter{}, false
	}

	return name[:len(name)-7], q, true
}

// QoQColumn names the delta column for a feature between a quarter
// and its predecessor: QoQColumn("Revenue", 2024Q2) -> "Revenue_QoQ_2024Q2".
func QoQColumn(base string, newer Quarter) string {
	return base + "_QoQ_" + newer.Label()
}

// RateColumn names the long-run rate-of-change column for a feature.
func RateColumn(base string) string {
	return base + "_Rate"
}

// KPIColumn names a derived ratio column for one quarter:
// KPIColumn("ROA", 2024Q1) -> "KPI_ROA_2024Q1".
func KPIColumn(name string, q Quarter) string {
	return PeriodColumn("KPI_"+name, q)
}

// IsQoQColumn reports whether a column holds a quarter-over-quarter delta.
func IsQoQColumn(name string) bool {
	return strings.Contains(name, "_QoQ_")
}

// IsRateColumn reports whether a column holds a rate-of-change slope.
func IsRateColumn(name string) bool {
	return strings.HasSuffix(name, "_Rate")
}

// IsKPIColumn reports whether a column holds a derived financial ratio.
func IsKPIColumn(name string) bool {
	return strings.HasPrefix(name, "KPI_")
}
