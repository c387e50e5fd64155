package yahoo

import (
	"sort"
	"strings"
	"time"

	"github.com/milestoneml/equityprep/internal/dataset"
	"github.com/milestoneml/equityprep/internal/featureconfig"
)

// Statements returns the history for one report kind.
func (q *QuarterlyStatements) Statements(statement string) []Statement {
	switch statement {
	case featureconfig.StatementIncome:
		return q.Income
	case featureconfig.StatementBalance:
		return q.Balance
	case featureconfig.StatementCashflow:
		return q.Cashflow
	}
	return nil
}

// normalizeLabel lowercases and strips everything but letters and digits,
// making "Total Revenue", "TotalRevenue" and "totalRevenue" compare equal.
func normalizeLabel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Resolve finds a line item's value in one statement. Three tiers:
//  1. exact key match, first candidate wins
//  2. normalized match (vendor keys are camelCase, candidates human-readable)
//  3. keyword search: a normalized keyword contained in a normalized key;
//     among several hits the shortest key wins (roll-up rows carry the
//     shortest names, variants add qualifiers)
func Resolve(stmt Statement, candidates, keywords []string) (float64, bool) {
	for _, cand := range candidates {
		if v, ok := stmt.Value(cand); ok {
			return v, true
		}
	}

	keys := stmt.Keys()
	normToKey := make(map[string]string, len(keys))
	for _, k := range keys {
		norm := normalizeLabel(k)
		if _, exists := normToKey[norm]; !exists {
			normToKey[norm] = k
		}
	}
	for _, cand := range candidates {
		if k, ok := normToKey[normalizeLabel(cand)]; ok {
			return stmt.Value(k)
		}
	}

	if len(keywords) == 0 {
		return 0, false
	}
	var hits []string
	for _, k := range keys {
		norm := normalizeLabel(k)
		for _, kw := range keywords {
			if strings.Contains(norm, normalizeLabel(kw)) {
				hits = append(hits, k)
				break
			}
		}
	}
	if len(hits) == 0 {
		return 0, false
	}
	sort.Slice(hits, func(i, j int) bool {
		if len(hits[i]) != len(hits[j]) {
			return len(hits[i]) < len(hits[j])
		}
		return hits[i] < hits[j]
	})
	return stmt.Value(hits[0])
}

// itemSeries resolves one line item across a statement history, keyed by
// calendar quarter. Statements are walked in ascending period order so a
// later report for the same quarter supersedes an earlier one.
func itemSeries(stmts []Statement, candidates, keywords []string, allowed map[dataset.Quarter]bool) map[dataset.Quarter]float64 {
	type dated struct {
		at   time.Time
		stmt Statement
	}
	ordered := make([]dated, 0, len(stmts))
	for _, st := range stmts {
		at, ok := st.EndDate()
		if !ok {
			continue
		}
		ordered = append(ordered, dated{at, st})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].at.Before(ordered[j].at) })

	series := make(map[dataset.Quarter]float64)
	for _, d := range ordered {
		v, ok := Resolve(d.stmt, candidates, keywords)
		if !ok {
			continue
		}
		if q := dataset.QuarterOf(d.at); allowed[q] {
			series[q] = v
		}
	}
	return series
}

// ItemsForQuarters assembles the per-quarter cells for one symbol:
// column name (Item_YYYYQn) to value, window quarters only. A fallback
// statement is searched only when the primary produced nothing, and derived
// definitions fill remaining holes from already-resolved items.
func ItemsForQuarters(stmts *QuarterlyStatements, items []featureconfig.LineItem, derived []featureconfig.Derived, window []dataset.Quarter) map[string]float64 {
	allowed := make(map[dataset.Quarter]bool, len(window))
	for _, q := range window {
		allowed[q] = true
	}

	cells := make(map[string]float64)
	for _, it := range items {
		series := itemSeries(stmts.Statements(it.Statement), it.Candidates, it.Keywords, allowed)
		if len(series) == 0 && it.FallbackStatement != "" {
			series = itemSeries(stmts.Statements(it.FallbackStatement), it.Candidates, it.Keywords, allowed)
		}
		for q, v := range series {
			cells[dataset.PeriodColumn(it.Name, q)] = v
		}
	}

	for _, d := range derived {
		for _, q := range window {
			col := dataset.PeriodColumn(d.Name, q)
			if _, ok := cells[col]; ok {
				continue
			}
			minuend, okM := cells[dataset.PeriodColumn(d.Minuend, q)]
			subtrahend, okS := cells[dataset.PeriodColumn(d.Subtrahend, q)]
			if okM && okS {
				cells[col] = minuend - subtrahend
			}
		}
	}

	return cells
}
