package featureconfig

import (
	"time"

	"github.com/milestoneml/equityprep/internal/dataset"
)

// Statement identifies which quarterly report a line item is read from.
const (
	StatementIncome   = "income"
	StatementBalance  = "balance"
	StatementCashflow = "cashflow"
)

// Config is the full feature-pipeline definition
type Config struct {
	Meta      Meta          `yaml:"meta" json:"meta"`
	Window    Window        `yaml:"window" json:"window"`
	Universe  Universe      `yaml:"universe" json:"universe"`
	LineItems []LineItem    `yaml:"line_items" json:"line_items"`
	Derived   []Derived     `yaml:"derived" json:"derived"`
	Macro     []MacroSeries `yaml:"macro" json:"macro"`
	MarketCap MarketCap     `yaml:"market_cap" json:"market_cap"`
	Clean     Clean         `yaml:"clean" json:"clean"`
	Split     Split         `yaml:"split" json:"split"`
	Impute    Impute        `yaml:"impute" json:"impute"`
	KPIs      []KPI         `yaml:"kpis" json:"kpis"`
	QoQ       QoQ           `yaml:"qoq" json:"qoq"`
}

// Meta dataset identity
type Meta struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// Window selects the reporting quarters the pipeline operates on.
type Window struct {
	Quarters int    `yaml:"quarters" json:"quarters"`
	End      string `yaml:"end" json:"end"` // "auto" | "2025Q1"-style label
}

// EndQuarter resolves the window end. "auto" means the most recently
// completed calendar quarter relative to now.
func (w Window) EndQuarter(now time.Time) (dataset.Quarter, error) {
	if w.End == "auto" || w.End == "" {
		return dataset.LastCompleted(now), nil
	}
	return dataset.ParseQuarter(w.End)
}

// Resolve returns the full window as ascending quarters.
func (w Window) Resolve(now time.Time) ([]dataset.Quarter, error) {
	end, err := w.EndQuarter(now)
	if err != nil {
		return nil, err
	}
	return dataset.Window(end, w.Quarters), nil
}

// Universe acquisition scope
type Universe struct {
	AssetClasses []string `yaml:"asset_classes" json:"asset_classes"`
	Exchanges    []string `yaml:"exchanges" json:"exchanges"`
}

// LineItem is one fundamental metric pulled from the vendor statements.
// Candidates are tried in order; vendors vary the row labels, so resolution
// falls back from exact to normalized to keyword-contains matching.
type LineItem struct {
	Name       string   `yaml:"name" json:"name"`
	Statement  string   `yaml:"statement" json:"statement"`
	Candidates []string `yaml:"candidates" json:"candidates"`
	Keywords   []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	// FallbackStatement is searched when the primary statement has no match
	// (interest expense sometimes only shows up in the cash flow report).
	FallbackStatement string `yaml:"fallback_statement,omitempty" json:"fallback_statement,omitempty"`
}

// Derived fills a line item from two others when the vendor omits it:
// value = minuend - subtrahend, applied per quarter.
type Derived struct {
	Name       string `yaml:"name" json:"name"`
	Minuend    string `yaml:"minuend" json:"minuend"`
	Subtrahend string `yaml:"subtrahend" json:"subtrahend"`
}

// MacroSeries maps one FRED series to a dataset column family.
type MacroSeries struct {
	Name   string `yaml:"name" json:"name"`
	Series string `yaml:"series" json:"series"`
}

// MarketCap bucket definition. Bins are ascending lower edges over the
// source column (thousands of USD): a value lands in [bins[i], bins[i+1])
// and gets labels[i]; the last bucket is unbounded above. Values below
// bins[0] stay unlabeled. len(labels) == len(bins).
type MarketCap struct {
	Source string    `yaml:"source" json:"source"`
	Bins   []float64 `yaml:"bins" json:"bins"`
	Labels []string  `yaml:"labels" json:"labels"`
}

// Clean row/column filter definition
type Clean struct {
	DropColumns      []string `yaml:"drop_columns" json:"drop_columns"`
	DropItemPrefixes []string `yaml:"drop_item_prefixes" json:"drop_item_prefixes"`
	RequiredNonzero  []string `yaml:"required_nonzero" json:"required_nonzero"`
	OneHot           []string `yaml:"one_hot" json:"one_hot"`
}

// Split stratified train/test split parameters
type Split struct {
	TestSize      float64 `yaml:"test_size" json:"test_size"`
	Seed          int64   `yaml:"seed" json:"seed"`
	MinStratum    int     `yaml:"min_stratum" json:"min_stratum"`
	TargetQuarter string  `yaml:"target_quarter" json:"target_quarter"` // "auto" = newest window quarter
}

// Impute grouped fill parameters. Grouping is fixed to (Sector, MarketCap).
type Impute struct {
	Statistic string `yaml:"statistic" json:"statistic"` // median | mean
	MinGroup  int    `yaml:"min_group" json:"min_group"`
}

// KPI is one per-quarter ratio: (numerator - subtract) / denominator.
type KPI struct {
	Name        string `yaml:"name" json:"name"`
	Numerator   string `yaml:"numerator" json:"numerator"`
	Subtract    string `yaml:"subtract,omitempty" json:"subtract,omitempty"`
	Denominator string `yaml:"denominator" json:"denominator"`
}

// QoQ quarter-over-quarter derivation switches
type QoQ struct {
	IncludeMacro bool `yaml:"include_macro" json:"include_macro"`
	IncludeKPIs  bool `yaml:"include_kpis" json:"include_kpis"`
}

// FindLineItem looks a line item up by name.
func (c *Config) FindLineItem(name string) (*LineItem, bool) {
	for i := range c.LineItems {
		if c.LineItems[i].Name == name {
			return &c.LineItems[i], true
		}
	}
	return nil, false
}

// FindDerived looks a derived definition up by target name.
func (c *Config) FindDerived(name string) (*Derived, bool) {
	for i := range c.Derived {
		if c.Derived[i].Name == name {
			return &c.Derived[i], true
		}
	}
	return nil, false
}

// LineItemNames returns the configured item names in order.
func (c *Config) LineItemNames() []string {
	names := make([]string, 0, len(c.LineItems))
	for _, it := range c.LineItems {
		names = append(names, it.Name)
	}
	return names
}

// MacroNames returns the configured macro column families in order.
func (c *Config) MacroNames() []string {
	names := make([]string, 0, len(c.Macro))
	for _, m := range c.Macro {
		names = append(names, m.Name)
	}
	return names
}

// RunSnapshot records the exact configuration a stage ran with,
// written to the run log for reproducibility.
type RunSnapshot struct {
	ConfigHash string    `json:"config_hash"`
	Dataset    string    `json:"dataset"`
	Version    string    `json:"version"`
	Stage      string    `json:"stage"`
	CreatedAt  time.Time `json:"created_at"`
}
