package featureconfig

import (
	"fmt"

	"github.com/milestoneml/equityprep/internal/dataset"
)

// ValidationError is a hard constraint violation (the run stops)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning is a recommendation violation (logged, run continues)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.Name == "" {
		return ValidationError{"meta.name", "required"}
	}

	// === Window ===
	if cfg.Window.Quarters < 2 || cfg.Window.Quarters > 12 {
		return ValidationError{"window.quarters", "must be in [2, 12]"}
	}
	if err := validateQuarterRef(cfg.Window.End); err != nil {
		return ValidationError{"window.end", err.Error()}
	}

	// === Universe ===
	if len(cfg.Universe.AssetClasses) == 0 {
		return ValidationError{"universe.asset_classes", "required"}
	}
	if len(cfg.Universe.Exchanges) == 0 {
		return ValidationError{"universe.exchanges", "required"}
	}

	// === LineItems ===
	if len(cfg.LineItems) == 0 {
		return ValidationError{"line_items", "required"}
	}
	itemNames := make(map[string]bool, len(cfg.LineItems))
	for i, it := range cfg.LineItems {
		field := fmt.Sprintf("line_items[%d]", i)
		if it.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if itemNames[it.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate name %q", it.Name)}
		}
		itemNames[it.Name] = true
		if !validStatement(it.Statement) {
			return ValidationError{field + ".statement", "must be income, balance, or cashflow"}
		}
		if len(it.Candidates) == 0 {
			return ValidationError{field + ".candidates", "required"}
		}
		if it.FallbackStatement != "" && !validStatement(it.FallbackStatement) {
			return ValidationError{field + ".fallback_statement", "must be income, balance, or cashflow"}
		}
	}

	// === Derived ===
	for i, d := range cfg.Derived {
		field := fmt.Sprintf("derived[%d]", i)
		if !itemNames[d.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("%q is not a line item", d.Name)}
		}
		if !itemNames[d.Minuend] {
			return ValidationError{field + ".minuend", fmt.Sprintf("%q is not a line item", d.Minuend)}
		}
		if !itemNames[d.Subtrahend] {
			return ValidationError{field + ".subtrahend", fmt.Sprintf("%q is not a line item", d.Subtrahend)}
		}
		if d.Minuend == d.Name || d.Subtrahend == d.Name {
			return ValidationError{field, "operands must differ from the derived item"}
		}
	}

	// === Macro ===
	macroNames := make(map[string]bool, len(cfg.Macro))
	for i, m := range cfg.Macro {
		field := fmt.Sprintf("macro[%d]", i)
		if m.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if m.Series == "" {
			return ValidationError{field + ".series", "required"}
		}
		if macroNames[m.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate name %q", m.Name)}
		}
		macroNames[m.Name] = true
		if itemNames[m.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("%q collides with a line item", m.Name)}
		}
	}

	// === MarketCap ===
	if cfg.MarketCap.Source == "" {
		return ValidationError{"market_cap.source", "required"}
	}
	if len(cfg.MarketCap.Bins) == 0 {
		return ValidationError{"market_cap.bins", "required"}
	}
	if len(cfg.MarketCap.Labels) != len(cfg.MarketCap.Bins) {
		return ValidationError{"market_cap.labels", fmt.Sprintf(
			"must have one label per bin: %d labels, %d bins",
			len(cfg.MarketCap.Labels), len(cfg.MarketCap.Bins))}
	}
	for i := 1; i < len(cfg.MarketCap.Bins); i++ {
		if cfg.MarketCap.Bins[i] <= cfg.MarketCap.Bins[i-1] {
			return ValidationError{"market_cap.bins", "must be strictly ascending"}
		}
	}

	// === Clean ===
	for i, name := range cfg.Clean.RequiredNonzero {
		if !itemNames[name] {
			return ValidationError{
				Field:   fmt.Sprintf("clean.required_nonzero[%d]", i),
				Message: fmt.Sprintf("%q is not a line item", name),
			}
		}
	}
	for i, prefix := range cfg.Clean.DropItemPrefixes {
		if prefix == "" {
			return ValidationError{fmt.Sprintf("clean.drop_item_prefixes[%d]", i), "must not be empty"}
		}
	}

	// === Split ===
	if cfg.Split.TestSize <= 0 || cfg.Split.TestSize >= 1 {
		return ValidationError{"split.test_size", "must be in (0, 1)"}
	}
	if cfg.Split.Seed < 0 {
		return ValidationError{"split.seed", "must be >= 0"}
	}
	if cfg.Split.MinStratum < 1 {
		return ValidationError{"split.min_stratum", "must be >= 1"}
	}
	if err := validateQuarterRef(cfg.Split.TargetQuarter); err != nil {
		return ValidationError{"split.target_quarter", err.Error()}
	}

	// === Impute ===
	if cfg.Impute.Statistic != "median" && cfg.Impute.Statistic != "mean" {
		return ValidationError{"impute.statistic", "must be median or mean"}
	}
	if cfg.Impute.MinGroup < 1 {
		return ValidationError{"impute.min_group", "must be >= 1"}
	}

	// === KPIs ===
	kpiNames := make(map[string]bool, len(cfg.KPIs))
	for i, k := range cfg.KPIs {
		field := fmt.Sprintf("kpis[%d]", i)
		if k.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if kpiNames[k.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate name %q", k.Name)}
		}
		kpiNames[k.Name] = true
		if !itemNames[k.Numerator] {
			return ValidationError{field + ".numerator", fmt.Sprintf("%q is not a line item", k.Numerator)}
		}
		if !itemNames[k.Denominator] {
			return ValidationError{field + ".denominator", fmt.Sprintf("%q is not a line item", k.Denominator)}
		}
		if k.Subtract != "" && !itemNames[k.Subtract] {
			return ValidationError{field + ".subtract", fmt.Sprintf("%q is not a line item", k.Subtract)}
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// Trend slopes over fewer than 3 quarters are mostly noise.
	if cfg.Window.Quarters < 3 {
		warnings = append(warnings, Warning{
			Code:    "SHORT_WINDOW",
			Message: fmt.Sprintf("window.quarters=%d: rate features need at least 3 quarters to be meaningful", cfg.Window.Quarters),
		})
	}

	if cfg.Split.TestSize > 0.5 {
		warnings = append(warnings, Warning{
			Code:    "LARGE_TEST_SET",
			Message: fmt.Sprintf("split.test_size=%.2f: holding out more than half the data starves training", cfg.Split.TestSize),
		})
	}

	if len(cfg.Macro) == 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_MACRO",
			Message: "no macro series configured: quarter-over-quarter families limited to fundamentals",
		})
	}

	return warnings
}

// === Helper Functions ===

func validStatement(s string) bool {
	return s == StatementIncome || s == StatementBalance || s == StatementCashflow
}

// validateQuarterRef accepts "auto" or a well-formed quarter label.
func validateQuarterRef(s string) error {
	if s == "" || s == "auto" {
		return nil
	}
	if _, err := dataset.ParseQuarter(s); err != nil {
		return fmt.Errorf("must be \"auto\" or a label like 2025Q1: %w", err)
	}
	return nil
}
