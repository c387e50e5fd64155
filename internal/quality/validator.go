package quality

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/milestoneml/equityprep/internal/contracts"
	"github.com/milestoneml/equityprep/internal/dataset"
)

// Validator checks checkpoint frames against structural rules and
// missing-value thresholds before the next stage consumes them.
type Validator struct {
	config Config
}

// Config holds validation thresholds.
type Config struct {
	MaxMissingShare float64 // 0.40: warn when a column is missing more than this share
	MinRows         int     // 1: fail frames with fewer rows
}

// DefaultConfig returns the thresholds used by the check command.
func DefaultConfig() Config {
	return Config{
		MaxMissingShare: 0.40,
		MinRows:         1,
	}
}

// NewValidator creates a new Validator instance.
func NewValidator(config Config) *Validator {
	return &Validator{config: config}
}

// Severity classifies a finding. Errors invalidate the checkpoint,
// warnings do not.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding from a validation pass.
type Issue struct {
	Severity Severity
	Column   string   // empty for frame-level findings
	Message  string
}

// Stats summarizes the frame that was examined.
type Stats struct {
	Rows         int
	Columns      int
	FloatColumns int
	NaNCells     int
	NaNShare     float64
}

// ValidationResult aggregates the findings for one checkpoint.
type ValidationResult struct {
	Checkpoint contracts.Checkpoint
	Valid      bool
	Issues     []Issue
	Stats      Stats
}

func (r *ValidationResult) add(severity Severity, column, format string, args ...interface{}) {
	r.Issues = append(r.Issues, Issue{
		Severity: severity,
		Column:   column,
		Message:  fmt.Sprintf(format, args...),
	})
	if severity == SeverityError {
		r.Valid = false
	}
}

// Warnings counts the non-fatal findings.
func (r *ValidationResult) Warnings() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// Check validates a single checkpoint frame.
func (v *Validator) Check(cp contracts.Checkpoint, frame *dataset.Frame) *ValidationResult {
	result := &ValidationResult{
		Checkpoint: cp,
		Valid:      true,
		Stats:      collectStats(frame),
	}

	v.checkRowCount(frame, result)
	v.checkRequiredColumns(cp, frame, result)
	v.checkMissingValues(cp, frame, result)

	return result
}

// CheckDisjoint verifies that no ticker landed in both partitions. A
// ticker on both sides leaks its test rows into the training statistics.
func (v *Validator) CheckDisjoint(train, test *dataset.Frame) []Issue {
	inTrain := make(map[string]bool, train.NumRows())
	for _, ticker := range train.Tickers() {
		inTrain[ticker] = true
	}

	var overlap []string
	for _, ticker := range test.Tickers() {
		if inTrain[ticker] {
			overlap = append(overlap, ticker)
		}
	}
	if len(overlap) == 0 {
		return nil
	}
	sort.Strings(overlap)

	return []Issue{{
		Severity: SeverityError,
		Message:  fmt.Sprintf("%d tickers in both partitions: %s", len(overlap), preview(overlap)),
	}}
}

// CheckAligned verifies that a feature frame and its target frame hold
// the same tickers in the same row order.
func (v *Validator) CheckAligned(x, y *dataset.Frame) []Issue {
	xTickers, yTickers := x.Tickers(), y.Tickers()
	if len(xTickers) != len(yTickers) {
		return []Issue{{
			Severity: SeverityError,
			Message:  fmt.Sprintf("%d feature rows vs %d target rows", len(xTickers), len(yTickers)),
		}}
	}
	for i := range xTickers {
		if xTickers[i] != yTickers[i] {
			return []Issue{{
				Severity: SeverityError,
				Message:  fmt.Sprintf("row %d holds %q in features but %q in targets", i, xTickers[i], yTickers[i]),
			}}
		}
	}

	return nil
}

func (v *Validator) checkRowCount(frame *dataset.Frame, result *ValidationResult) {
	if frame.NumRows() < v.config.MinRows {
		result.add(SeverityError, "", "%d rows, need at least %d", frame.NumRows(), v.config.MinRows)
	}
}

func (v *Validator) checkRequiredColumns(cp contracts.Checkpoint, frame *dataset.Frame, result *ValidationResult) {
	for _, name := range requiredColumns(cp) {
		if !frame.HasColumn(name) {
			result.add(SeverityError, name, "required column missing")
		}
	}
}

// checkMissingValues flags columns whose NaN share crosses the warn
// threshold. Imputation outputs are held to zero missing values.
func (v *Validator) checkMissingValues(cp contracts.Checkpoint, frame *dataset.Frame, result *ValidationResult) {
	rows := frame.NumRows()
	if rows == 0 {
		return
	}

	for _, name := range frame.FloatColumns() {
		col, _ := frame.FloatCol(name)
		missing := 0
		for _, cell := range col {
			if math.IsNaN(cell) {
				missing++
			}
		}
		if missing == 0 {
			continue
		}
		if mustBeFilled(cp) {
			result.add(SeverityError, name, "%d missing values after imputation", missing)
			continue
		}
		if share := float64(missing) / float64(rows); share > v.config.MaxMissingShare {
			result.add(SeverityWarning, name, "%.0f%% of values missing", share*100)
		}
	}
}

// requiredColumns lists the columns a checkpoint cannot be missing.
// Raw downloads carry the full static set; frames produced after
// cleaning need the grouping columns the later stages key on. Target
// frames have no fixed schema beyond the ticker index.
func requiredColumns(cp contracts.Checkpoint) []string {
	switch cp {
	case contracts.CheckpointUniverse, contracts.CheckpointFundamentals, contracts.CheckpointMerged:
		cols := append([]string{}, contracts.StaticColumns...)
		return append(cols, contracts.ColumnMarketValue)
	case contracts.CheckpointYTrain, contracts.CheckpointYTest:
		return nil
	default:
		return []string{contracts.ColumnSector, contracts.ColumnMarketCap}
	}
}

// mustBeFilled reports whether a checkpoint comes straight out of
// imputation. Later checkpoints add ratio and slope columns that are
// legitimately NaN, so only the filled pair is held to zero missing.
func mustBeFilled(cp contracts.Checkpoint) bool {
	return cp == contracts.CheckpointXTrainFilled || cp == contracts.CheckpointXTestFilled
}

func collectStats(frame *dataset.Frame) Stats {
	stats := Stats{
		Rows:         frame.NumRows(),
		Columns:      frame.NumCols(),
		FloatColumns: len(frame.FloatColumns()),
	}

	cells := 0
	for _, name := range frame.FloatColumns() {
		col, _ := frame.FloatCol(name)
		cells += len(col)
		for _, cell := range col {
			if math.IsNaN(cell) {
				stats.NaNCells++
			}
		}
	}
	if cells > 0 {
		stats.NaNShare = float64(stats.NaNCells) / float64(cells)
	}

	return stats
}

// preview renders at most three names from a list.
func preview(names []string) string {
	if len(names) <= 3 {
		return strings.Join(names, ", ")
	}
	return strings.Join(names[:3], ", ") + ", ..."
}
