package s2_split

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milestoneml/equityprep/internal/dataset"
	"github.com/milestoneml/equityprep/internal/featureconfig"
	"github.com/milestoneml/equityprep/pkg/config"
	"github.com/milestoneml/equityprep/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{
		Env:       "development",
		LogLevel:  "error", // Reduce log noise
		LogFormat: "json",
	})
}

func testConfig() *featureconfig.Config {
	return &featureconfig.Config{
		Split: featureconfig.Split{
			TestSize:      0.2,
			Seed:          6,
			MinStratum:    2,
			TargetQuarter: "auto",
		},
	}
}

// cleanFrame builds a clean checkpoint with two viable strata and one
// singleton: five large-cap tech rows, four small-cap health rows, one
// mega-cap energy row.
func cleanFrame(t *testing.T) *dataset.Frame {
	t.Helper()

	f := dataset.New()
	require.NoError(t, f.AddStringColumn("Sector"))
	require.NoError(t, f.AddStringColumn("MarketCap"))
	require.NoError(t, f.AddFloatColumn("Revenue_2024Q3"))
	require.NoError(t, f.AddFloatColumn("Revenue_2024Q4"))
	require.NoError(t, f.AddFloatColumn("Unemployment_2024Q4"))
	require.NoError(t, f.AddFloatColumn("Sector_Technology"))

	add := func(ticker, sector, cap string, i int) {
		require.NoError(t, f.AddRow(ticker))
		require.NoError(t, f.SetString(ticker, "Sector", sector))
		require.NoError(t, f.SetString(ticker, "MarketCap", cap))
		require.NoError(t, f.SetFloat(ticker, "Revenue_2024Q3", float64(i)))
		require.NoError(t, f.SetFloat(ticker, "Revenue_2024Q4", float64(100+i)))
		require.NoError(t, f.SetFloat(ticker, "Unemployment_2024Q4", 4.1))
		indicator := 0.0
		if sector == "Technology" {
			indicator = 1.0
		}
		require.NoError(t, f.SetFloat(ticker, "Sector_Technology", indicator))
	}

	for i := 1; i <= 5; i++ {
		add(fmt.Sprintf("L%d", i), "Technology", "Large-Cap", i)
	}
	for i := 1; i <= 4; i++ {
		add(fmt.Sprintf("S%d", i), "Health Care", "Small-Cap", 10+i)
	}
	add("M1", "Energy", "Mega-Cap", 20)

	return f
}

func TestSplit(t *testing.T) {
	frame := cleanFrame(t)
	splitter := NewSplitter(testConfig(), testLogger())

	result, summary, err := splitter.Split(frame)
	require.NoError(t, err)

	assert.Equal(t, 10, summary.InputRows)
	assert.Equal(t, 7, summary.TrainRows)
	assert.Equal(t, 2, summary.TestRows)
	assert.Equal(t, 1, summary.DroppedSmall)
	assert.Equal(t, 2, summary.Strata)
	assert.Equal(t, "2024Q4", summary.TargetQuarter)
	assert.Equal(t, 2, summary.TargetColumns)

	// Target columns moved to y, everything else stayed in X.
	assert.Equal(t, []string{"Revenue_2024Q4", "Unemployment_2024Q4"}, result.YTrain.Columns())
	assert.True(t, result.XTrain.HasColumn("Revenue_2024Q3"))
	assert.True(t, result.XTrain.HasColumn("Sector_Technology"))
	assert.True(t, result.XTrain.HasColumn("Sector"))
	assert.False(t, result.XTrain.HasColumn("Revenue_2024Q4"))

	// X and y aligned, partitions disjoint, singleton stratum gone.
	assert.Equal(t, result.XTrain.Tickers(), result.YTrain.Tickers())
	assert.Equal(t, result.XTest.Tickers(), result.YTest.Tickers())
	for _, ticker := range result.XTest.Tickers() {
		assert.False(t, result.XTrain.HasRow(ticker), "ticker %s in both partitions", ticker)
	}
	assert.False(t, result.XTrain.HasRow("M1"))
	assert.False(t, result.XTest.HasRow("M1"))

	// Values copy through untouched.
	for _, ticker := range result.XTrain.Tickers() {
		assert.Equal(t, frame.Float(ticker, "Revenue_2024Q3"), result.XTrain.Float(ticker, "Revenue_2024Q3"))
		assert.Equal(t, frame.Float(ticker, "Revenue_2024Q4"), result.YTrain.Float(ticker, "Revenue_2024Q4"))
	}
}

func TestSplitDeterministic(t *testing.T) {
	splitter := NewSplitter(testConfig(), testLogger())

	first, _, err := splitter.Split(cleanFrame(t))
	require.NoError(t, err)
	second, _, err := splitter.Split(cleanFrame(t))
	require.NoError(t, err)

	assert.Equal(t, first.XTrain.Tickers(), second.XTrain.Tickers())
	assert.Equal(t, first.XTest.Tickers(), second.XTest.Tickers())
}

func TestSplitExplicitTarget(t *testing.T) {
	cfg := testConfig()
	cfg.Split.TargetQuarter = "2024Q3"

	result, summary, err := NewSplitter(cfg, testLogger()).Split(cleanFrame(t))
	require.NoError(t, err)

	assert.Equal(t, "2024Q3", summary.TargetQuarter)
	assert.Equal(t, []string{"Revenue_2024Q3"}, result.YTrain.Columns())
	assert.True(t, result.XTrain.HasColumn("Revenue_2024Q4"))
}

func TestSplitNoTargets(t *testing.T) {
	cfg := testConfig()
	cfg.Split.TargetQuarter = "2030Q1"

	_, _, err := NewSplitter(cfg, testLogger()).Split(cleanFrame(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2030Q1")
}

func TestSplitMissingStratumColumn(t *testing.T) {
	f := dataset.New()
	require.NoError(t, f.AddStringColumn("Sector"))
	require.NoError(t, f.AddFloatColumn("Revenue_2024Q4"))

	_, _, err := NewSplitter(testConfig(), testLogger()).Split(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stratum column")
}

// A two-row stratum with a large test share still keeps one training row.
func TestSplitClampKeepsTrainRow(t *testing.T) {
	cfg := testConfig()
	cfg.Split.TestSize = 0.9

	f := dataset.New()
	require.NoError(t, f.AddStringColumn("Sector"))
	require.NoError(t, f.AddStringColumn("MarketCap"))
	require.NoError(t, f.AddFloatColumn("Revenue_2024Q4"))
	for _, ticker := range []string{"A", "B"} {
		require.NoError(t, f.AddRow(ticker))
		require.NoError(t, f.SetString(ticker, "Sector", "Technology"))
		require.NoError(t, f.SetString(ticker, "MarketCap", "Large-Cap"))
		require.NoError(t, f.SetFloat(ticker, "Revenue_2024Q4", 1))
	}

	_, summary, err := NewSplitter(cfg, testLogger()).Split(f)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TrainRows)
	assert.Equal(t, 1, summary.TestRows)
}

// round(0.2 * 2) = 0: small strata contribute no test rows rather than
// losing training data.
func TestSplitSmallStratumAllTrain(t *testing.T) {
	f := dataset.New()
	require.NoError(t, f.AddStringColumn("Sector"))
	require.NoError(t, f.AddStringColumn("MarketCap"))
	require.NoError(t, f.AddFloatColumn("Revenue_2024Q4"))
	for _, ticker := range []string{"A", "B"} {
		require.NoError(t, f.AddRow(ticker))
		require.NoError(t, f.SetString(ticker, "Sector", "Technology"))
		require.NoError(t, f.SetString(ticker, "MarketCap", "Large-Cap"))
		require.NoError(t, f.SetFloat(ticker, "Revenue_2024Q4", 1))
	}

	_, summary, err := NewSplitter(testConfig(), testLogger()).Split(f)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TrainRows)
	assert.Equal(t, 0, summary.TestRows)
}
