package s0_acquire

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milestoneml/equityprep/internal/dataset"
	"github.com/milestoneml/equityprep/internal/external/fred"
	"github.com/milestoneml/equityprep/internal/featureconfig"
)

type fakeMacro struct {
	obs  map[string][]fred.Observation
	errs map[string]error

	gotStart time.Time
	gotEnd   time.Time
}

func (f *fakeMacro) Observations(ctx context.Context, series string, start, end time.Time) ([]fred.Observation, error) {
	f.gotStart, f.gotEnd = start, end
	if err, ok := f.errs[series]; ok {
		return nil, err
	}
	return f.obs[series], nil
}

func macroFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	frame := dataset.New()
	require.NoError(t, frame.AddStringColumn("Sector"))
	require.NoError(t, frame.AddRow("AAPL"))
	require.NoError(t, frame.AddRow("MSFT"))
	return frame
}

func TestMergeMacro(t *testing.T) {
	cfg := testConfig()
	cfg.Macro = []featureconfig.MacroSeries{
		{Name: "Unemployment", Series: "UNRATE"},
		{Name: "GDP", Series: "GDP"},
	}

	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return d
	}

	fake := &fakeMacro{
		obs: map[string][]fred.Observation{
			// Monthly: 2024Q3 mean = 4.0; nothing for Q2 or Q4.
			"UNRATE": {
				{Date: day("2024-07-01"), Value: 3.8},
				{Date: day("2024-08-01"), Value: 4.0},
				{Date: day("2024-09-01"), Value: 4.2},
			},
			// Quarterly: passes through.
			"GDP": {
				{Date: day("2024-04-01"), Value: 28624.069},
				{Date: day("2024-07-01"), Value: 29016.714},
				{Date: day("2024-10-01"), Value: 29374.914},
			},
		},
	}

	frame := macroFrame(t)
	require.NoError(t, MergeMacro(context.Background(), frame, cfg, fake, testLogger()))

	// Observation range covers the whole window.
	assert.Equal(t, "2024-04-01", fake.gotStart.Format("2006-01-02"))
	assert.Equal(t, "2024-12-31", fake.gotEnd.Format("2006-01-02"))

	// Broadcast: every row carries the same per-quarter value.
	assert.InDelta(t, 4.0, frame.Float("AAPL", "Unemployment_2024Q3"), 1e-12)
	assert.Equal(t, frame.Float("AAPL", "Unemployment_2024Q3"), frame.Float("MSFT", "Unemployment_2024Q3"))
	// A single observation per bucket passes through bit-exact.
	assert.Equal(t, 29016.714, frame.Float("AAPL", "GDP_2024Q3"))
	assert.Equal(t, 29374.914, frame.Float("MSFT", "GDP_2024Q4"))

	// Quarters with no observations exist but stay missing.
	assert.True(t, frame.HasColumn("Unemployment_2024Q2"))
	assert.True(t, math.IsNaN(frame.Float("AAPL", "Unemployment_2024Q2")))
	assert.True(t, math.IsNaN(frame.Float("AAPL", "Unemployment_2024Q4")))
}

func TestMergeMacroFetchError(t *testing.T) {
	cfg := testConfig()
	cfg.Macro = []featureconfig.MacroSeries{{Name: "GDP", Series: "GDP"}}

	fake := &fakeMacro{errs: map[string]error{"GDP": errors.New("api down")}}

	err := MergeMacro(context.Background(), macroFrame(t), cfg, fake, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GDP")
}
