package trend

import (
	"github.com/pulseward/pulseward/internal/domain/wearable"
	"github.com/pulseward/pulseward/pkg/stats"
)

// directionThreshold is the percent change below which movement is reported
// as stable.
const directionThreshold = 5.0

// Analyze computes a TrendResult for one metric over an ordered reading
// window. It returns ok=false when fewer than baselineDays+1 samples carry
// the metric: insufficient history is a normal condition, not an error.
// Readings missing the metric are skipped rather than failing the window.
func Analyze(readings []wearable.Reading, metric wearable.Metric, baselineDays int) (*Result, bool) {
	if baselineDays <= 0 {
		baselineDays = BaselineDays
	}

	// Collect the ordered samples that actually carry this metric, keeping
	// their timestamps for the baseline date range.
	var values []float64
	var recordedAt []int
	for i := range readings {
		if v, ok := readings[i].Value(metric); ok {
			values = append(values, v)
			recordedAt = append(recordedAt, i)
		}
	}
	if len(values) < baselineDays+1 {
		return nil, false
	}

	base := values[:baselineDays]
	baseline := Baseline{
		Mean:        stats.Mean(base),
		Median:      stats.Median(base),
		StdDev:      stats.StdDev(base),
		Min:         stats.Min(base),
		Max:         stats.Max(base),
		SampleCount: len(base),
		StartDate:   readings[recordedAt[0]].RecordedAt,
		EndDate:     readings[recordedAt[baselineDays-1]].RecordedAt,
	}

	current := values[len(values)-1]
	delta := current - baseline.Mean

	percentChange := 0.0
	if baseline.Mean != 0 {
		percentChange = delta / baseline.Mean * 100
	}
	zScore := stats.ZScore(current, baseline.Mean, baseline.StdDev)

	direction := DirectionStable
	if percentChange > directionThreshold {
		direction = DirectionIncreasing
	} else if percentChange < -directionThreshold {
		direction = DirectionDecreasing
	}

	return &Result{
		Metric:            metric,
		CurrentValue:      current,
		Baseline:          baseline,
		DeltaFromBaseline: delta,
		PercentChange:     percentChange,
		ZScore:            zScore,
		Direction:         direction,
		Status:            classify(metric, percentChange, zScore),
	}, true
}
