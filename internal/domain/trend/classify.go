package trend

import (
	"math"

	"github.com/pulseward/pulseward/internal/domain/wearable"
)

// classifier turns a metric's percent change and z-score into a Status.
// Each metric carries its own polarity: elevated resting heart rate is bad
// while elevated HRV is good, so the rules cannot be shared. Keeping them in
// a table per metric keeps the asymmetry auditable in isolation.
type classifier func(percentChange, zScore float64) Status

var classifiers = map[wearable.Metric]classifier{
	wearable.MetricRestingHeartRate:     classifyRestingHeartRate,
	wearable.MetricHeartRateVariability: classifyHeartRateVariability,
	wearable.MetricSleepDuration:        classifySleepDuration,
	wearable.MetricSteps:                classifySteps,
}

// Rising resting heart rate signals deterioration; a drop is recovery.
func classifyRestingHeartRate(percentChange, _ float64) Status {
	switch {
	case percentChange >= 15:
		return StatusCritical
	case percentChange >= 10:
		return StatusConcerning
	case percentChange < -5:
		return StatusImproving
	default:
		return StatusNormal
	}
}

// HRV has the opposite polarity: falling HRV signals physiological stress.
func classifyHeartRateVariability(percentChange, _ float64) Status {
	switch {
	case percentChange <= -25:
		return StatusCritical
	case percentChange <= -15:
		return StatusConcerning
	case percentChange > 10:
		return StatusImproving
	default:
		return StatusNormal
	}
}

// Sleep is judged by deviation from the patient's own variability, and only
// loss of sleep escalates.
func classifySleepDuration(percentChange, zScore float64) Status {
	absZ := math.Abs(zScore)
	switch {
	case absZ > 2 && percentChange < 0:
		return StatusCritical
	case absZ > 1.5 && percentChange < 0:
		return StatusConcerning
	case percentChange > 10:
		return StatusImproving
	default:
		return StatusNormal
	}
}

func classifySteps(percentChange, _ float64) Status {
	switch {
	case percentChange < -50:
		return StatusConcerning
	case percentChange > 20:
		return StatusImproving
	default:
		return StatusNormal
	}
}

// classifyGeneric applies plain z-score bands to metrics without dedicated
// clinical rules.
func classifyGeneric(_, zScore float64) Status {
	absZ := math.Abs(zScore)
	switch {
	case absZ > 2:
		return StatusCritical
	case absZ > 1.5:
		return StatusConcerning
	default:
		return StatusNormal
	}
}

func classify(metric wearable.Metric, percentChange, zScore float64) Status {
	if fn, ok := classifiers[metric]; ok {
		return fn(percentChange, zScore)
	}
	return classifyGeneric(percentChange, zScore)
}
