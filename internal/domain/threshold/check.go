package threshold

import (
	"fmt"

	"github.com/pulseward/pulseward/internal/domain/wearable"
)

// metricLabels are the clinician-facing names used in alert messages.
var metricLabels = map[wearable.Metric]string{
	wearable.MetricRestingHeartRate:     "Resting heart rate",
	wearable.MetricHeartRateVariability: "Heart rate variability",
	wearable.MetricSleepDuration:        "Sleep duration",
	wearable.MetricSteps:                "Step count",
	wearable.MetricBloodOxygen:          "Blood oxygen",
}

func label(m wearable.Metric) string {
	if l, ok := metricLabels[m]; ok {
		return l
	}
	return string(m)
}

// Check evaluates a single reading against the band set, independent of any
// history: one reading can trigger an alert with no baseline at all. Metrics
// missing from the reading are skipped. Critical bounds are checked first
// and suppress the corresponding warning for the same metric.
func Check(reading *wearable.Reading, bands Bands) []MetricAlert {
	var alerts []MetricAlert
	for _, metric := range wearable.TrackedMetrics() {
		band, ok := bands[metric]
		if !ok {
			continue
		}
		value, ok := reading.Value(metric)
		if !ok {
			continue
		}
		if a := evaluate(metric, value, band); a != nil {
			a.DetectedAt = reading.RecordedAt
			alerts = append(alerts, *a)
		}
	}
	return alerts
}

func evaluate(metric wearable.Metric, value float64, band Band) *MetricAlert {
	switch {
	case band.CriticalHigh != nil && value >= *band.CriticalHigh:
		return &MetricAlert{
			Metric:         metric,
			Severity:       SeverityCritical,
			Message:        fmt.Sprintf("%s critically high: %g (threshold %g)", label(metric), value, *band.CriticalHigh),
			ThresholdValue: *band.CriticalHigh,
			ActualValue:    value,
		}
	case band.CriticalLow != nil && value <= *band.CriticalLow:
		return &MetricAlert{
			Metric:         metric,
			Severity:       SeverityCritical,
			Message:        fmt.Sprintf("%s critically low: %g (threshold %g)", label(metric), value, *band.CriticalLow),
			ThresholdValue: *band.CriticalLow,
			ActualValue:    value,
		}
	case band.High != nil && value >= *band.High:
		return &MetricAlert{
			Metric:         metric,
			Severity:       SeverityWarning,
			Message:        fmt.Sprintf("%s above threshold: %g (threshold %g)", label(metric), value, *band.High),
			ThresholdValue: *band.High,
			ActualValue:    value,
		}
	case band.Low != nil && value <= *band.Low:
		return &MetricAlert{
			Metric:         metric,
			Severity:       SeverityWarning,
			Message:        fmt.Sprintf("%s below threshold: %g (threshold %g)", label(metric), value, *band.Low),
			ThresholdValue: *band.Low,
			ActualValue:    value,
		}
	}
	return nil
}
