// Package baseline computes statistical baselines from rolling history and
// classifies metric and agent readings into severity levels.
package baseline

import (
	"sort"

	"github.com/pipewatch/pipewatch/internal/telemetry"
)

// minMedianSamples is the history size at which the baseline switches from
// mean to median.
const minMedianSamples = 3

// Bootstrap thresholds, used when no baseline exists yet. "Unknown" must
// not read as a false normal on cold start, so cold metrics are judged on
// absolute value.
const (
	lowerNormalMax  = 0.10
	lowerWarningMax = 0.18
	higherNormalMin = 0.90
	higherWarnMin   = 0.75
)

// Tolerance band parameters. Lower-is-better metrics get a wider relative
// band: small absolute deltas in already-small error rates are expected
// noise.
const (
	lowerToleranceRatio  = 0.35
	lowerToleranceFloor  = 0.03
	higherToleranceRatio = 0.12
	higherToleranceFloor = 0.02
)

// Latency deviation tiers for agent average time, as a ratio over baseline.
const (
	LatencyElevatedRatio = 0.3
	LatencyCriticalRatio = 0.6
)

// Compute returns the baseline for a history window: the median when at
// least three samples exist, the mean of whatever exists otherwise, nil
// for empty history.
func Compute(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	if len(values) < minMedianSamples {
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		mean := sum / float64(len(values))
		return &mean
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &median
}

// Classify assigns a severity to a metric reading. With no baseline the
// bootstrap thresholds apply; with one, the reading is judged by how far it
// deviates from baseline in the unfavorable direction, relative to a
// tolerance band of max(baseline*ratio, floor).
func Classify(value *float64, orientation telemetry.Orientation, base *float64) telemetry.Severity {
	if value == nil {
		return telemetry.SeverityNormal
	}
	v := *value

	if base == nil {
		return classifyBootstrap(v, orientation)
	}

	var deviation, ratio, floor float64
	switch orientation {
	case telemetry.LowerIsBetter:
		deviation = v - *base
		ratio, floor = lowerToleranceRatio, lowerToleranceFloor
	default:
		deviation = *base - v
		ratio, floor = higherToleranceRatio, higherToleranceFloor
	}
	if deviation < 0 {
		deviation = 0
	}

	tolerance := *base * ratio
	if tolerance < floor {
		tolerance = floor
	}

	switch {
	case deviation <= tolerance/2:
		return telemetry.SeverityNormal
	case deviation <= tolerance:
		return telemetry.SeverityWarning
	default:
		return telemetry.SeverityCritical
	}
}

func classifyBootstrap(v float64, orientation telemetry.Orientation) telemetry.Severity {
	if orientation == telemetry.LowerIsBetter {
		switch {
		case v <= lowerNormalMax:
			return telemetry.SeverityNormal
		case v <= lowerWarningMax:
			return telemetry.SeverityWarning
		default:
			return telemetry.SeverityCritical
		}
	}
	switch {
	case v >= higherNormalMin:
		return telemetry.SeverityNormal
	case v >= higherWarnMin:
		return telemetry.SeverityWarning
	default:
		return telemetry.SeverityCritical
	}
}

// LatencyRatio returns the relative increase of the current average time
// over its baseline, or 0 when no meaningful baseline exists.
func LatencyRatio(current float64, base *float64) float64 {
	if base == nil || *base <= 0 {
		return 0
	}
	return (current - *base) / *base
}

// LatencySeverity classifies an agent's latency ratio: elevated past 30%
// over baseline, critical past 60%.
func LatencySeverity(ratio float64) telemetry.Severity {
	switch {
	case ratio > LatencyCriticalRatio:
		return telemetry.SeverityCritical
	case ratio > LatencyElevatedRatio:
		return telemetry.SeverityWarning
	default:
		return telemetry.SeverityNormal
	}
}
