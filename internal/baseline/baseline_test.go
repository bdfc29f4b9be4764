package baseline

import (
	"testing"

	"github.com/pipewatch/pipewatch/internal/telemetry"
)

func fp(f float64) *float64 { return &f }

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   *float64
	}{
		{"empty history", nil, nil},
		{"single sample uses mean", []float64{5}, fp(5)},
		{"two samples use mean", []float64{2, 4}, fp(3)},
		{"odd count uses median", []float64{1, 2, 3, 4, 5}, fp(3)},
		{"even count averages middle pair", []float64{1, 2, 3, 4}, fp(2.5)},
		{"median resists outliers", []float64{1, 1, 1, 1, 100}, fp(1)},
		{"unsorted input", []float64{5, 1, 3}, fp(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.values)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("Compute(%v) = %v, want nil", tt.values, *got)
			case tt.want != nil && got == nil:
				t.Errorf("Compute(%v) = nil, want %v", tt.values, *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("Compute(%v) = %v, want %v", tt.values, *got, *tt.want)
			}
		})
	}
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Compute(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input mutated: %v", values)
	}
}

func TestClassify_Bootstrap(t *testing.T) {
	tests := []struct {
		name        string
		value       float64
		orientation telemetry.Orientation
		want        telemetry.Severity
	}{
		{"low rate is normal", 0.05, telemetry.LowerIsBetter, telemetry.SeverityNormal},
		{"rate at normal boundary", 0.10, telemetry.LowerIsBetter, telemetry.SeverityNormal},
		{"rate in warning band", 0.15, telemetry.LowerIsBetter, telemetry.SeverityWarning},
		{"rate at warning boundary", 0.18, telemetry.LowerIsBetter, telemetry.SeverityWarning},
		{"hallucination rate 0.25 is critical", 0.25, telemetry.LowerIsBetter, telemetry.SeverityCritical},
		{"high score is normal", 0.95, telemetry.HigherIsBetter, telemetry.SeverityNormal},
		{"score at normal boundary", 0.90, telemetry.HigherIsBetter, telemetry.SeverityNormal},
		{"score in warning band", 0.80, telemetry.HigherIsBetter, telemetry.SeverityWarning},
		{"low score is critical", 0.60, telemetry.HigherIsBetter, telemetry.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(fp(tt.value), tt.orientation, nil); got != tt.want {
				t.Errorf("Classify(%v, %v, nil) = %v, want %v", tt.value, tt.orientation, got, tt.want)
			}
		})
	}
}

func TestClassify_WithBaseline(t *testing.T) {
	tests := []struct {
		name        string
		value       float64
		orientation telemetry.Orientation
		base        float64
		want        telemetry.Severity
	}{
		// higher-is-better, baseline 0.90: tolerance = max(0.108, 0.02) = 0.108
		{"at baseline", 0.90, telemetry.HigherIsBetter, 0.90, telemetry.SeverityNormal},
		{"above baseline never bad", 0.99, telemetry.HigherIsBetter, 0.90, telemetry.SeverityNormal},
		{"within half tolerance", 0.86, telemetry.HigherIsBetter, 0.90, telemetry.SeverityNormal},
		{"within full tolerance", 0.80, telemetry.HigherIsBetter, 0.90, telemetry.SeverityWarning},
		{"beyond tolerance", 0.70, telemetry.HigherIsBetter, 0.90, telemetry.SeverityCritical},
		// lower-is-better, baseline 0.05: tolerance = max(0.0175, 0.03) = 0.03
		{"rate at baseline", 0.05, telemetry.LowerIsBetter, 0.05, telemetry.SeverityNormal},
		{"rate below baseline never bad", 0.01, telemetry.LowerIsBetter, 0.05, telemetry.SeverityNormal},
		{"rate within floor tolerance", 0.065, telemetry.LowerIsBetter, 0.05, telemetry.SeverityNormal},
		{"rate within full tolerance", 0.078, telemetry.LowerIsBetter, 0.05, telemetry.SeverityWarning},
		{"rate beyond tolerance", 0.12, telemetry.LowerIsBetter, 0.05, telemetry.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(fp(tt.value), tt.orientation, fp(tt.base)); got != tt.want {
				t.Errorf("Classify(%v, base %v) = %v, want %v", tt.value, tt.base, got, tt.want)
			}
		})
	}
}

func TestClassify_NilValue(t *testing.T) {
	if got := Classify(nil, telemetry.LowerIsBetter, fp(0.1)); got != telemetry.SeverityNormal {
		t.Errorf("nil value = %v, want normal", got)
	}
}

func TestLatency(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		base    *float64
		ratio   float64
		want    telemetry.Severity
	}{
		{"no baseline", 4.0, nil, 0, telemetry.SeverityNormal},
		{"zero baseline", 4.0, fp(0), 0, telemetry.SeverityNormal},
		{"at baseline", 2.0, fp(2.0), 0, telemetry.SeverityNormal},
		{"30 percent over is still normal", 2.6, fp(2.0), 0.3, telemetry.SeverityNormal},
		{"elevated", 2.8, fp(2.0), 0.4, telemetry.SeverityWarning},
		{"doubled is critical", 4.0, fp(2.0), 1.0, telemetry.SeverityCritical},
		{"faster than baseline", 1.0, fp(2.0), -0.5, telemetry.SeverityNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratio := LatencyRatio(tt.current, tt.base)
			if diff := ratio - tt.ratio; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("LatencyRatio = %v, want %v", ratio, tt.ratio)
			}
			if got := LatencySeverity(ratio); got != tt.want {
				t.Errorf("LatencySeverity(%v) = %v, want %v", ratio, got, tt.want)
			}
		})
	}
}
