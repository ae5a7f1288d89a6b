package units

import (
	"math"
	"testing"
	"time"
)

func TestWattEnergy(t *testing.T) {
	tests := []struct {
		name    string
		power   Watt
		elapsed time.Duration
		want    WattHour
	}{
		{"one hour at 3kW", 3000, time.Hour, 3000},
		{"half hour at 1kW", 1000, 30 * time.Minute, 500},
		{"discharge", -2000, time.Hour, -2000},
		{"zero power", 0, 4 * time.Hour, 0},
		{"two hours at 1666W", 1666, 2 * time.Hour, 3332},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.power.Energy(tt.elapsed)
			if math.Abs(float64(got-tt.want)) > 1e-9 {
				t.Errorf("Energy(%v) = %v, want %v", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestClampWatt(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi Watt
		want      Watt
	}{
		{"within range", 500, 0, 1000, 500},
		{"above high", 5000, 0, 3000, 3000},
		{"below low", -5000, -3000, 0, -3000},
		{"at boundary", 1000, 0, 1000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampWatt(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("ClampWatt(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestCost(t *testing.T) {
	price := EuroPerWattHour(0.0003)
	if got := price.Cost(10000); math.Abs(float64(got)-3.0) > 1e-9 {
		t.Errorf("Cost(10000) = %v, want 3.0", got)
	}
}
