package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dca-sim/internal/backtest"
)

func makePoints(closes ...float64) []backtest.PricePoint {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	points := make([]backtest.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = backtest.PricePoint{Timestamp: start.AddDate(0, 0, i), Close: decimal.NewFromFloat(c)}
	}
	return points
}

func TestOverlay_MovingAverages(t *testing.T) {
	points := makePoints(10, 11, 12, 13, 14, 15)
	result, err := Overlay(points, []int{3, 10}, 14)
	if err != nil {
		t.Fatalf("Overlay returned error: %v", err)
	}
	if len(result.MovingAverages) != 2 {
		t.Fatalf("expected 2 moving averages, got %d", len(result.MovingAverages))
	}

	ma3 := result.MovingAverages[0]
	if !ma3.Available || math.Abs(ma3.Last-14) > 1e-9 {
		t.Errorf("expected SMA3 last 14, got %v (available=%v)", ma3.Last, ma3.Available)
	}
	if math.Abs(ma3.Distance-(15.0-14.0)/14.0) > 1e-9 {
		t.Errorf("unexpected distance %v", ma3.Distance)
	}
	if v, ok := result.At(3, 2); !ok || math.Abs(v-11) > 1e-9 {
		t.Errorf("expected SMA3 at index 2 = 11, got %v, %v", v, ok)
	}
	if _, ok := result.At(3, 1); ok {
		t.Errorf("expected no SMA3 value before the window fills")
	}

	if result.MovingAverages[1].Available {
		t.Errorf("expected SMA10 unavailable for 6 points")
	}
	if result.RSIAvailable {
		t.Errorf("expected RSI unavailable for short series")
	}
}

func TestOverlay_RSI(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	result, err := Overlay(makePoints(closes...), nil, 14)
	if err != nil {
		t.Fatalf("Overlay returned error: %v", err)
	}
	if !result.RSIAvailable || result.RSI < 99 {
		t.Errorf("expected RSI near 100 for a rising series, got %v", result.RSI)
	}
}

func TestOverlay_Errors(t *testing.T) {
	if _, err := Overlay(nil, []int{3}, 14); err == nil {
		t.Fatalf("expected error for empty series")
	}
	if _, err := Overlay(makePoints(1, 2, 3), []int{1}, 14); err == nil {
		t.Fatalf("expected error for invalid window")
	}
}

func TestSeries_IndexOf(t *testing.T) {
	points := makePoints(1, 2, 3)
	s := NewSeries(points)
	if s.IndexOf(points[2].Timestamp) != 2 {
		t.Errorf("expected index 2")
	}
	if s.IndexOf(time.Time{}) != -1 {
		t.Errorf("expected -1 for unknown timestamp")
	}
}
