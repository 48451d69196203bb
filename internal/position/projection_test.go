package position

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSummarize(t *testing.T) {
	s := Summarize(pos("90", "20"), d("105"))
	if !s.CostBasis.Equal(d("1800")) {
		t.Errorf("expected cost basis 1800, got %s", s.CostBasis)
	}
	if !s.MarketValue.Equal(d("2100")) {
		t.Errorf("expected market value 2100, got %s", s.MarketValue)
	}
	if !s.UnrealizedPnl.Equal(d("300")) {
		t.Errorf("expected pnl 300, got %s", s.UnrealizedPnl)
	}
	if !s.Position().Equal(pos("90", "20")) {
		t.Errorf("expected summary to round-trip position, got %v", s.Position())
	}
}

func TestProject(t *testing.T) {
	proj, err := Project(pos("100", "10"), trade("80", "10"), d("85"))
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	if !proj.After.AverageCost.Equal(d("90")) {
		t.Errorf("expected after average cost 90, got %s", proj.After.AverageCost)
	}
	if !proj.AverageCostDiff.Equal(d("-10")) {
		t.Errorf("expected average cost diff -10, got %s", proj.AverageCostDiff)
	}
	if !proj.CapitalAdded.Equal(d("800")) {
		t.Errorf("expected capital added 800, got %s", proj.CapitalAdded)
	}
	if !proj.Before.UnrealizedPnlPercent.Equal(d("-15")) {
		t.Errorf("expected before return -15%%, got %s", proj.Before.UnrealizedPnlPercent)
	}

	if _, err := Project(pos("100", "10"), trade("80", "10"), d("-1")); err == nil {
		t.Fatalf("expected error for negative market price")
	}
}

func TestLadder(t *testing.T) {
	sizes := []decimal.Decimal{d("5"), d("10"), d("30")}
	ladder, err := Ladder(pos("100", "10"), d("80"), sizes, d("80"))
	if err != nil {
		t.Fatalf("Ladder returned error: %v", err)
	}
	if len(ladder) != len(sizes) {
		t.Fatalf("expected %d rows, got %d", len(sizes), len(ladder))
	}
	want := []string{"93.33333333", "90", "85"}
	for i, row := range ladder {
		if !row.After.AverageCost.Round(8).Equal(d(want[i])) {
			t.Errorf("row %d: expected average cost %s, got %s", i, want[i], row.After.AverageCost)
		}
	}

	if _, err := Ladder(pos("100", "10"), d("80"), []decimal.Decimal{d("-1")}, d("80")); err == nil {
		t.Fatalf("expected error for negative ladder size")
	}
}

func TestQuantityForTarget(t *testing.T) {
	p := pos("100", "10")
	qty, err := QuantityForTarget(p, d("80"), d("90"))
	if err != nil {
		t.Fatalf("QuantityForTarget returned error: %v", err)
	}
	if !qty.Equal(d("10")) {
		t.Fatalf("expected 10, got %s", qty)
	}
	if got := Blend(p, Trade{Price: d("80"), Quantity: qty}); !got.AverageCost.Equal(d("90")) {
		t.Errorf("expected blended average 90, got %s", got.AverageCost)
	}

	if qty, err := QuantityForTarget(p, d("80"), d("100")); err != nil || !qty.IsZero() {
		t.Errorf("expected zero quantity when already at target, got %s, %v", qty, err)
	}

	for _, target := range []string{"79", "80", "110"} {
		if _, err := QuantityForTarget(p, d("80"), d(target)); !errors.Is(err, ErrTargetUnreachable) {
			t.Errorf("target %s: expected ErrTargetUnreachable, got %v", target, err)
		}
	}

	if _, err := QuantityForTarget(pos("0", "0"), d("80"), d("90")); !errors.Is(err, ErrTargetUnreachable) {
		t.Errorf("expected ErrTargetUnreachable for empty position, got %v", err)
	}
}
