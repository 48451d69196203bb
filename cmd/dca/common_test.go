package main

import (
	"flag"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDecimalList_Set(t *testing.T) {
	var l decimalList
	if err := l.Set("5, 10,,20.5"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if len(l) != 3 || !l[2].Equal(decimal.RequireFromString("20.5")) {
		t.Fatalf("unexpected list %v", l)
	}
	if l.String() != "5,10,20.5" {
		t.Errorf("unexpected string %q", l.String())
	}
	if err := l.Set("5,x"); err == nil {
		t.Errorf("expected error for invalid entry")
	}
}

func TestPositionFlags(t *testing.T) {
	var p positionFlags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	p.register(fs)
	if err := fs.Parse([]string{"-avg", "100.5", "-qty", "0"}); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	got, err := p.position()
	if err != nil {
		t.Fatalf("position returned error: %v", err)
	}
	// 数量为0时平均成本归零
	if !got.AverageCost.IsZero() || !got.IsEmpty() {
		t.Errorf("expected empty position, got %v", got)
	}

	if err := fs.Parse([]string{"-avg", "abc"}); err == nil {
		t.Errorf("expected parse error for invalid decimal")
	}
}
