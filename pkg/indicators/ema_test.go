package indicators

import "testing"

func TestEMACalculate(t *testing.T) {
	closes := []float64{10, 20, 30, 40, 50}

	ema := NewEMA(3)
	values := ema.Calculate(closes)

	if len(values) != len(closes) {
		t.Fatalf("expected %d values, got %d", len(closes), len(values))
	}

	for i := 0; i < 2; i++ {
		if values[i] != nil {
			t.Errorf("expected nil for insufficient data at index %d, got %v", i, values[i])
		}
	}

	expected := float64(10+20+30) / 3
	if v, ok := values[2].(float64); !ok || v != expected {
		t.Errorf("expected seed SMA %v at index 2, got %v", expected, values[2])
	}

	multiplier := 2.0 / float64(3+1)
	expectedNext := (closes[3]-expected)*multiplier + expected
	if v, ok := values[3].(float64); !ok || v != expectedNext {
		t.Errorf("expected EMA %v at index 3, got %v", expectedNext, values[3])
	}
}

func TestEMAInsufficientData(t *testing.T) {
	closes := []float64{10}

	ema := NewEMA(5)
	values := ema.Calculate(closes)

	if len(values) != len(closes) {
		t.Fatalf("expected %d values, got %d", len(closes), len(values))
	}
	if values[0] != nil {
		t.Errorf("expected nil for insufficient data, got %v", values[0])
	}
}

func TestEMAName(t *testing.T) {
	if NewEMA(20).Name() != "EMA_20" {
		t.Errorf("unexpected name: %s", NewEMA(20).Name())
	}
}
