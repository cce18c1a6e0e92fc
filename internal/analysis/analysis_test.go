package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestFFTOfImpulse(t *testing.T) {
	out := FFT([]float64{1, 0, 0, 0})
	for i, c := range out {
		if math.Abs(real(c)-1) > 1e-12 || math.Abs(imag(c)) > 1e-12 {
			t.Errorf("bin %d: expected 1, got %v", i, c)
		}
	}
}

func TestFFTAnyLength(t *testing.T) {
	out := FFT([]float64{1, 1, 1})
	if len(out) != 3 {
		t.Fatalf("expected 3 bins, got %d", len(out))
	}
	if math.Abs(real(out[0])-3) > 1e-9 {
		t.Errorf("expected DC bin 3, got %v", out[0])
	}
	for i := 1; i < 3; i++ {
		if math.Abs(real(out[i])) > 1e-9 || math.Abs(imag(out[i])) > 1e-9 {
			t.Errorf("bin %d: expected 0, got %v", i, out[i])
		}
	}
	if FFT(nil) != nil {
		t.Error("expected nil transform of no data")
	}
}

func TestDominantFrequency(t *testing.T) {
	const dt = 0.01
	samples := make([]float64, 256)
	for i := range samples {
		samples[i] = 5 + math.Sin(2*math.Pi*12.5*float64(i)*dt)
	}

	f, err := DominantFrequency(samples, dt)
	if err != nil {
		t.Fatal(err)
	}
	// 256 samples at 100 Hz puts 12.5 Hz exactly on bin 32
	if math.Abs(f-12.5) > 1e-9 {
		t.Errorf("expected 12.5 Hz, got %g", f)
	}

	if _, err := DominantFrequency([]float64{1, 2}, dt); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}
	if _, err := DominantFrequency(samples, 0); err == nil {
		t.Error("expected error for zero spacing")
	}
}

func TestPowerSpectrumPads(t *testing.T) {
	ps := PowerSpectrum(make([]float64, 100))
	if len(ps) != 64 {
		t.Errorf("expected 64 bins after padding to 128, got %d", len(ps))
	}
	if PowerSpectrum(nil) != nil {
		t.Error("expected nil spectrum for no data")
	}
}

func TestCrossings(t *testing.T) {
	times := []float64{0, 1, 2, 3, 4}
	values := []float64{0, 2, 0, 2, 2}

	got := Crossings(times, values, 1)
	if len(got) != 2 || math.Abs(got[0]-0.5) > 1e-12 || math.Abs(got[1]-2.5) > 1e-12 {
		t.Errorf("unexpected crossings %v", got)
	}
	if len(Crossings(times, values, 5)) != 0 {
		t.Error("expected no crossings above the data")
	}
}

func TestPortrait(t *testing.T) {
	if NewPortrait([]float64{1}, nil) != nil {
		t.Error("expected nil for mismatched columns")
	}

	p := NewPortrait([]float64{-1, 0, 1}, []float64{-1, 1, -1})
	out := PortraitToASCII(p, 21, 11)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 11 {
		t.Fatalf("expected 11 rows, got %d", len(lines))
	}
	if strings.Count(out, "•") != 3 {
		t.Errorf("expected 3 points, got %d", strings.Count(out, "•"))
	}
	if !strings.Contains(out, "│") || !strings.Contains(out, "─") {
		t.Error("expected both axes")
	}
	if PortraitToASCII(nil, 10, 10) != "" {
		t.Error("expected empty output for nil portrait")
	}
}
