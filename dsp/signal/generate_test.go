package signal

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cwbudde/algo-tweezer/dsp/core"
	timestats "github.com/cwbudde/algo-tweezer/stats/time"
)

func TestStepsConstantMonotonic(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(100))
	sim, err := g.Steps(StepConfig{
		Duration:      1,
		DwellTime:     0.25,
		StepSize:      2,
		SNR:           1,
		Movement:      MovementMonotonic,
		ConstantDwell: true,
	})
	if err != nil {
		t.Fatalf("Steps() error = %v", err)
	}
	if len(sim.Data) != 100 {
		t.Fatalf("len = %d, want 100", len(sim.Data))
	}
	if diff := cmp.Diff([]int{25, 50, 75}, sim.Indices); diff != "" {
		t.Fatalf("indices mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{25, 25, 25, 25}, sim.Dwells); diff != "" {
		t.Fatalf("dwells mismatch (-want +got):\n%s", diff)
	}
	if sim.Number != 3 {
		t.Fatalf("Number = %d, want 3", sim.Number)
	}
	for i, v := range sim.Data {
		want := 2 * math.Floor(float64(i)/25)
		if v != want {
			t.Fatalf("Data[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestStepsDiffusiveHeights(t *testing.T) {
	g := NewGeneratorWithOptions([]core.ProcessorOption{core.WithSampleRate(1000)}, WithSeed(7))
	sim, err := g.Steps(DefaultStepConfig())
	if err != nil {
		t.Fatalf("Steps() error = %v", err)
	}
	total := 0
	for _, d := range sim.Dwells {
		total += d
	}
	if total != len(sim.Data) {
		t.Fatalf("dwells sum to %d, want %d", total, len(sim.Data))
	}
	if len(sim.Dwells) != sim.Number+1 {
		t.Fatalf("dwells = %d, want steps+1 = %d", len(sim.Dwells), sim.Number+1)
	}
	for _, idx := range sim.Indices {
		d := math.Abs(sim.Data[idx] - sim.Data[idx-1])
		if d != 8 {
			t.Fatalf("step at %d has size %v, want 8", idx, d)
		}
	}
	// noise STD = step / SNR = 16
	if std := timestats.Std(sim.Noise); math.Abs(std-16) > 0.5 {
		t.Fatalf("noise std = %v, want ~16", std)
	}
}

func TestStepsDeterministic(t *testing.T) {
	a, err := NewGeneratorWithOptions(nil, WithSeed(3)).Steps(DefaultStepConfig())
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewGeneratorWithOptions(nil, WithSeed(3)).Steps(DefaultStepConfig())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.Noisy(), b.Noisy()); diff != "" {
		t.Fatalf("traces differ:\n%s", diff)
	}
}

func TestStepsInvalidConfig(t *testing.T) {
	g := NewGenerator()
	tests := []struct {
		name string
		cfg  StepConfig
	}{
		{"zero snr", StepConfig{Duration: 1, DwellTime: 0.1, StepSize: 1}},
		{"zero dwell", StepConfig{Duration: 1, StepSize: 1, SNR: 1}},
		{"zero duration", StepConfig{DwellTime: 0.1, StepSize: 1, SNR: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.Steps(tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestOrnsteinUhlenbeckVariance(t *testing.T) {
	const (
		rate = 10000.0
		fc   = 100.0
		d    = 2.0
	)
	g := NewGeneratorWithOptions([]core.ProcessorOption{core.WithSampleRate(rate)}, WithSeed(11))
	x, err := g.OrnsteinUhlenbeck(fc, d, 200000)
	if err != nil {
		t.Fatalf("OrnsteinUhlenbeck() error = %v", err)
	}
	// <x²> = D / (2π fc)
	want := d / (2 * math.Pi * fc)
	s := timestats.Std(x)
	if got := s * s; math.Abs(got-want)/want > 0.1 {
		t.Fatalf("variance = %g, want %g", got, want)
	}
}

func TestCapData(t *testing.T) {
	data := []float64{1, 1, 1, 1, 5, 5, 5, 5}
	rng := rand.New(rand.NewSource(1))
	out := CapData(data, 3, 2, rng)
	if len(out) != len(data)+6 {
		t.Fatalf("len = %d, want %d", len(out), len(data)+6)
	}
	// constant ends give zero-scale caps
	for i := range 3 {
		if out[i] != 1 {
			t.Fatalf("leading cap[%d] = %v, want 1", i, out[i])
		}
		if out[len(out)-1-i] != 5 {
			t.Fatalf("trailing cap[%d] = %v, want 5", i, out[len(out)-1-i])
		}
	}
	if diff := cmp.Diff(data, out[3:len(out)-3]); diff != "" {
		t.Fatalf("payload changed:\n%s", diff)
	}
}

func TestParseMovement(t *testing.T) {
	m, err := ParseMovement("monotonic")
	if err != nil || m != MovementMonotonic {
		t.Fatalf("ParseMovement(monotonic) = %v, %v", m, err)
	}
	if _, err := ParseMovement("random"); err == nil {
		t.Fatal("expected error for unknown movement")
	}
	if MovementDiffusive.String() != "diffusive" {
		t.Fatalf("String() = %q", MovementDiffusive.String())
	}
}
