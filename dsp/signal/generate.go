package signal

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-tweezer/dsp/core"
	timestats "github.com/cwbudde/algo-tweezer/stats/time"
)

// Movement selects how simulated step traces evolve.
type Movement int

const (
	// MovementDiffusive steps up or down with equal probability.
	MovementDiffusive Movement = iota
	// MovementMonotonic only steps in the positive direction.
	MovementMonotonic
)

// String returns the movement name.
func (m Movement) String() string {
	switch m {
	case MovementDiffusive:
		return "diffusive"
	case MovementMonotonic:
		return "monotonic"
	default:
		return fmt.Sprintf("Movement(%d)", int(m))
	}
}

// ParseMovement converts a movement name into a Movement.
func ParseMovement(name string) (Movement, error) {
	switch name {
	case "", "diffusive":
		return MovementDiffusive, nil
	case "monotonic", "monoton":
		return MovementMonotonic, nil
	default:
		return 0, fmt.Errorf("signal: unknown movement %q", name)
	}
}

var errInvalidSampleRate = errors.New("signal: sample rate must be > 0")

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return &Generator{
		cfg:  core.ApplyProcessorOptions(opts...),
		seed: 1,
	}
}

// NewGeneratorWithOptions creates a configured signal generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := NewGenerator(coreOpts...)
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Seed returns the random seed.
func (g *Generator) Seed() int64 { return g.seed }

// SetSeed replaces the random seed.
func (g *Generator) SetSeed(seed int64) { g.seed = seed }

func (g *Generator) rng() *rand.Rand {
	return rand.New(rand.NewSource(g.seed))
}

// StepConfig describes a simulated stepping trace.
type StepConfig struct {
	Duration      float64 // seconds
	DwellTime     float64 // mean time between steps in seconds
	StepSize      float64
	SNR           float64 // StepSize divided by the noise standard deviation
	Movement      Movement
	ConstantDwell bool // constant instead of exponentially distributed dwell times
}

// DefaultStepConfig returns a 10 s diffusive trace with 8 unit steps every
// second and an SNR of 0.5.
func DefaultStepConfig() StepConfig {
	return StepConfig{
		Duration:  10,
		DwellTime: 1,
		StepSize:  8,
		SNR:       0.5,
		Movement:  MovementDiffusive,
	}
}

// SimulatedSteps holds a noise-free step trace together with the noise to be
// added and the ground truth of the steps.
type SimulatedSteps struct {
	Data       []float64
	Noise      []float64
	SampleRate float64
	Dwells     []int // length of every plateau in samples
	Indices    []int // sample positions of the steps
	Number     int
}

// Noisy returns Data + Noise.
func (s *SimulatedSteps) Noisy() []float64 {
	out := make([]float64, len(s.Data))
	for i := range out {
		out[i] = s.Data[i] + s.Noise[i]
	}
	return out
}

// Steps simulates a stepping trace with Gaussian noise.
func (g *Generator) Steps(cfg StepConfig) (*SimulatedSteps, error) {
	rate := g.cfg.SampleRate
	if rate <= 0 {
		return nil, errInvalidSampleRate
	}
	if cfg.SNR <= 0 {
		return nil, fmt.Errorf("signal: step SNR must be > 0: %f", cfg.SNR)
	}
	dwellPoints := core.RoundHalfEven(cfg.DwellTime * rate)
	if dwellPoints < 1 {
		return nil, fmt.Errorf("signal: dwell time must span at least one sample: %f s", cfg.DwellTime)
	}
	length := core.RoundHalfEven(cfg.Duration * rate)
	if length < 1 {
		return nil, fmt.Errorf("signal: duration must span at least one sample: %f s", cfg.Duration)
	}

	rng := g.rng()
	data := make([]float64, length)
	var dwells, indices []int
	height := 0.0
	step := 0
	for i := 0; i < length; {
		points := dwellPoints
		if !cfg.ConstantDwell {
			points = max(core.CeilInt(rng.ExpFloat64()*float64(dwellPoints)), 1)
		}
		points = min(length-i, points)

		var y float64
		if cfg.Movement == MovementMonotonic {
			y = float64(step) * cfg.StepSize
			step++
		} else {
			if rng.Intn(2) == 0 {
				height -= cfg.StepSize
			} else {
				height += cfg.StepSize
			}
			y = height
		}
		core.Fill(data[i:i+points], y)

		i += points
		dwells = append(dwells, points)
		if i < length {
			indices = append(indices, i)
		}
	}

	noiseSTD := cfg.StepSize / cfg.SNR
	noise := make([]float64, length)
	for i := range noise {
		noise[i] = rng.NormFloat64() * noiseSTD
	}

	return &SimulatedSteps{
		Data:       data,
		Noise:      noise,
		SampleRate: rate,
		Dwells:     dwells,
		Indices:    indices,
		Number:     len(indices),
	}, nil
}

// OrnsteinUhlenbeck simulates the position of a bead in a harmonic trap with
// corner frequency fc (Hz) and diffusion coefficient d (units²/s). The
// discretisation is exact, so the one-sided PSD of the trace is the aliased
// Lorentzian with the same fc and d.
func (g *Generator) OrnsteinUhlenbeck(fc, d float64, samples int) ([]float64, error) {
	rate := g.cfg.SampleRate
	if rate <= 0 {
		return nil, errInvalidSampleRate
	}
	if samples <= 0 {
		return nil, fmt.Errorf("signal: samples must be > 0: %d", samples)
	}
	if fc <= 0 || d <= 0 {
		return nil, fmt.Errorf("signal: fc and D must be > 0: fc=%f D=%f", fc, d)
	}

	c := math.Exp(-2 * math.Pi * fc / rate)
	variance := d / (2 * math.Pi * fc)
	dx := math.Sqrt((1 - c*c) * variance)

	rng := g.rng()
	out := make([]float64, samples)
	x := rng.NormFloat64() * math.Sqrt(variance)
	for i := range out {
		out[i] = x
		x = c*x + dx*rng.NormFloat64()
	}
	return out, nil
}

// CapData extends data at both ends with capLength normally distributed
// samples. The location and scale of the leading cap are the median and
// standard deviation of data[:inspectLength+1], those of the trailing cap
// come from the last inspectLength samples.
func CapData(data []float64, capLength, inspectLength int, rng *rand.Rand) []float64 {
	if capLength <= 0 || len(data) == 0 {
		return append([]float64(nil), data...)
	}
	inspectLength = core.ClampInt(inspectLength, 1, len(data))

	head := data[:min(inspectLength+1, len(data))]
	tail := data[len(data)-inspectLength:]
	locStart, scaleStart := timestats.Median(head), timestats.Std(head)
	locStop, scaleStop := timestats.Median(tail), timestats.Std(tail)

	out := make([]float64, 0, len(data)+2*capLength)
	for range capLength {
		out = append(out, locStart+scaleStart*rng.NormFloat64())
	}
	out = append(out, data...)
	for range capLength {
		out = append(out, locStop+scaleStop*rng.NormFloat64())
	}
	return out
}
