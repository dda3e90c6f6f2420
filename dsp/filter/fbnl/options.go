package fbnl

const defaultEdginess = 1.0

type config struct {
	window    int
	windowVar int
	p         float64
	cap       bool
	seed      int64
}

// Option configures a filter run.
type Option func(*config)

// WithWindowVar sets the averaging length of the prediction variances.
// It defaults to the window length and should not exceed it.
func WithWindowVar(n int) Option {
	return func(c *config) {
		c.windowVar = n
	}
}

// WithEdginess sets the nonlinearity p of the weights sd^(-2p). 0 gives equal
// weights (a plain moving mean), larger values preserve edges but amplify
// ripples. Defaults to 1.
func WithEdginess(p float64) Option {
	return func(c *config) {
		c.p = p
	}
}

// WithoutCap disables capping the trace ends. Without caps, the first and
// last Window+WindowVar-1 samples of every output are NaN.
func WithoutCap() Option {
	return func(c *config) {
		c.cap = false
	}
}

// WithSeed sets the seed of the random caps.
func WithSeed(seed int64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

func applyOptions(window int, opts []Option) config {
	c := config{
		window: window,
		p:      defaultEdginess,
		cap:    true,
		seed:   1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	if c.windowVar == 0 {
		c.windowVar = c.window
	}
	return c
}

func (c config) validate(n int, resolution float64) error {
	if n == 0 {
		return ErrEmptyData
	}
	if resolution <= 0 {
		return ErrInvalidResolution
	}
	if c.window < 1 || c.windowVar < 1 {
		return ErrInvalidWindow
	}
	if c.p < 0 {
		return ErrInvalidEdginess
	}
	if !c.cap && n < 2*c.loss()+1 {
		return ErrDataTooShort
	}
	return nil
}

func (c config) loss() int { return c.window + c.windowVar - 1 }
