package calibration

import (
	"fmt"
	"math"
)

// Dim selects a spatial axis.
type Dim int

const (
	X Dim = iota
	Y
	Z
)

func (d Dim) String() string {
	switch d {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	default:
		return fmt.Sprintf("Dim(%d)", int(d))
	}
}

// Axis holds the calibration of one axis. Beta (m per signal unit) and
// Kappa (N/m) are given at the surface distance DSurf of the calibration;
// MBeta and MKappa are their slopes per metre of height.
type Axis struct {
	Beta   float64 `json:"beta" mapstructure:"beta"`
	Kappa  float64 `json:"kappa" mapstructure:"kappa"`
	MBeta  float64 `json:"mbeta,omitempty" mapstructure:"mbeta"`
	MKappa float64 `json:"mkappa,omitempty" mapstructure:"mkappa"`
}

// Source names an external loader for the calibration constants.
type Source struct {
	Module string `json:"module" mapstructure:"module"`
	Class  string `json:"class" mapstructure:"class"`
}

func (s Source) String() string { return s.Module + "." + s.Class }

// Calibration is a named set of calibration constants.
type Calibration struct {
	Name string `json:"name" mapstructure:"name"`
	X    Axis   `json:"x" mapstructure:"x"`
	Y    Axis   `json:"y" mapstructure:"y"`
	Z    Axis   `json:"z" mapstructure:"z"`
	// RadiusSpec is the bead radius in metres given by the manufacturer.
	RadiusSpec float64 `json:"radiusspec" mapstructure:"radiusspec"`
	// FocalShift relates piezo displacement to the shift of the focus.
	FocalShift float64 `json:"focalshift" mapstructure:"focalshift"`
	// CorrFactor corrects the focal shift. 0 means 1.
	CorrFactor float64 `json:"corrfactor,omitempty" mapstructure:"corrfactor"`
	// DSurf is the piezo position of the surface.
	DSurf float64 `json:"dsurf,omitempty" mapstructure:"dsurf"`
	// Source, if set, defers the constants to a loader; see Registry.
	Source *Source `json:"source,omitempty" mapstructure:"source"`
}

// Axis returns the calibration of d.
func (c *Calibration) Axis(d Dim) Axis {
	switch d {
	case Y:
		return c.Y
	case Z:
		return c.Z
	default:
		return c.X
	}
}

// BetaAt returns beta of d at height h.
func (c *Calibration) BetaAt(d Dim, h float64) float64 {
	a := c.Axis(d)
	return a.Beta + a.MBeta*(h-c.DSurf)
}

// KappaAt returns kappa of d at height h.
func (c *Calibration) KappaAt(d Dim, h float64) float64 {
	a := c.Axis(d)
	return a.Kappa + a.MKappa*(h-c.DSurf)
}

// Displacement converts a signal of d recorded at height h into bead
// displacement in metres.
func (c *Calibration) Displacement(d Dim, signal []float64, h float64) []float64 {
	beta := c.BetaAt(d, h)
	out := make([]float64, len(signal))
	for i, v := range signal {
		out[i] = v * beta
	}
	return out
}

// Force converts a signal of d recorded at height h into force in newtons.
func (c *Calibration) Force(d Dim, signal []float64, h float64) []float64 {
	k := c.BetaAt(d, h) * c.KappaAt(d, h)
	out := make([]float64, len(signal))
	for i, v := range signal {
		out[i] = v * k
	}
	return out
}

// FocalHeight converts a piezo z position into the height of the focus
// above the surface.
func (c *Calibration) FocalHeight(zPiezo float64) float64 {
	corr := c.CorrFactor
	if corr == 0 {
		corr = 1
	}
	return (zPiezo - c.DSurf) * c.FocalShift * corr
}

// Validate checks that the constants are physical. A calibration with a
// Source is checked only for its source.
func (c *Calibration) Validate() error {
	if c.Source != nil {
		if c.Source.Module == "" || c.Source.Class == "" {
			return fmt.Errorf("%w: %q: incomplete source %q", ErrInvalid, c.Name, c.Source)
		}
		return nil
	}
	if !(c.RadiusSpec > 0) {
		return fmt.Errorf("%w: %q: radius must be > 0: %g", ErrInvalid, c.Name, c.RadiusSpec)
	}
	for _, d := range []Dim{X, Y, Z} {
		a := c.Axis(d)
		if !(a.Beta > 0) || !(a.Kappa > 0) || math.IsInf(a.Beta, 0) || math.IsInf(a.Kappa, 0) {
			return fmt.Errorf("%w: %q: %s beta and kappa must be > 0: %g, %g", ErrInvalid, c.Name, d, a.Beta, a.Kappa)
		}
	}
	return nil
}
