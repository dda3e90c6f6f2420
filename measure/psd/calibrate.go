package psd

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-tweezer/measure/calibration"
)

// Boltzmann is the Boltzmann constant in J/K.
const Boltzmann = 1.380649e-23

// Physical describes the bead and its medium in SI units.
type Physical struct {
	// Radius of the bead in m.
	Radius float64 `json:"radius" mapstructure:"radius"`
	// Temperature in K.
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	// Viscosity of the medium in Pa s.
	Viscosity float64 `json:"viscosity" mapstructure:"viscosity"`
	// Height of the bead center above the surface in m. 0 means far from
	// any surface.
	Height float64 `json:"height" mapstructure:"height"`
}

// DefaultPhysical returns a 1 µm bead in water at 25 °C.
func DefaultPhysical() Physical {
	return Physical{
		Radius:      0.5e-6,
		Temperature: 298.15,
		Viscosity:   0.8902e-3,
	}
}

// Validate checks that the parameters are physical.
func (p Physical) Validate() error {
	if !(p.Radius > 0) || !(p.Temperature > 0) || !(p.Viscosity > 0) {
		return fmt.Errorf("%w: radius, temperature and viscosity must be > 0", ErrPhysical)
	}
	if p.Height != 0 && p.Height <= p.Radius {
		return fmt.Errorf("%w: height %g must exceed the radius %g", ErrPhysical, p.Height, p.Radius)
	}
	return nil
}

// Drag returns the Stokes drag coefficient 6πηr in kg/s, corrected with
// Faxén's law for the lateral motion near a surface when Height is set.
func (p Physical) Drag() float64 {
	gamma := 6 * math.Pi * p.Viscosity * p.Radius
	if p.Height == 0 {
		return gamma
	}
	x := p.Radius / p.Height
	x3 := x * x * x
	return gamma / (1 - 9.0/16*x + 1.0/8*x3 - 45.0/256*x3*x - 1.0/16*x3*x*x)
}

// Diffusion returns the Einstein diffusion constant kT/γ in m²/s.
func (p Physical) Diffusion() float64 {
	return Boltzmann * p.Temperature / p.Drag()
}

// Calibrate derives the displacement sensitivity β = sqrt(D_theory/D_fit)
// (m per signal unit) and the stiffness κ = 2πγfc (N/m) from a fit.
func Calibrate(fit *Fit, p Physical) (calibration.Axis, error) {
	if err := p.Validate(); err != nil {
		return calibration.Axis{}, err
	}
	if !(fit.D > 0) || !(fit.Fc > 0) {
		return calibration.Axis{}, fmt.Errorf("%w: fc=%g D=%g", ErrFitDegenerate, fit.Fc, fit.D)
	}
	gamma := p.Drag()
	return calibration.Axis{
		Beta:  math.Sqrt(p.Diffusion() / fit.D),
		Kappa: 2 * math.Pi * gamma * fit.Fc,
	}, nil
}
