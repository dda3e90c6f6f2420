// Package psd estimates power spectral densities of position traces and
// calibrates optical traps from them.
//
// A trapped bead performs Brownian motion in a harmonic potential; its
// one-sided spectrum is the Lorentzian
//
//	P(f) = D / (π² (fc² + f²))
//
// with corner frequency fc = κ/(2πγ) and diffusion constant D (in signal
// units² per second). [FitLorentzian] fits fc and D to an averaged
// periodogram from [Estimate], [Calibrate] turns the fit into the
// displacement sensitivity β and the trap stiffness κ.
//
// References:
//
//	Berg-Sørensen, K. & Flyvbjerg, H. 2004 "Power spectrum analysis for
//	optical tweezers." Rev. Sci. Instrum. 75, 594-612
package psd
