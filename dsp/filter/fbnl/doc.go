// Package fbnl implements the forward-backward nonlinear filter of Chung and
// Kennedy (1991) for noisy traces containing abrupt level changes.
//
// For every sample the filter compares a forward predictor (the mean of the
// preceding window) with a backward predictor (the mean of the following
// window) and weights them by the inverse of their local prediction
// variances. Besides the filtered trace, a [Result] carries the quantities
// Smith (1998) uses for edge detection: the step size xb-xf, the weighted
// noise and their ratio, the step mass.
//
// References:
//
//	Chung, S.H. & Kennedy, R.A. 1991 "Forward-backward nonlinear filtering
//	technique for extracting small biological signals from noise."
//	J. Neurosci. Meth. 40, 71-86
//
//	Smith, D.A. 1998 "A Quantitative Method for the Detection of Edges in
//	Noisy Time-Series." Phil. Trans. R. Soc. Lond. B 353, 1969-1981
package fbnl
