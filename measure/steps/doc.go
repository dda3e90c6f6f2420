// Package steps detects and analyses abrupt level changes (steps) in noisy
// traces.
//
// Detection follows Smith (1998): a trace is filtered with the
// forward-backward nonlinear filter of package fbnl, and runs where the step
// mass (xb-xf)/noise exceeds a threshold yc are collected into candidate
// steps. Candidates whose centers are too close are fused or rejected, small
// steps are deleted afterwards, and every surviving step is rated by
// comparing the noise with the standard deviation of its adjoining plateaus.
//
// [FilterFindAnalyse] runs the whole pipeline: a bank of filter windows is
// scanned to pick the window with the least step-mass noise, the trace is
// refiltered with it and the steps are found and analysed.
package steps
