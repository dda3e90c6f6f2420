// Package calibration models the setup of an optical-tweezer measurement:
// how raw traces of a record are converted into signal units, and the
// calibration constants that turn signals into bead displacement and force.
//
// A [Calibration] either carries its constants directly or names a
// [Source] that a [Registry] resolves through a registered [Loader].
package calibration
