// Package beauty owns the fifteen beautification sliders and the enabled
// flag of a mirror view.
//
// Stored values are integers in [0,100]. The effect engine consumes the
// derived Effective view: stored/100 while enabled, all zeros while disabled.
// Toggling the flag never touches stored values, so re-enabling restores the
// previous look.
package beauty
