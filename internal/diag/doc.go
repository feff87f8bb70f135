// Package diag carries structured diagnostics between compiler phases.
//
// Phases never print; they hand diagnostics to a Reporter. The CLI decides
// how (and whether) to render them. Source-level errors are recoverable and
// accumulate in a Bag; internal-invariant failures surface as Go errors or
// panics instead and never go through this package.
package diag
