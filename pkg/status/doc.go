// Package status holds the in-memory status cache for monitored targets and
// the rules for deriving one status record from the previous one.
//
// The cache is the only mutable state shared between the scheduler (one writer
// per target id) and API readers. It stores observed status only; scheduling
// parameters are tracked by the reconciler.
package status
