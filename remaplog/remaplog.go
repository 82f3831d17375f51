// Package remaplog defines an optional, caller-supplied diagnostics
// collaborator for a rewrite pass. It mirrors the teacher's pattern of
// passing small optional interfaces (the scratch buffer in package
// signature, the HintsLevel knob in the teacher's semantic analyzer) instead
// of reaching for a global logger.
package remaplog

import "github.com/stianloader/jrewrite/memberref"

// Recorder receives notifications as a rewrite pass runs. A nil Recorder is
// always a valid no-op: callers that don't care about diagnostics simply
// don't pass one.
type Recorder interface {
	// Renamed is called once a class or member's name has actually changed.
	Renamed(kind Kind, src, dst string)

	// Skipped is called for a site that was visited but had no recorded
	// rename (the Lookup returned the source name unchanged).
	Skipped(kind Kind, src string)

	// Rejected is called when a requested rename could not be recorded,
	// e.g. mapping.ErrInvalidRename during dictionary population.
	Rejected(kind Kind, ref memberref.MemberRef, reason error)
}

// Kind distinguishes the renameable site categories a Recorder is told
// about.
type Kind int

const (
	KindClass Kind = iota
	KindField
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Discard is a Recorder that ignores every call; useful as an explicit
// placeholder where a nil check would otherwise be needed at every call
// site.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Renamed(Kind, string, string)             {}
func (discard) Skipped(Kind, string)                     {}
func (discard) Rejected(Kind, memberref.MemberRef, error) {}
