// Package diff adapts the teacher's fixture-harness idiom (one named
// snapshot per test case) into a small helper
// shared by the rewrite and signature test suites, instead of every _test.go
// file duplicating go-snaps boilerplate.
package diff

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// MatchClassTree snapshots a human-readable rendering of a rewritten
// classfile.Class tree under name, scoped to the calling test. The caller
// renders the tree itself and passes the pre-formatted string as rendered.
func MatchClassTree(t *testing.T, name string, rendered string) {
	t.Helper()
	snaps.MatchSnapshot(t, fmt.Sprintf("%s_class", name), rendered)
}

// MatchSignature snapshots the rewritten form of a single descriptor or
// signature string, paired with whether the rewrite reported a change.
func MatchSignature(t *testing.T, name, src, rewritten string, modified bool) {
	t.Helper()
	snaps.MatchSnapshot(t, fmt.Sprintf("%s_signature", name), fmt.Sprintf("src=%s\nrewritten=%s\nmodified=%t", src, rewritten, modified))
}
