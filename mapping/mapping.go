// Package mapping defines the read (Lookup) and write (Sink) contracts for
// a source-to-destination name dictionary, and a Dictionary implementing
// both over two in-memory maps.
package mapping

import (
	"errors"
	"fmt"

	"github.com/stianloader/jrewrite/memberref"
	"github.com/stianloader/jrewrite/remaplog"
)

// ErrInvalidRename is returned by Dictionary.RemapMemberChecked (and wrapped
// in the panic value of Dictionary.RemapMember) when the request
// would rename a constructor or static initializer to or from its fixed
// name, in violation of spec §4.B.
var ErrInvalidRename = errors.New("mapping: invalid rename")

// Lookup is the read-only contract a ClassRewriter queries while rewriting
// a class tree. All four operations are pure and must never fail: a
// missing entry always yields the source name.
type Lookup interface {
	// RemappedClass returns the destination internal name for src, or src
	// itself when no rename is recorded.
	RemappedClass(src string) string

	// RemappedClassFast returns the destination internal name and true
	// only when a rename is recorded; otherwise ("", false). Hot paths use
	// this to skip string building when nothing needs rewriting.
	RemappedClassFast(src string) (string, bool)

	// RemappedField returns the destination simple name for the field
	// identified by (owner, name, desc), or name when unmapped.
	RemappedField(owner, name, desc string) string

	// RemappedMethod returns the destination simple name for the method
	// identified by (owner, name, desc), or name when unmapped.
	RemappedMethod(owner, name, desc string) string
}

// Sink is the write contract used to populate a name dictionary.
type Sink interface {
	// RemapClass records a class rename and returns the sink for chaining.
	RemapClass(src, dst string) Sink

	// RemapMember records a member rename and returns the sink for
	// chaining. Implementations that also implement Lookup must reject
	// renaming a constructor/static-initializer to or from its fixed name
	// (other than the no-op case where dst equals the source name).
	RemapMember(src memberref.MemberRef, dst string) Sink
}

// Dictionary is the canonical MappingLookup+MappingSink implementation: two
// maps, no validation beyond the <init>/<clinit> restriction, silent
// overwrite on duplicate keys.
type Dictionary struct {
	classMap  map[string]string
	memberMap map[memberref.MemberRef]string

	// Recorder is an optional diagnostics collaborator notified whenever a
	// RemapMember/RemapMemberChecked request is rejected. A nil Recorder
	// disables diagnostics entirely.
	Recorder remaplog.Recorder
}

// NewDictionary returns an empty, ready-to-populate Dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		classMap:  make(map[string]string),
		memberMap: make(map[memberref.MemberRef]string),
	}
}

var _ Lookup = (*Dictionary)(nil)
var _ Sink = (*Dictionary)(nil)

// RemappedClass implements Lookup.
func (d *Dictionary) RemappedClass(src string) string {
	if dst, ok := d.classMap[src]; ok {
		return dst
	}
	return src
}

// RemappedClassFast implements Lookup.
func (d *Dictionary) RemappedClassFast(src string) (string, bool) {
	dst, ok := d.classMap[src]
	return dst, ok
}

// RemappedField implements Lookup.
func (d *Dictionary) RemappedField(owner, name, desc string) string {
	return d.remappedMember(owner, name, desc)
}

// RemappedMethod implements Lookup.
func (d *Dictionary) RemappedMethod(owner, name, desc string) string {
	return d.remappedMember(owner, name, desc)
}

func (d *Dictionary) remappedMember(owner, name, desc string) string {
	if dst, ok := d.memberMap[memberref.New(owner, name, desc)]; ok {
		return dst
	}
	return name
}

// RemapClass implements Sink.
func (d *Dictionary) RemapClass(src, dst string) Sink {
	d.classMap[src] = dst
	return d
}

// RemapMember implements Sink. It panics if called with a malformed rename
// request (an <init>/<clinit> rename); see RemapMemberChecked for a variant
// that returns an error instead.
func (d *Dictionary) RemapMember(src memberref.MemberRef, dst string) Sink {
	if err := d.remapMemberChecked(src, dst); err != nil {
		panic(err)
	}
	return d
}

// RemapMemberChecked behaves like RemapMember but returns ErrInvalidRename
// instead of panicking when the request is rejected.
func (d *Dictionary) RemapMemberChecked(src memberref.MemberRef, dst string) error {
	return d.remapMemberChecked(src, dst)
}

func (d *Dictionary) remapMemberChecked(src memberref.MemberRef, dst string) error {
	if src.IsMethod() {
		if isSpecialMethodName(dst) && dst != src.Name {
			err := fmt.Errorf("%w: cannot rename method %s to %q", ErrInvalidRename, src, dst)
			d.recorder().Rejected(remaplog.KindMethod, src, err)
			return err
		}
		if isSpecialMethodName(src.Name) && dst != src.Name {
			err := fmt.Errorf("%w: cannot rename %s away from its fixed name", ErrInvalidRename, src)
			d.recorder().Rejected(remaplog.KindMethod, src, err)
			return err
		}
	}
	d.memberMap[src] = dst
	return nil
}

func (d *Dictionary) recorder() remaplog.Recorder {
	if d.Recorder == nil {
		return remaplog.Discard
	}
	return d.Recorder
}

func isSpecialMethodName(name string) bool {
	return name == "<init>" || name == "<clinit>"
}
