// Package memberref defines the value identity used throughout jrewrite to
// name a field or method: the (owner, name, descriptor) triple from JVMS §4.
package memberref

import "fmt"

// MemberRef is an immutable (owner, name, descriptor) triple identifying a
// single field or method declaration site. Owner is a JVM internal name
// (slash-delimited, no leading L, no trailing ;). Desc distinguishes field
// from method by its first byte: '(' begins a method descriptor, anything
// else is a field descriptor.
//
// MemberRef has no validation; callers are expected to pass well-formed JVM
// strings, matching the rest of this module's read-first contracts.
type MemberRef struct {
	Owner string
	Name  string
	Desc  string
}

// New constructs a MemberRef from its three components.
func New(owner, name, desc string) MemberRef {
	return MemberRef{Owner: owner, Name: name, Desc: desc}
}

// IsMethod reports whether the descriptor shape makes this a method
// reference rather than a field reference.
func (m MemberRef) IsMethod() bool {
	return len(m.Desc) > 0 && m.Desc[0] == '('
}

// WithOwner returns a copy of m with a different owner, leaving name and
// descriptor untouched. Used when canonicalizing a query to a realm root.
func (m MemberRef) WithOwner(owner string) MemberRef {
	m.Owner = owner
	return m
}

// String renders the triple as "owner.name desc" for diagnostics.
func (m MemberRef) String() string {
	return fmt.Sprintf("%s.%s %s", m.Owner, m.Name, m.Desc)
}
