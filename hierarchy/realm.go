// Package hierarchy computes member realms — equivalence classes of
// (owner, name, desc) triples that must share a single renaming decision
// because they participate in the same override or package-private access
// chain — over a closed world of classfile.Class trees (spec §4.E), and
// wraps a mapping.Lookup/mapping.Sink pair so every member of a realm
// renames together.
package hierarchy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/stianloader/jrewrite/classfile"
	"github.com/stianloader/jrewrite/memberref"
)

// ErrRealmInvariant is the internal-assertion failure of spec §7: after
// processing a supertype's member, its MemberRef must already be present
// in the realm table. Seeing this indicates a bug in BuildRealmTable
// itself, not bad caller input, so it is raised as a panic rather than
// returned; the panic value is an error wrapping ErrRealmInvariant, which a
// recovering caller can identify with errors.Is.
var ErrRealmInvariant = errors.New("hierarchy: realm invariant violated")

// MemberRealm is the equivalence class of a renaming decision: every owner
// in Members must apply the same rename recorded against RootDefinition.
type MemberRealm struct {
	RootDefinition memberref.MemberRef
	Members        map[string]struct{}
}

// Table maps any realm-member's MemberRef to the shared MemberRealm value.
// It is immutable once returned by BuildRealmTable.
type Table map[memberref.MemberRef]*MemberRealm

// classGraph is the scratch index BuildRealmTable assembles over the input
// before running the supertype-first pass described in spec §4.E.1.
type classGraph struct {
	byName      map[string]*classfile.Class
	children    map[string][]string
	descendants map[string]map[string]struct{}
}

// BuildRealmTable computes the realm table for a closed world of classes —
// the obfuscated application plus whatever libraries the caller considers
// in-scope. JDK classes are conventionally omitted by the caller.
func BuildRealmTable(classes []*classfile.Class) (Table, error) {
	g := buildClassGraph(classes)
	table := make(Table)

	for _, class := range orderSupertypeFirst(classes, g) {
		processMembers(table, g, class, class.Fields, fieldAccessor{})
		processMembers(table, g, class, class.Methods, methodAccessor{})
	}

	assertEveryMemberResolved(table, classes)
	return table, nil
}

// assertEveryMemberResolved enforces the post-condition of spec §4.E.1: for
// every (class, name, desc) triple the input declares, the realm table
// must contain an entry. A missing entry is an internal bug in
// BuildRealmTable, not a caller error, so it panics (spec §7 "Missing
// realm assertion").
func assertEveryMemberResolved(table Table, classes []*classfile.Class) {
	for _, class := range classes {
		for _, f := range class.Fields {
			ref := memberref.New(class.Name, f.Name, f.Desc)
			if _, ok := table[ref]; !ok {
				panic(fmt.Errorf("%w: %s", ErrRealmInvariant, ref))
			}
		}
		for _, m := range class.Methods {
			ref := memberref.New(class.Name, m.Name, m.Desc)
			if _, ok := table[ref]; !ok {
				panic(fmt.Errorf("%w: %s", ErrRealmInvariant, ref))
			}
		}
	}
}

func buildClassGraph(classes []*classfile.Class) *classGraph {
	g := &classGraph{
		byName:   make(map[string]*classfile.Class, len(classes)),
		children: make(map[string][]string),
	}
	for _, c := range classes {
		g.byName[c.Name] = c
	}
	for _, c := range classes {
		if c.SuperName != "" {
			g.children[c.SuperName] = append(g.children[c.SuperName], c.Name)
		}
		for _, iface := range c.Interfaces {
			g.children[iface] = append(g.children[iface], c.Name)
		}
	}
	g.descendants = transitiveClosure(g.children)
	return g
}

func transitiveClosure(children map[string][]string) map[string]map[string]struct{} {
	memo := make(map[string]map[string]struct{}, len(children))
	var visit func(name string, visiting map[string]bool) map[string]struct{}
	visit = func(name string, visiting map[string]bool) map[string]struct{} {
		if set, ok := memo[name]; ok {
			return set
		}
		set := make(map[string]struct{})
		memo[name] = set // break cycles defensively; real classfiles are acyclic
		if visiting[name] {
			return set
		}
		visiting[name] = true
		for _, child := range children[name] {
			set[child] = struct{}{}
			for d := range visit(child, visiting) {
				set[d] = struct{}{}
			}
		}
		visiting[name] = false
		return set
	}
	for name := range children {
		visit(name, map[string]bool{})
	}
	return memo
}

// orderSupertypeFirst sorts classes by descending descendant-set size, with
// a reverse-lexicographic tie-break, so every class is processed before its
// subclasses (spec §4.E.1 step 3).
func orderSupertypeFirst(classes []*classfile.Class, g *classGraph) []*classfile.Class {
	ordered := make([]*classfile.Class, len(classes))
	copy(ordered, classes)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := len(g.descendants[ordered[i].Name]), len(g.descendants[ordered[j].Name])
		if di != dj {
			return di > dj
		}
		return ordered[i].Name > ordered[j].Name
	})
	return ordered
}

// memberAccessor abstracts over classfile.Field and classfile.Method so
// processMembers can run the identical algorithm for both (spec §4.E.1:
// "the two loops are structurally identical modulo field/method access").
type memberAccessor interface {
	name(m any) string
	desc(m any) string
	access(m any) int
}

type fieldAccessor struct{}

func (fieldAccessor) name(m any) string { return m.(*classfile.Field).Name }
func (fieldAccessor) desc(m any) string { return m.(*classfile.Field).Desc }
func (fieldAccessor) access(m any) int  { return m.(*classfile.Field).Access }

type methodAccessor struct{}

func (methodAccessor) name(m any) string { return m.(*classfile.Method).Name }
func (methodAccessor) desc(m any) string { return m.(*classfile.Method).Desc }
func (methodAccessor) access(m any) int  { return m.(*classfile.Method).Access }

func processMembers[M any](table Table, g *classGraph, class *classfile.Class, declared []M, acc memberAccessor) {
	for _, m := range declared {
		name := acc.name(m)
		desc := acc.desc(m)
		access := acc.access(m)
		self := memberref.New(class.Name, name, desc)

		if _, exists := table[self]; exists {
			continue // a supertype already resolved this realm
		}

		switch {
		case access&(classfile.AccStatic|classfile.AccPrivate) != 0:
			publishRealm(table, self, map[string]struct{}{class.Name: {}})

		case access&(classfile.AccPublic|classfile.AccProtected) != 0:
			realmMembers := map[string]struct{}{class.Name: {}}
			for d := range g.descendants[class.Name] {
				realmMembers[d] = struct{}{}
			}
			publishRealm(table, self, realmMembers)

		default:
			publishPackagePrivateRealm(table, g, class, self, name, desc)
		}
	}
}

// publishPackagePrivateRealm implements spec §4.E.1's package-private
// branch, including the access-widening subtlety: only descendants in the
// declaring class's package join the realm, and such a same-package
// descendant that redeclares the member as public/protected pulls all of
// its own descendants (in any package) into the realm too.
func publishPackagePrivateRealm(table Table, g *classGraph, class *classfile.Class, self memberref.MemberRef, name, desc string) {
	pkg := packageOf(class.Name)
	members := map[string]struct{}{class.Name: {}}

	for d := range g.descendants[class.Name] {
		if packageOf(d) != pkg {
			continue
		}
		members[d] = struct{}{}

		if dc := g.byName[d]; dc != nil && widensAccess(dc, name, desc) {
			for wd := range g.descendants[d] {
				members[wd] = struct{}{}
			}
		}
	}

	publishRealm(table, self, members)
}

func widensAccess(class *classfile.Class, name, desc string) bool {
	isMethod := len(desc) > 0 && desc[0] == '('
	if isMethod {
		for _, m := range class.Methods {
			if m.Name == name && m.Desc == desc {
				return m.Access&(classfile.AccPublic|classfile.AccProtected) != 0
			}
		}
		return false
	}
	for _, f := range class.Fields {
		if f.Name == name && f.Desc == desc {
			return f.Access&(classfile.AccPublic|classfile.AccProtected) != 0
		}
	}
	return false
}

func publishRealm(table Table, root memberref.MemberRef, members map[string]struct{}) {
	realm := &MemberRealm{RootDefinition: root, Members: members}
	for owner := range members {
		table[memberref.New(owner, root.Name, root.Desc)] = realm
	}
}

func packageOf(internalName string) string {
	idx := strings.LastIndexByte(internalName, '/')
	if idx < 0 {
		return ""
	}
	return internalName[:idx]
}
