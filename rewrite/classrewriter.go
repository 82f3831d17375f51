// Package rewrite implements the classfile traversal and rewrite engine
// (spec §4.D): given a mapping.Lookup, it walks every location in a parsed
// classfile.Class that can textually name a class or member and rewrites
// it in place, delegating string-level work to package signature.
package rewrite

import (
	"strings"

	"github.com/stianloader/jrewrite/classfile"
	"github.com/stianloader/jrewrite/mapping"
	"github.com/stianloader/jrewrite/remaplog"
	"github.com/stianloader/jrewrite/signature"
)

// ClassRewriter mutates classfile.Class trees in place according to the
// renames recorded in its Lookup.
type ClassRewriter struct {
	Lookup mapping.Lookup

	// Recorder is an optional diagnostics collaborator notified at the
	// class's own name and at each declared field and method name; other
	// rename sites (supertypes, descriptors, instructions, ...) are not
	// reported. A nil Recorder (the zero value) disables diagnostics
	// entirely.
	Recorder remaplog.Recorder
}

// New returns a ClassRewriter bound to lookup, with diagnostics disabled.
// Set the Recorder field afterwards to observe renames.
func New(lookup mapping.Lookup) *ClassRewriter {
	return &ClassRewriter{Lookup: lookup}
}

func (r *ClassRewriter) recorder() remaplog.Recorder {
	if r.Recorder == nil {
		return remaplog.Discard
	}
	return r.Recorder
}

func (r *ClassRewriter) recordClass(src string) string {
	dst, changed := r.Lookup.RemappedClassFast(src)
	if !changed {
		r.recorder().Skipped(remaplog.KindClass, src)
		return src
	}
	r.recorder().Renamed(remaplog.KindClass, src, dst)
	return dst
}

// RewriteClass rewrites every renameable site of class in place, in the
// order fixed by spec §4.D.1: read first, rename self last. Steps 1 and 5
// read class.Name as the unmapped owner for member lookups, so the class's
// own name must not be rewritten until every member has been processed.
//
// scratch is an optional reusable string-builder buffer threaded through
// to the signature rewriter; see signature.RewriteSignature.
func (r *ClassRewriter) RewriteClass(class *classfile.Class, scratch *strings.Builder) error {
	owner := class.Name

	for _, f := range class.Fields {
		if err := r.rewriteField(owner, f, scratch); err != nil {
			return err
		}
	}

	for _, ic := range class.InnerClasses {
		ic.OuterName = r.Lookup.RemappedClass(ic.OuterName)
		ic.Name = r.Lookup.RemappedClass(ic.Name)
		// ic.InnerName (the short display name) is left alone: renaming it
		// is an explicit non-goal.
	}

	for i, iface := range class.Interfaces {
		class.Interfaces[i] = r.Lookup.RemappedClass(iface)
	}

	if err := r.rewriteAnnotationLists(
		class.InvisibleTypeAnnotations, class.InvisibleAnnotations,
		class.VisibleTypeAnnotations, class.VisibleAnnotations,
	); err != nil {
		return err
	}

	for _, m := range class.Methods {
		if err := r.rewriteMethod(owner, m, scratch); err != nil {
			return err
		}
	}

	if class.Module != nil {
		class.Module.MainClass = r.Lookup.RemappedClass(class.Module.MainClass)
		for i, use := range class.Module.Uses {
			class.Module.Uses[i] = signature.RewriteInternalName(r.Lookup, use)
		}
	}

	class.NestHostClass = r.Lookup.RemappedClass(class.NestHostClass)

	for i, nm := range class.NestMembers {
		class.NestMembers[i] = r.Lookup.RemappedClass(nm)
	}

	if class.OuterClass != "" {
		if class.OuterMethod != "" && class.OuterMethodDesc != "" {
			class.OuterMethod = r.Lookup.RemappedMethod(class.OuterClass, class.OuterMethod, class.OuterMethodDesc)
		}
		class.OuterClass = r.Lookup.RemappedClass(class.OuterClass)
	}

	if class.OuterMethodDesc != "" {
		newDesc, _, err := signature.RewriteSignature(r.Lookup, class.OuterMethodDesc, scratch)
		if err != nil {
			return err
		}
		class.OuterMethodDesc = newDesc
	}

	for i, p := range class.PermittedSubclasses {
		class.PermittedSubclasses[i] = r.Lookup.RemappedClass(p)
	}

	for _, rc := range class.RecordComponents {
		if err := r.rewriteRecordComponent(rc, scratch); err != nil {
			return err
		}
	}

	if class.Signature != "" {
		newSig, _, err := signature.RewriteSignature(r.Lookup, class.Signature, scratch)
		if err != nil {
			return err
		}
		class.Signature = newSig
	}

	if class.SuperName != "" {
		class.SuperName = r.Lookup.RemappedClass(class.SuperName)
	}

	class.Name = r.recordClass(class.Name)

	return nil
}

func (r *ClassRewriter) rewriteRecordComponent(rc *classfile.RecordComponent, scratch *strings.Builder) error {
	rc.Desc = signature.RewriteFieldDescriptor(r.Lookup, rc.Desc)

	if err := r.rewriteAnnotationLists(
		rc.InvisibleTypeAnnotations, rc.InvisibleAnnotations,
		rc.VisibleTypeAnnotations, rc.VisibleAnnotations,
	); err != nil {
		return err
	}

	if rc.Signature != "" {
		newSig, _, err := signature.RewriteSignature(r.Lookup, rc.Signature, scratch)
		if err != nil {
			return err
		}
		rc.Signature = newSig
	}
	return nil
}

func (r *ClassRewriter) rewriteField(owner string, field *classfile.Field, scratch *strings.Builder) error {
	newName := r.Lookup.RemappedField(owner, field.Name, field.Desc)
	if newName != field.Name {
		r.recorder().Renamed(remaplog.KindField, field.Name, newName)
	} else {
		r.recorder().Skipped(remaplog.KindField, field.Name)
	}
	field.Name = newName

	if len(field.Desc) > 0 && (field.Desc[0] == '[' || field.Desc[0] == 'L') {
		field.Desc = signature.RewriteFieldDescriptor(r.Lookup, field.Desc)
		if field.Signature != "" {
			newSig, _, err := signature.RewriteSignature(r.Lookup, field.Signature, scratch)
			if err != nil {
				return err
			}
			field.Signature = newSig
		}
	}

	return r.rewriteAnnotationLists(
		field.InvisibleTypeAnnotations, field.InvisibleAnnotations,
		field.VisibleTypeAnnotations, field.VisibleAnnotations,
	)
}
