package rewrite

import (
	"strings"

	"github.com/stianloader/jrewrite/classfile"
	"github.com/stianloader/jrewrite/mapping"
	"github.com/stianloader/jrewrite/remaplog"
	"github.com/stianloader/jrewrite/signature"
)

// rewriteMethod rewrites every renameable site of a single method in the
// order fixed by spec §4.D.3.
func (r *ClassRewriter) rewriteMethod(owner string, method *classfile.Method, scratch *strings.Builder) error {
	newName := r.Lookup.RemappedMethod(owner, method.Name, method.Desc)
	if newName != method.Name {
		r.recorder().Renamed(remaplog.KindMethod, method.Name, newName)
	} else {
		r.recorder().Skipped(remaplog.KindMethod, method.Name)
	}
	method.Name = newName

	for i, exc := range method.Exceptions {
		method.Exceptions[i] = r.Lookup.RemappedClass(exc)
	}

	if err := r.rewriteAnnotationLists(
		method.InvisibleTypeAnnotations, method.InvisibleAnnotations,
		method.VisibleTypeAnnotations, method.VisibleAnnotations,
	); err != nil {
		return err
	}
	if err := r.rewriteTypeAnnotations(method.InvisibleLocalVarAnnotations); err != nil {
		return err
	}
	if err := r.rewriteTypeAnnotations(method.VisibleLocalVarAnnotations); err != nil {
		return err
	}

	for _, p := range method.Parameters {
		if err := r.rewriteAnnotations(p.Invisible); err != nil {
			return err
		}
		if err := r.rewriteAnnotations(p.Visible); err != nil {
			return err
		}
	}

	for _, lv := range method.LocalVars {
		lv.Desc = signature.RewriteFieldDescriptor(r.Lookup, lv.Desc)
		if lv.Signature != "" {
			newSig, _, err := signature.RewriteSignature(r.Lookup, lv.Signature, scratch)
			if err != nil {
				return err
			}
			lv.Signature = newSig
		}
	}

	for _, tc := range method.TryCatches {
		if tc.Type != "" {
			tc.Type = r.Lookup.RemappedClass(tc.Type)
		}
		if err := r.rewriteTypeAnnotations(tc.VisibleTypeAnnotations); err != nil {
			return err
		}
		if err := r.rewriteTypeAnnotations(tc.InvisibleTypeAnnotations); err != nil {
			return err
		}
	}

	newDesc, _, err := signature.RewriteSignature(r.Lookup, method.Desc, scratch)
	if err != nil {
		return err
	}
	method.Desc = newDesc

	if method.Signature != "" {
		newSig, _, err := signature.RewriteSignature(r.Lookup, method.Signature, scratch)
		if err != nil {
			return err
		}
		method.Signature = newSig
	}

	if method.AnnotationDefault != nil {
		newDefault, err := r.rewriteAnnotationValue(method.AnnotationDefault)
		if err != nil {
			return err
		}
		method.AnnotationDefault = newDefault
	}

	for _, insn := range method.Instructions {
		if err := r.rewriteInstruction(insn); err != nil {
			return err
		}
	}

	return nil
}

// rewriteInstruction dispatches on instruction kind (spec §4.D.3 step 10).
// Opaque instruction kinds (everything that cannot name a class or member)
// fall through untouched.
func (r *ClassRewriter) rewriteInstruction(insn classfile.Instruction) error {
	switch ins := insn.(type) {
	case *classfile.FieldInsn:
		ins.Name = r.Lookup.RemappedField(ins.Owner, ins.Name, ins.Desc)
		ins.Desc = signature.RewriteFieldDescriptor(r.Lookup, ins.Desc)
		ins.Owner = r.Lookup.RemappedClass(ins.Owner)
		return nil

	case *classfile.FrameInsn:
		rewriteFrameEntries(r.Lookup, ins.Stack)
		rewriteFrameEntries(r.Lookup, ins.Local)
		return nil

	case *classfile.InvokeDynamicInsn:
		return r.rewriteInvokeDynamic(ins)

	case *classfile.LdcInsn:
		if tc, ok := ins.Constant.(*classfile.TypeConstant); ok {
			newDesc := signature.RewriteFieldDescriptor(r.Lookup, tc.Desc)
			if newDesc != tc.Desc {
				ins.Constant = &classfile.TypeConstant{Sort: tc.Sort, Desc: newDesc}
			}
		}
		return nil

	case *classfile.MethodInsn:
		if strings.HasPrefix(ins.Owner, "[") {
			ins.Owner = signature.RewriteFieldDescriptor(r.Lookup, ins.Owner)
		} else {
			ins.Name = r.Lookup.RemappedMethod(ins.Owner, ins.Name, ins.Desc)
			ins.Owner = r.Lookup.RemappedClass(ins.Owner)
		}
		newDesc, _, err := signature.RewriteSignature(r.Lookup, ins.Desc, nil)
		if err != nil {
			return err
		}
		ins.Desc = newDesc
		return nil

	case *classfile.MultiANewArrayInsn:
		ins.Desc = signature.RewriteFieldDescriptor(r.Lookup, ins.Desc)
		return nil

	case *classfile.TypeInsn:
		ins.Desc = signature.RewriteInternalName(r.Lookup, ins.Desc)
		return nil

	default:
		return nil
	}
}

func rewriteFrameEntries(lookup mapping.Lookup, entries []any) {
	for i, e := range entries {
		if s, ok := e.(string); ok {
			entries[i] = signature.RewriteInternalName(lookup, s)
		}
	}
}

func (r *ClassRewriter) rewriteInvokeDynamic(ins *classfile.InvokeDynamicInsn) error {
	samOwner := methodReturnInternalName(ins.Desc)
	bsmDesc := ins.Desc
	if len(ins.BootstrapArgs) > 0 {
		if t, ok := ins.BootstrapArgs[0].(classfile.BSMTypeArg); ok {
			bsmDesc = t.Desc
		}
	}
	ins.Name = r.Lookup.RemappedMethod(samOwner, ins.Name, bsmDesc)

	for i, arg := range ins.BootstrapArgs {
		newArg, err := r.rewriteBSMArgument(arg)
		if err != nil {
			return err
		}
		ins.BootstrapArgs[i] = newArg
	}

	newDesc, _, err := signature.RewriteSignature(r.Lookup, ins.Desc, nil)
	if err != nil {
		return err
	}
	ins.Desc = newDesc
	return nil
}

// methodReturnInternalName extracts the internal name of a method
// descriptor's return type, which spec §4.D.3 assumes is always the
// invokedynamic call site's SAM interface (an object type, never an
// array or primitive).
func methodReturnInternalName(desc string) string {
	idx := strings.IndexByte(desc, ')')
	if idx < 0 || idx+1 >= len(desc) {
		return ""
	}
	ret := desc[idx+1:]
	return internalNameFromFieldDesc(ret)
}

// rewriteBSMArgument rewrites a single invokedynamic bootstrap argument
// (spec §4.D.6).
func (r *ClassRewriter) rewriteBSMArgument(arg classfile.BSMArgument) (classfile.BSMArgument, error) {
	switch a := arg.(type) {
	case classfile.BSMTypeArg:
		switch a.Sort {
		case classfile.SortMethod:
			newDesc, _, err := signature.RewriteSignature(r.Lookup, a.Desc, nil)
			if err != nil {
				return nil, err
			}
			return classfile.BSMTypeArg{TypeConstant: &classfile.TypeConstant{Sort: a.Sort, Desc: newDesc}}, nil
		case classfile.SortObject:
			newDesc := signature.RewriteInternalName(r.Lookup, a.Desc)
			return classfile.BSMTypeArg{TypeConstant: &classfile.TypeConstant{Sort: a.Sort, Desc: newDesc}}, nil
		default:
			return nil, ErrUnsupportedBootstrapArgument
		}

	case *classfile.BSMHandleArg:
		a.Name = r.Lookup.RemappedMethod(a.Owner, a.Name, a.Desc)
		a.Owner = r.Lookup.RemappedClass(a.Owner)
		newDesc, _, err := signature.RewriteSignature(r.Lookup, a.Desc, nil)
		if err != nil {
			return nil, err
		}
		a.Desc = newDesc
		return a, nil

	case classfile.BSMStringArg:
		return a, nil

	default:
		return nil, ErrUnsupportedBootstrapArgument
	}
}
