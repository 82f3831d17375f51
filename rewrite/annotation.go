package rewrite

import (
	"github.com/stianloader/jrewrite/classfile"
	"github.com/stianloader/jrewrite/signature"
)

// rewriteAnnotationLists rewrites the four standard annotation lists that
// hang off a class, field, record component, or method: invisible type
// annotations, invisible annotations, visible type annotations, visible
// annotations (spec §4.D.1 step 4, §4.D.2 step 3, §4.D.3 step 3). A
// try/catch block carries only type annotations and goes through
// rewriteTypeAnnotations directly.
func (r *ClassRewriter) rewriteAnnotationLists(
	invisibleType []*classfile.TypeAnnotation,
	invisible []*classfile.Annotation,
	visibleType []*classfile.TypeAnnotation,
	visible []*classfile.Annotation,
) error {
	if err := r.rewriteTypeAnnotations(invisibleType); err != nil {
		return err
	}
	if err := r.rewriteAnnotations(invisible); err != nil {
		return err
	}
	if err := r.rewriteTypeAnnotations(visibleType); err != nil {
		return err
	}
	return r.rewriteAnnotations(visible)
}

func (r *ClassRewriter) rewriteTypeAnnotations(list []*classfile.TypeAnnotation) error {
	for _, ta := range list {
		if err := r.rewriteAnnotation(ta.Annotation); err != nil {
			return err
		}
	}
	return nil
}

func (r *ClassRewriter) rewriteAnnotations(list []*classfile.Annotation) error {
	for _, a := range list {
		if err := r.rewriteAnnotation(a); err != nil {
			return err
		}
	}
	return nil
}

// rewriteAnnotation rewrites a single annotation's descriptor and recurses
// into its value list (spec §4.D.4).
func (r *ClassRewriter) rewriteAnnotation(ann *classfile.Annotation) error {
	ann.Desc = signature.RewriteFieldDescriptor(r.Lookup, ann.Desc)

	for i := 1; i < len(ann.Values); i += 2 {
		newVal, err := r.rewriteAnnotationValue(ann.Values[i])
		if err != nil {
			return err
		}
		ann.Values[i] = newVal
	}
	return nil
}

// rewriteAnnotationValue dispatches on the runtime shape of an annotation
// value (spec §4.D.5).
func (r *ClassRewriter) rewriteAnnotationValue(value any) (any, error) {
	switch v := value.(type) {
	case *classfile.AnnotationTypeValue:
		newDesc, modified, err := signature.RewriteSignature(r.Lookup, v.Desc, nil)
		if err != nil {
			return nil, err
		}
		if !modified {
			return v, nil
		}
		return &classfile.AnnotationTypeValue{Desc: newDesc}, nil

	case *classfile.AnnotationEnumValue:
		ownerInternal := internalNameFromFieldDesc(v.OwnerDesc)
		newName := r.Lookup.RemappedField(ownerInternal, v.Name, v.OwnerDesc)
		newOwnerDesc := signature.RewriteFieldDescriptor(r.Lookup, v.OwnerDesc)
		return &classfile.AnnotationEnumValue{OwnerDesc: newOwnerDesc, Name: newName}, nil

	case *classfile.Annotation:
		if err := r.rewriteAnnotation(v); err != nil {
			return nil, err
		}
		return v, nil

	case *classfile.AnnotationArrayValue:
		for i, elem := range v.Values {
			newElem, err := r.rewriteAnnotationValue(elem)
			if err != nil {
				return nil, err
			}
			v.Values[i] = newElem
		}
		return v, nil

	default:
		// Primitive boxes, strings, numbers: left unchanged.
		return value, nil
	}
}

// internalNameFromFieldDesc strips the "L...;" wrapper of an object field
// descriptor, returning the bare internal name.
func internalNameFromFieldDesc(desc string) string {
	if len(desc) >= 2 && desc[0] == 'L' && desc[len(desc)-1] == ';' {
		return desc[1 : len(desc)-1]
	}
	return desc
}
