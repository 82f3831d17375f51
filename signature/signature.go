// Package signature implements the grammar-directed transducer over JVM
// field/method descriptors and generic signatures (JVMS §4.3, §4.7.9.1)
// described in spec §4.C: a left-to-right scan that substitutes class
// names via a mapping.Lookup while reconstructing the string byte for
// byte, leaving everything else untouched.
package signature

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stianloader/jrewrite/mapping"
)

// ErrMalformedSignature is returned when a signature is truncated mid-token
// (an unterminated L.../T... reference or an unbalanced "<...>" argument
// list). The original transducer this is ported from leaves this case
// undefined (spec §9 Open Question 3); this port chooses to bounds-check
// and fail loudly instead of reading out of range or looping forever.
var ErrMalformedSignature = errors.New("signature: malformed input")

// maxNestingDepth bounds the recursion used to rewrite nested generic
// argument lists ("<...<...>...>"), guarding against pathological input
// triggering unbounded recursion.
const maxNestingDepth = 256

// RewriteFieldDescriptor rewrites a single field descriptor: a primitive
// letter, an object form "L<internal-name>;", or an array form prefixing
// either of those with '['. Descriptors with no object component are
// returned unchanged, identity-preserved, so callers can use string
// identity to detect "no work done" (spec §4.C.1, §9).
func RewriteFieldDescriptor(lookup mapping.Lookup, desc string) string {
	idx := strings.IndexByte(desc, 'L')
	if idx < 0 {
		return desc
	}
	if len(desc) < idx+2 || desc[len(desc)-1] != ';' {
		// Malformed shape (no closing ';'); nothing sane to rewrite.
		return desc
	}
	name := desc[idx+1 : len(desc)-1]
	dst, changed := lookup.RemappedClassFast(name)
	if !changed {
		return desc
	}
	return desc[:idx] + "L" + dst + ";"
}

// RewriteInternalName rewrites either a bare internal name or, when name
// begins with '[', an array field descriptor — the "internal name or array
// descriptor" shape used by several classfile attributes (spec §4.C.3).
func RewriteInternalName(lookup mapping.Lookup, name string) string {
	if len(name) > 0 && name[0] == '[' {
		return RewriteFieldDescriptor(lookup, name)
	}
	return lookup.RemappedClass(name)
}

// RewriteSignature rewrites a field descriptor, method descriptor, field
// signature, method signature, or class signature — the same routine is
// correct for all five shapes (spec §4.C.2) — and reports whether any
// substitution was made. The empty string is trivially unmodified.
//
// scratch is an optional reusable buffer (spec §9's "shared mutable
// buffers as perf affordance"): pass nil to let RewriteSignature allocate
// its own, or pass a *strings.Builder the caller reuses across many calls.
// Its contents before the call are ignored and its contents after the call
// are unspecified; it must not be shared across concurrent calls.
func RewriteSignature(lookup mapping.Lookup, sig string, scratch *strings.Builder) (string, bool, error) {
	out := scratch
	if out == nil {
		out = &strings.Builder{}
	} else {
		out.Reset()
	}
	out.Grow(len(sig))
	modified, err := rewriteRange(lookup, sig, 0, len(sig), out, 0)
	if err != nil {
		return "", false, err
	}
	if !modified {
		return sig, false, nil
	}
	return out.String(), true, nil
}

// rewriteRange rewrites sig[start:end] into out, returning whether any
// class name in the range was substituted. depth tracks generic-argument
// nesting to bound recursion (spec §9 design note: "may iterate with an
// explicit stack to avoid deep call chains").
func rewriteRange(lookup mapping.Lookup, sig string, start, end int, out *strings.Builder, depth int) (bool, error) {
	if start > end || end > len(sig) {
		return false, fmt.Errorf("%w: invalid range [%d,%d) over %d-byte input", ErrMalformedSignature, start, end, len(sig))
	}
	if depth > maxNestingDepth {
		return false, fmt.Errorf("%w: generic nesting exceeds %d levels", ErrMalformedSignature, maxNestingDepth)
	}

	modified := false
	pos := start
	for pos < end {
		c := sig[pos]
		switch c {
		case 'L', 'T':
			nameStart := pos + 1
			scan := nameStart
			for scan < end && sig[scan] != ';' && sig[scan] != '<' {
				scan++
			}
			if scan >= end {
				return modified, fmt.Errorf("%w: unterminated class/type-variable token at byte %d", ErrMalformedSignature, pos)
			}
			name := sig[nameStart:scan]
			dst, changed := lookup.RemappedClassFast(name)
			if !changed {
				dst = name
			}
			modified = modified || changed

			if sig[scan] == ';' {
				out.WriteByte(c)
				out.WriteString(dst)
				out.WriteByte(';')
				pos = scan + 1
				continue
			}

			// sig[scan] == '<': a generic argument list begins here.
			out.WriteByte('L')
			out.WriteString(dst)
			out.WriteByte('<')

			interiorStart := scan + 1
			interiorEnd, err := matchingAngleBracket(sig, interiorStart, end)
			if err != nil {
				return modified, err
			}

			innerModified, err := rewriteRange(lookup, sig, interiorStart, interiorEnd, out, depth+1)
			if err != nil {
				return modified, err
			}
			modified = modified || innerModified

			out.WriteByte('>')
			pos = interiorEnd + 1

			// The byte following the closing '>' is typically ';' but can
			// be '.' for an inner-class generic separator; pass it through
			// unmodified rather than interpreting it.
			if pos < end {
				out.WriteByte(sig[pos])
				pos++
			}

		default:
			out.WriteByte(c)
			pos++
		}
	}
	return modified, nil
}

// matchingAngleBracket returns the index of the '>' that closes the '<'
// immediately preceding start, tracking nested "<...>" depth.
func matchingAngleBracket(sig string, start, end int) (int, error) {
	depth := 1
	pos := start
	for pos < end {
		switch sig[pos] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return pos, nil
			}
		}
		pos++
	}
	return 0, fmt.Errorf("%w: unbalanced generic argument list starting at byte %d", ErrMalformedSignature, start)
}
