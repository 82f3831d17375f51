package rewrite

import "errors"

// ErrUnsupportedBootstrapArgument is returned when an invokedynamic
// bootstrap argument is not a Type, a MethodHandle, or a String — a shape
// this engine does not know how to rewrite, indicating either a malformed
// class or a newer classfile feature (spec §7).
var ErrUnsupportedBootstrapArgument = errors.New("rewrite: unsupported bootstrap method argument")
