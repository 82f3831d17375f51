package rewrite

import (
	"fmt"
	"testing"

	"github.com/stianloader/jrewrite/classfile"
	"github.com/stianloader/jrewrite/internal/diff"
)

// renderClass is a deliberately plain textual rendering used only to give
// snapshot tests something stable to diff against; it is not part of the
// public API.
func renderClass(c *classfile.Class) string {
	out := fmt.Sprintf("class %s extends %s implements %v\n", c.Name, c.SuperName, c.Interfaces)
	for _, f := range c.Fields {
		out += fmt.Sprintf("  field %s %s\n", f.Desc, f.Name)
	}
	for _, m := range c.Methods {
		out += fmt.Sprintf("  method %s%s\n", m.Name, m.Desc)
	}
	return out
}

func TestRewriteClassSnapshot(t *testing.T) {
	d := newTestDict()
	c := &classfile.Class{
		Name:       "a/Old",
		SuperName:  "java/lang/Object",
		Interfaces: []string{"a/OldIface"},
		Fields: []*classfile.Field{
			{Name: "oldField", Desc: "I"},
		},
		Methods: []*classfile.Method{
			{Name: "oldMethod", Desc: "()V"},
		},
	}

	if err := New(d).RewriteClass(c, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	diff.MatchClassTree(t, "simple_rename", renderClass(c))
}
