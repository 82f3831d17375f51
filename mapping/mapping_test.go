package mapping

import (
	"errors"
	"testing"

	"github.com/stianloader/jrewrite/memberref"
	"github.com/stianloader/jrewrite/remaplog"
)

func TestDictionaryClassRename(t *testing.T) {
	d := NewDictionary()
	d.RemapClass("p/Foo", "q/Foo")

	if got := d.RemappedClass("p/Foo"); got != "q/Foo" {
		t.Errorf("RemappedClass(p/Foo) = %q, want q/Foo", got)
	}
	if got := d.RemappedClass("p/Bar"); got != "p/Bar" {
		t.Errorf("RemappedClass(p/Bar) unmapped = %q, want p/Bar", got)
	}
}

func TestRemappedClassFast(t *testing.T) {
	d := NewDictionary()
	d.RemapClass("p/Foo", "q/Foo")

	if dst, ok := d.RemappedClassFast("p/Foo"); !ok || dst != "q/Foo" {
		t.Errorf("RemappedClassFast(p/Foo) = (%q, %v), want (q/Foo, true)", dst, ok)
	}
	if dst, ok := d.RemappedClassFast("p/Bar"); ok || dst != "" {
		t.Errorf("RemappedClassFast(p/Bar) = (%q, %v), want (\"\", false)", dst, ok)
	}
}

func TestDictionaryFieldAndMethodRename(t *testing.T) {
	d := NewDictionary()
	d.RemapMember(memberref.New("p/Foo", "bar", "I"), "baz")
	d.RemapMember(memberref.New("p/Foo", "doStuff", "()V"), "renamed")

	if got := d.RemappedField("p/Foo", "bar", "I"); got != "baz" {
		t.Errorf("RemappedField = %q, want baz", got)
	}
	if got := d.RemappedMethod("p/Foo", "doStuff", "()V"); got != "renamed" {
		t.Errorf("RemappedMethod = %q, want renamed", got)
	}
	if got := d.RemappedField("p/Foo", "unmapped", "I"); got != "unmapped" {
		t.Errorf("RemappedField unmapped = %q, want unmapped", got)
	}
}

func TestOverwriteIsSilent(t *testing.T) {
	d := NewDictionary()
	d.RemapClass("p/Foo", "q/Foo")
	d.RemapClass("p/Foo", "r/Foo")

	if got := d.RemappedClass("p/Foo"); got != "r/Foo" {
		t.Errorf("RemappedClass after overwrite = %q, want r/Foo", got)
	}
}

func TestRejectsRenamingConstructorName(t *testing.T) {
	d := NewDictionary()
	err := d.RemapMemberChecked(memberref.New("p/Foo", "doStuff", "()V"), "<init>")
	if !errors.Is(err, ErrInvalidRename) {
		t.Fatalf("expected ErrInvalidRename, got %v", err)
	}
}

func TestRejectsRenamingAwayFromInit(t *testing.T) {
	d := NewDictionary()
	err := d.RemapMemberChecked(memberref.New("p/Foo", "<init>", "()V"), "createInstance")
	if !errors.Is(err, ErrInvalidRename) {
		t.Fatalf("expected ErrInvalidRename, got %v", err)
	}
}

func TestNoOpRenameOfInitIsAllowed(t *testing.T) {
	d := NewDictionary()
	if err := d.RemapMemberChecked(memberref.New("p/Foo", "<init>", "()V"), "<init>"); err != nil {
		t.Fatalf("no-op rename of <init> should be allowed, got %v", err)
	}
}

func TestFieldNamedInitHasNoRestriction(t *testing.T) {
	d := NewDictionary()
	// A field descriptor never starts with '(', so <init>/<clinit> name
	// restrictions (which are method-only) must not apply here.
	if err := d.RemapMemberChecked(memberref.New("p/Foo", "<init>", "I"), "renamed"); err != nil {
		t.Fatalf("field rename should not be restricted, got %v", err)
	}
}

func TestRemapMemberPanicsOnInvalidRename(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected RemapMember to panic on invalid rename")
		}
	}()
	d := NewDictionary()
	d.RemapMember(memberref.New("p/Foo", "doStuff", "()V"), "<clinit>")
}

type rejectRecorder struct {
	kind   remaplog.Kind
	ref    memberref.MemberRef
	reason error
	calls  int
}

func (r *rejectRecorder) Renamed(remaplog.Kind, string, string) {}
func (r *rejectRecorder) Skipped(remaplog.Kind, string)         {}
func (r *rejectRecorder) Rejected(kind remaplog.Kind, ref memberref.MemberRef, reason error) {
	r.kind, r.ref, r.reason = kind, ref, reason
	r.calls++
}

func TestRejectedRenameNotifiesRecorder(t *testing.T) {
	d := NewDictionary()
	rec := &rejectRecorder{}
	d.Recorder = rec

	ref := memberref.New("p/Foo", "doStuff", "()V")
	if err := d.RemapMemberChecked(ref, "<init>"); !errors.Is(err, ErrInvalidRename) {
		t.Fatalf("expected ErrInvalidRename, got %v", err)
	}

	if rec.calls != 1 {
		t.Fatalf("expected exactly one Rejected call, got %d", rec.calls)
	}
	if rec.kind != remaplog.KindMethod || rec.ref != ref || !errors.Is(rec.reason, ErrInvalidRename) {
		t.Errorf("Rejected call = (%v, %v, %v), want (%v, %v, ErrInvalidRename)", rec.kind, rec.ref, rec.reason, remaplog.KindMethod, ref)
	}
}

func TestNoOpRenameOfInitDoesNotNotifyRecorder(t *testing.T) {
	d := NewDictionary()
	rec := &rejectRecorder{}
	d.Recorder = rec

	if err := d.RemapMemberChecked(memberref.New("p/Foo", "<init>", "()V"), "<init>"); err != nil {
		t.Fatalf("no-op rename of <init> should be allowed, got %v", err)
	}
	if rec.calls != 0 {
		t.Errorf("expected no Rejected calls for an allowed no-op, got %d", rec.calls)
	}
}

func TestSinkChaining(t *testing.T) {
	d := NewDictionary()
	var s Sink = d
	s = s.RemapClass("p/Foo", "q/Foo").RemapMember(memberref.New("p/Foo", "bar", "I"), "baz")
	if s != Sink(d) {
		t.Fatalf("chained calls should return the same sink instance")
	}
}
