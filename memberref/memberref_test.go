package memberref

import "testing"

func TestIsMethod(t *testing.T) {
	tests := []struct {
		name string
		ref  MemberRef
		want bool
	}{
		{"method descriptor", New("p/Foo", "bar", "(I)V"), true},
		{"field descriptor object", New("p/Foo", "bar", "Lp/Bar;"), false},
		{"field descriptor primitive", New("p/Foo", "bar", "I"), false},
		{"field descriptor array", New("p/Foo", "bar", "[I"), false},
		{"empty descriptor", New("p/Foo", "bar", ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.IsMethod(); got != tt.want {
				t.Errorf("IsMethod() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEquality(t *testing.T) {
	a := New("p/Foo", "bar", "I")
	b := New("p/Foo", "bar", "I")
	c := New("p/Foo", "bar", "J")

	if a != b {
		t.Errorf("expected %+v == %+v", a, b)
	}
	if a == c {
		t.Errorf("expected %+v != %+v", a, c)
	}
}

func TestUsableAsMapKey(t *testing.T) {
	m := map[MemberRef]string{
		New("p/Foo", "bar", "I"): "first",
	}
	if got := m[New("p/Foo", "bar", "I")]; got != "first" {
		t.Errorf("map lookup by value = %q, want %q", got, "first")
	}
}

func TestWithOwner(t *testing.T) {
	orig := New("p/Foo", "bar", "()V")
	moved := orig.WithOwner("p/Baz")

	if orig.Owner != "p/Foo" {
		t.Errorf("WithOwner mutated receiver owner to %q", orig.Owner)
	}
	if moved.Owner != "p/Baz" || moved.Name != "bar" || moved.Desc != "()V" {
		t.Errorf("WithOwner() = %+v, want owner p/Baz with name/desc preserved", moved)
	}
}
