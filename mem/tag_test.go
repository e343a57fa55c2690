package mem

import "testing"

func TestNewTagDeterministic(t *testing.T) {
	a := NewTag("physics/rigidbody")
	b := NewTag("physics/rigidbody")
	if a.Hash() != b.Hash() {
		t.Fatalf("expected equal hashes for equal labels, got %x != %x", a.Hash(), b.Hash())
	}
}

func TestNewTagDistinctLabels(t *testing.T) {
	a := NewTag("audio")
	b := NewTag("render")
	if a.Hash() == b.Hash() {
		t.Fatalf("expected distinct hashes for distinct labels, both %x", a.Hash())
	}
}

func TestTagStringFallsBackToHash(t *testing.T) {
	var zero Tag
	if zero.String() == "" {
		t.Fatal("zero Tag.String() must not be empty")
	}
}

func TestTagStringUsesLabel(t *testing.T) {
	tag := NewTag("scripting")
	if tag.String() != "scripting" {
		t.Fatalf("expected label-based String(), got %q", tag.String())
	}
}
