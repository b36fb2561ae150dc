package event

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindAdd, "add"},
		{KindRemove, "remove"},
		{Kind(0), "kind(0)"},
		{Kind(9), "kind(9)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestKindValid(t *testing.T) {
	if !KindAdd.Valid() || !KindRemove.Valid() {
		t.Fatal("expected add and remove to be valid")
	}
	if Kind(0).Valid() {
		t.Fatal("expected zero kind to be invalid")
	}
}

func TestConstructors(t *testing.T) {
	a := Add(7, "Hello")
	if a.Kind != KindAdd || a.NoteID != 7 || a.Text != "Hello" {
		t.Errorf("unexpected add event: %+v", a)
	}
	r := Remove(7, "Hello")
	if r.Kind != KindRemove || r.NoteID != 7 || r.Text != "Hello" {
		t.Errorf("unexpected remove event: %+v", r)
	}
}
