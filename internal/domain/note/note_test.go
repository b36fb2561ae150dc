package note

import (
	"errors"
	"strings"
	"testing"

	"github.com/Strob0t/notestream/internal/domain"
)

func TestFirstField(t *testing.T) {
	if got := (Note{Fields: []string{"Hello", "World"}}).FirstField(); got != "Hello" {
		t.Errorf("expected Hello, got %q", got)
	}
	if got := (Note{}).FirstField(); got != "" {
		t.Errorf("expected empty first field, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	tooMany := make([]string, MaxFields+1)

	tests := []struct {
		name    string
		err     error
		wantErr string
	}{
		{"create ok", CreateRequest{Fields: []string{"a"}}.Validate(), ""},
		{"create empty", CreateRequest{}.Validate(), "fields"},
		{"create too many", CreateRequest{Fields: tooMany}.Validate(), "at most"},
		{"update ok", UpdateRequest{Fields: []string{"a", "b"}}.Validate(), ""},
		{"update empty", UpdateRequest{}.Validate(), "fields"},
		{"remove ok", RemoveRequest{IDs: []int64{1}}.Validate(), ""},
		{"remove empty", RemoveRequest{}.Validate(), "ids"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr == "" {
				if tt.err != nil {
					t.Fatalf("unexpected error: %v", tt.err)
				}
				return
			}
			if tt.err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !errors.Is(tt.err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", tt.err)
			}
			if !strings.Contains(tt.err.Error(), tt.wantErr) {
				t.Errorf("expected %q in %q", tt.wantErr, tt.err.Error())
			}
		})
	}
}
