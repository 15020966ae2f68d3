package errors

import (
	"errors"
	"fmt"
	"testing"
)

var errUnknownScene = errors.New("unknown scene")

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
		user string
	}{
		{
			name: "NoScenes",
			err:  New(ErrCodeNoScenes, "no scenes found in %d bytes", 42),
			want: "NO_SCENES: no scenes found in 42 bytes",
			user: "no scenes found in 42 bytes",
		},
		{
			name: "InvalidProject",
			err:  Wrap(ErrCodeInvalidProject, errUnknownScene, "edge %q", "e0-choice0-9"),
			want: `INVALID_PROJECT: edge "e0-choice0-9": unknown scene`,
			user: `edge "e0-choice0-9": unknown scene`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if got := UserMessage(tt.err); got != tt.user {
				t.Errorf("UserMessage() = %q, want %q", got, tt.user)
			}
		})
	}
}

func TestCodeSurvivesWrapping(t *testing.T) {
	inner := Wrap(ErrCodeInvalidProject, errUnknownScene, "node %q", "3")
	outer := fmt.Errorf("load story.json: %w", inner)

	if !Is(outer, ErrCodeInvalidProject) || GetCode(outer) != ErrCodeInvalidProject {
		t.Errorf("code lost through fmt wrapping: %v", outer)
	}
	if !errors.Is(outer, errUnknownScene) {
		t.Error("sentinel cause lost through wrapping")
	}
	if Is(outer, ErrCodeNotFound) {
		t.Error("Is() matched a different code")
	}
	if Is(nil, ErrCodeRefusedEdit) || GetCode(errUnknownScene) != "" {
		t.Error("uncoded errors reported a code")
	}
	if got := UserMessage(errUnknownScene); got != "unknown scene" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}
