package errors

import (
	stderrors "errors"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad package name: %s", "???")
	want := "INVALID_INPUT: bad package name: ???"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeTransientNetwork, cause, "fetch failed")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if !Is(err, ErrCodeTransientNetwork) {
		t.Error("expected TRANSIENT_NETWORK code")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"structured", New(ErrCodePipelineFatal, "no index document"), ErrCodePipelineFatal},
		{"wrapped", Wrap(ErrCodeParse, stderrors.New("eof"), "bad json"), ErrCodeParse},
		{"plain", stderrors.New("plain"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeOrchestratorItem, "worker fault")
	if UserMessage(err) != "worker fault" {
		t.Errorf("unexpected user message: %s", UserMessage(err))
	}
	plain := stderrors.New("plain failure")
	if UserMessage(plain) != "plain failure" {
		t.Errorf("unexpected user message: %s", UserMessage(plain))
	}
}
