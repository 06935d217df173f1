package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		CodeUnknown,
		CodeValidation,
		CodeConfiguration,
		CodeCanceled,
		CodeTargetInvalid,
		CodeNoTargets,
		CodeScanFailed,
		CodeResourceLimit,
		CodeFileNotFound,
	}

	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("Error code %v should not be empty", code)
		}
	}
}

func TestScanError(t *testing.T) {
	t.Run("basic error creation", func(t *testing.T) {
		err := NewScanError(CodeScanFailed, "scan failed")
		if err.Code != CodeScanFailed {
			t.Errorf("Expected code %s, got %s", CodeScanFailed, err.Code)
		}
		if err.Context == nil {
			t.Error("Context should be initialized")
		}
		if err.Error() != "[SCAN_FAILED] scan failed" {
			t.Errorf("Unexpected message %q", err.Error())
		}
	})

	t.Run("wrapped error", func(t *testing.T) {
		cause := fmt.Errorf("boom")
		err := WrapScanError(CodeScanFailed, "engine stopped", cause)
		if !errors.Is(err, cause) {
			t.Error("Expected wrapped cause to be reachable with errors.Is")
		}
		if !strings.Contains(err.Error(), "boom") {
			t.Errorf("Expected cause in message, got %q", err.Error())
		}
	})

	t.Run("with context", func(t *testing.T) {
		err := NewScanError(CodeScanFailed, "x").WithContext("jobs", 4)
		if err.Context["jobs"] != 4 {
			t.Errorf("Expected context value 4, got %v", err.Context["jobs"])
		}
	})
}

func TestResolveError(t *testing.T) {
	err := NewResolveError("nope.invalid", fmt.Errorf("no such host"))
	if err.Code != CodeTargetInvalid {
		t.Errorf("Expected code %s, got %s", CodeTargetInvalid, err.Code)
	}
	if !strings.Contains(err.Error(), "nope.invalid") {
		t.Errorf("Expected address in message, got %q", err.Error())
	}
}

func TestConfigError(t *testing.T) {
	t.Run("config field error", func(t *testing.T) {
		err := NewConfigFieldError(CodeValidation, "invalid value", "--ports", "80-20")
		want := "[VALIDATION] invalid value (field: --ports) (value: 80-20)"
		if err.Error() != want {
			t.Errorf("Expected %q, got %q", want, err.Error())
		}
	})

	t.Run("wrapped config error", func(t *testing.T) {
		cause := fmt.Errorf("yaml: line 2")
		err := WrapConfigError(CodeConfiguration, "bad file", cause)
		if !errors.Is(err, cause) {
			t.Error("Expected cause to unwrap")
		}
	})
}

func TestUtilityFunctions(t *testing.T) {
	t.Run("GetCode", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want ErrorCode
		}{
			{"scan error", NewScanError(CodeScanFailed, "x"), CodeScanFailed},
			{"resolve error", NewResolveError("a", nil), CodeTargetInvalid},
			{"config error", WrapConfigError(CodeConfiguration, "x", nil), CodeConfiguration},
			{"wrapped coded error", fmt.Errorf("outer: %w", ErrNoTargets(nil)), CodeNoTargets},
			{"plain error", fmt.Errorf("plain"), CodeUnknown},
			{"nil", nil, CodeUnknown},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := GetCode(tt.err); got != tt.want {
					t.Errorf("GetCode() = %s, want %s", got, tt.want)
				}
			})
		}
	})

	t.Run("IsFatal", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want bool
		}{
			{"no targets", ErrNoTargets([]string{"x"}), true},
			{"invalid config", ErrConfigInvalid("timeout", -1, nil), true},
			{"unreadable config", WrapConfigError(CodeConfiguration, "bad file", fmt.Errorf("eof")), true},
			{"scan failure", NewScanError(CodeScanFailed, "x"), false},
			{"canceled", ErrScanCanceled(fmt.Errorf("ctx")), false},
			{"plain", fmt.Errorf("plain"), false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := IsFatal(tt.err); got != tt.want {
					t.Errorf("IsFatal() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		if !IsCode(ErrNoTargets(nil), CodeNoTargets) {
			t.Error("Expected NO_TARGETS code")
		}
		if IsCode(ErrNoTargets(nil), CodeScanFailed) {
			t.Error("Did not expect SCAN_FAILED code")
		}
	})
}

func TestErrNoTargetsMessage(t *testing.T) {
	err := ErrNoTargets([]string{"bad.host"})
	if err.Message != "No IPs could be resolved, aborting scan." {
		t.Errorf("Unexpected message %q", err.Message)
	}
	if got, ok := err.Context["unresolved"].([]string); !ok || len(got) != 1 {
		t.Errorf("Expected unresolved context, got %v", err.Context["unresolved"])
	}
}
