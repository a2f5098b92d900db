package util

import (
	"errors"
	"fmt"
	"testing"
)

func TestPreconditionError(t *testing.T) {
	err := NewPreconditionError("push", "leaf1", "config file must exist", "generated/leaf1.cfg")

	want := "precondition failed for push on leaf1: config file must exist (generated/leaf1.cfg)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if !errors.Is(err, ErrPreconditionFailed) {
		t.Error("PreconditionError should unwrap to ErrPreconditionFailed")
	}
}

func TestPreconditionError_NoDetails(t *testing.T) {
	err := NewPreconditionError("render", "spine1", "template must be mapped", "")

	want := "precondition failed for render on spine1: template must be mapped"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestTransportError(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewTransportError("leaf2", "diff", cause)

	want := "diff on leaf2: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if !errors.Is(err, ErrTransport) {
		t.Error("TransportError should unwrap to ErrTransport")
	}
	if errors.Is(err, ErrPreconditionFailed) {
		t.Error("TransportError should not match ErrPreconditionFailed")
	}
}

func TestCapabilityError(t *testing.T) {
	err := NewCapabilityError("sw1", "cisco_iosxe", "session listing")

	want := `platform "cisco_iosxe" on sw1 does not support session listing`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if !errors.Is(err, ErrUnsupportedPlatform) {
		t.Error("CapabilityError should unwrap to ErrUnsupportedPlatform")
	}
}
