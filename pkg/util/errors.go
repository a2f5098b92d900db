// Package util provides logging and common error types.
package util

import (
	"errors"
	"fmt"
)

// Sentinel errors for the operation engine's failure taxonomy
var (
	ErrPreconditionFailed  = errors.New("precondition not met")
	ErrTransport           = errors.New("transport failure")
	ErrUnsupportedPlatform = errors.New("platform not supported")
	ErrDeviceLocked        = errors.New("device locked by another run")
	ErrNotFound            = errors.New("resource not found")
)

// PreconditionError represents a failed precondition check with context.
// Precondition failures are detected before any device contact.
type PreconditionError struct {
	Operation    string
	Host         string
	Precondition string
	Details      string
}

func (e *PreconditionError) Error() string {
	msg := fmt.Sprintf("precondition failed for %s on %s: %s", e.Operation, e.Host, e.Precondition)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

func (e *PreconditionError) Unwrap() error {
	return ErrPreconditionFailed
}

// NewPreconditionError creates a new precondition error
func NewPreconditionError(operation, host, precondition, details string) *PreconditionError {
	return &PreconditionError{
		Operation:    operation,
		Host:         host,
		Precondition: precondition,
		Details:      details,
	}
}

// TransportError represents a failed remote call against one device.
// It is isolated to the originating host and carries the underlying cause.
type TransportError struct {
	Host  string
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Host, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return ErrTransport
}

// NewTransportError creates a transport error for a host operation
func NewTransportError(host, op string, cause error) *TransportError {
	return &TransportError{Host: host, Op: op, Cause: cause}
}

// CapabilityError indicates an operation the device platform cannot perform.
type CapabilityError struct {
	Host      string
	Platform  string
	Operation string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("platform %q on %s does not support %s", e.Platform, e.Host, e.Operation)
}

func (e *CapabilityError) Unwrap() error {
	return ErrUnsupportedPlatform
}

// NewCapabilityError creates a capability error naming the platform
func NewCapabilityError(host, platform, operation string) *CapabilityError {
	return &CapabilityError{Host: host, Platform: platform, Operation: operation}
}
