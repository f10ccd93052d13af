//go:build !linux

// Package inject implements the ptrace-based process injector. ptrace
// is a Linux-specific facility; other platforms get a stub that always
// reports the platform as unsupported.
package inject

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupportedPlatform is returned by every Injector method outside
// Linux.
var ErrUnsupportedPlatform = errors.New("inject: process injection requires linux")

// Injector is a non-functional stand-in on non-Linux platforms.
type Injector struct{}

// New always fails outside Linux.
func New() (*Injector, error) { return nil, ErrUnsupportedPlatform }

// Attach always fails outside Linux.
func (inj *Injector) Attach(ctx context.Context, pid int, libPath string, env map[string]string) error {
	return ErrUnsupportedPlatform
}

// Monitor is a non-functional stand-in on non-Linux platforms.
type Monitor struct{}

// NewMonitor returns a Monitor whose Run always fails outside Linux.
func NewMonitor(injector *Injector, root int, libPath string, env map[string]string, pollPeriod time.Duration) *Monitor {
	return &Monitor{}
}

// Run always fails outside Linux.
func (m *Monitor) Run(ctx context.Context) error { return ErrUnsupportedPlatform }
