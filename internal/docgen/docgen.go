// Package docgen defines the optional external-process collaborator that
// turns a local crate manifest into rustdoc JSON artifacts (spec.md §6
// "Consumed", item c). Actually invoking `cargo doc`/`rustdoc` is out of
// scope (spec.md §1 Non-goals) — this package exists only as the shape the
// core depends on, so a host can plug a real implementation in later.
package docgen

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by ExternalProcess.Generate on every call,
// whether or not a BinaryPath is set.
var ErrNotConfigured = errors.New("docgen: no generator binary configured")

// Generator turns a local crate manifest (a Cargo.toml path) into the raw
// bytes of a rustdoc JSON artifact.
type Generator interface {
	Generate(ctx context.Context, manifestPath string) ([]byte, error)
}

// ExternalProcess is a stub: Generate starts no process and returns
// ErrNotConfigured even when BinaryPath is set. No SPEC_FULL.md component
// invokes cargo/rustdoc directly, so BinaryPath unset is the expected default.
type ExternalProcess struct {
	BinaryPath string
}

func (e *ExternalProcess) Generate(ctx context.Context, manifestPath string) ([]byte, error) {
	if e.BinaryPath == "" {
		return nil, ErrNotConfigured
	}
	return nil, ErrNotConfigured
}
