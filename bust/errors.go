package bust

import (
	"errors"
	"fmt"
)

// ErrConfiguration is wrapped by every error returned from NewOptions.
var ErrConfiguration = errors.New("invalid cachebuster configuration")

// ConfigError describes rejected configuration value.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %q: %s", ErrConfiguration, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// Diagnostic is a non-fatal problem with a single reference. Reference is
// left unmodified in the output.
type Diagnostic struct {
	Kind      DiagnosticKind
	Document  string // stylesheet path used as resolution context
	Reference string // reference text as written
	Path      string // resolved asset path, empty for malformed tokens
	Err       error
}

func (d Diagnostic) Error() string {
	if len(d.Path) > 0 {
		return fmt.Sprintf("%s: %s (%s): %v", d.Kind, d.Reference, d.Path, d.Err)
	}
	return fmt.Sprintf("%s: %s: %v", d.Kind, d.Reference, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// DiagnosticSink receives diagnostics in addition to log output. It may be
// called concurrently when documents are processed in parallel.
type DiagnosticSink interface {
	Report(d Diagnostic)
}
