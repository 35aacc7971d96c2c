package bridge

import (
	"errors"
	"fmt"
	"time"

	"codebridge/internal/engine"
)

// Kind is the closed set of failure classes every bridge operation reports
// through. Callers pattern-match on it to decide whether a retry is
// meaningful.
type Kind string

const (
	// KindInvalidLanguage: the requested language is not in the supported
	// set. The engine is never reached.
	KindInvalidLanguage Kind = "invalid_language"
	// KindPathNotFound: a required filesystem path does not exist. Checked
	// before spawning.
	KindPathNotFound Kind = "path_not_found"
	// KindSpawnFailure: the engine executable could not be started.
	KindSpawnFailure Kind = "spawn_failure"
	// KindExecutionFailure: the engine ran and exited non-zero.
	KindExecutionFailure Kind = "execution_failure"
	// KindTimeout: the engine did not finish in time and was killed.
	KindTimeout Kind = "timeout"
	// KindDecodeFailure: engine output did not match the expected shape.
	KindDecodeFailure Kind = "decode_failure"
	// KindUnknown: any other failure, wrapped with the operation name.
	KindUnknown Kind = "unknown"
)

// Error carries a failure kind plus the minimum context needed to diagnose
// it without re-running the operation.
type Error struct {
	Kind     Kind
	Op       string
	Language string
	Path     string
	ExitCode int
	Stderr   string
	Timeout  time.Duration
	Output   string
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidLanguage:
		return fmt.Sprintf("%s: unsupported language %q", e.Op, e.Language)
	case KindPathNotFound:
		return fmt.Sprintf("%s: path not found: %s", e.Op, e.Path)
	case KindSpawnFailure:
		return fmt.Sprintf("%s: failed to start engine: %v", e.Op, e.Err)
	case KindExecutionFailure:
		if e.Stderr != "" {
			return fmt.Sprintf("%s: engine exited with code %d: %s", e.Op, e.ExitCode, e.Stderr)
		}
		return fmt.Sprintf("%s: engine exited with code %d", e.Op, e.ExitCode)
	case KindTimeout:
		return fmt.Sprintf("%s: engine timed out after %s", e.Op, e.Timeout)
	case KindDecodeFailure:
		return fmt.Sprintf("%s: failed to decode engine output: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a bridge Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == kind
}

func errInvalidLanguage(op string, lang Language) *Error {
	return &Error{Kind: KindInvalidLanguage, Op: op, Language: string(lang)}
}

func errPathNotFound(op, path string, cause error) *Error {
	return &Error{Kind: KindPathNotFound, Op: op, Path: path, Err: cause}
}

func errDecode(op, output string, cause error) *Error {
	return &Error{Kind: KindDecodeFailure, Op: op, Output: output, Err: cause}
}

// engineError maps an executor outcome to the taxonomy. This is the single
// place process failures become bridge errors, so callers never observe a
// partially classified state.
func engineError(op string, err error) *Error {
	var spawnErr *engine.SpawnError
	if errors.As(err, &spawnErr) {
		return &Error{Kind: KindSpawnFailure, Op: op, Err: err}
	}

	var exitErr *engine.ExitError
	if errors.As(err, &exitErr) {
		return &Error{Kind: KindExecutionFailure, Op: op, ExitCode: exitErr.Code, Stderr: exitErr.Stderr, Err: err}
	}

	var timeoutErr *engine.TimeoutError
	if errors.As(err, &timeoutErr) {
		return &Error{Kind: KindTimeout, Op: op, Timeout: timeoutErr.Limit, Err: err}
	}

	return &Error{Kind: KindUnknown, Op: op, Err: err}
}
