package bridge

import "time"

// DefaultTimeout bounds an engine invocation when the Config does not set
// its own and the call does not override it.
const DefaultTimeout = 2 * time.Minute

// Config holds everything a Bridge needs to reach the engine. It is read
// once at construction and never mutated, so one Bridge is safe to share
// across goroutines and multiple Bridges with different settings coexist.
type Config struct {
	// Python is the interpreter used to run the engine. Defaults to
	// "python3" on PATH.
	Python string
	// EngineDir is the root of the engine checkout. Engine modules are
	// invoked as `python -m codetraverse.<mod>` with this directory as the
	// working directory, and environment setup pip-installs it.
	EngineDir string
	// Timeout is the default per-invocation ceiling. Zero selects
	// DefaultTimeout.
	Timeout time.Duration
	// WorkDir overrides the working directory for invocations. Empty means
	// EngineDir.
	WorkDir string
	// Env holds KEY=VALUE overrides appended to the parent environment of
	// every invocation.
	Env []string
}

func (c Config) withDefaults() Config {
	if c.Python == "" {
		c.Python = "python3"
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.WorkDir == "" {
		c.WorkDir = c.EngineDir
	}
	return c
}
