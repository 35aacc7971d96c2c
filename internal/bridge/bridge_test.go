package bridge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codebridge/internal/engine"
)

// spyRunner records every invocation and answers with a canned response, so
// tests can assert both what would have been spawned and that nothing was.
type spyRunner struct {
	mu    sync.Mutex
	calls []engine.Invocation
	fn    func(inv engine.Invocation) (*engine.Result, error)
}

func (s *spyRunner) Run(_ context.Context, inv engine.Invocation) (*engine.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, inv)
	s.mu.Unlock()
	if s.fn != nil {
		return s.fn(inv)
	}
	return &engine.Result{}, nil
}

func (s *spyRunner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func stdout(text string) func(engine.Invocation) (*engine.Result, error) {
	return func(engine.Invocation) (*engine.Result, error) {
		return &engine.Result{Stdout: text}, nil
	}
}

func newTestBridge(t *testing.T, spy *spyRunner) *Bridge {
	t.Helper()
	return NewWithRunner(Config{
		Python:    "python3",
		EngineDir: t.TempDir(),
		Timeout:   30 * time.Second,
	}, spy)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestAnalyzeFileInvalidLanguageDoesNotSpawn(t *testing.T) {
	spy := &spyRunner{}
	b := newTestBridge(t, spy)

	_, err := b.AnalyzeFile(context.Background(), "/does/not/matter", "cobol")

	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidLanguage))
	assert.Equal(t, 0, spy.callCount())

	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "cobol", be.Language)
}

func TestAnalyzeFileLanguageCheckedBeforePath(t *testing.T) {
	spy := &spyRunner{}
	b := newTestBridge(t, spy)

	// Both preconditions fail; the language check wins.
	_, err := b.AnalyzeFile(context.Background(), "/definitely/missing.xyz", "brainfuck")

	assert.True(t, IsKind(err, KindInvalidLanguage))
	assert.Equal(t, 0, spy.callCount())
}

func TestAnalyzeFileMissingPathDoesNotSpawn(t *testing.T) {
	spy := &spyRunner{}
	b := newTestBridge(t, spy)
	missing := filepath.Join(t.TempDir(), "gone.go")

	_, err := b.AnalyzeFile(context.Background(), missing, Golang)

	require.Error(t, err)
	assert.True(t, IsKind(err, KindPathNotFound))
	assert.Equal(t, 0, spy.callCount())

	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, missing, be.Path)
}

func TestAnalyzeFileSuccess(t *testing.T) {
	spy := &spyRunner{fn: stdout(`[{"kind": "function", "name": "main", "full_component_path": "main::main"}]`)}
	b := newTestBridge(t, spy)
	file := filepath.Join(t.TempDir(), "main.go")
	writeFile(t, file, "package main")

	comps, err := b.AnalyzeFile(context.Background(), file, Golang)

	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, "main", comps[0].Name)

	require.Equal(t, 1, spy.callCount())
	inv := spy.calls[0]
	assert.Equal(t, []string{
		"python3", "-m", "codetraverse.main",
		"--FILE", file,
		"--LANGUAGE", "golang",
		"--output-format", "json",
		"--quiet",
	}, inv.Args)
	assert.Equal(t, 30*time.Second, inv.Timeout)
	assert.False(t, inv.NoTimeout)
	assert.Equal(t, b.Config().WorkDir, inv.Dir)
}

func TestAnalyzeFileDecodeFailure(t *testing.T) {
	spy := &spyRunner{fn: stdout("Traceback (most recent call last): ...")}
	b := newTestBridge(t, spy)
	file := filepath.Join(t.TempDir(), "a.py")
	writeFile(t, file, "pass")

	_, err := b.AnalyzeFile(context.Background(), file, Python)

	require.Error(t, err)
	assert.True(t, IsKind(err, KindDecodeFailure))

	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Contains(t, be.Output, "Traceback")
}

func TestEngineErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		engine   error
		wantKind Kind
		check    func(t *testing.T, be *Error)
	}{
		{
			name:     "non-zero exit",
			engine:   &engine.ExitError{Code: 2, Stderr: "boom"},
			wantKind: KindExecutionFailure,
			check: func(t *testing.T, be *Error) {
				assert.Equal(t, 2, be.ExitCode)
				assert.Equal(t, "boom", be.Stderr)
			},
		},
		{
			name:     "timeout",
			engine:   &engine.TimeoutError{Limit: 5 * time.Second},
			wantKind: KindTimeout,
			check: func(t *testing.T, be *Error) {
				assert.Equal(t, 5*time.Second, be.Timeout)
			},
		},
		{
			name:     "spawn failure",
			engine:   &engine.SpawnError{Cause: os.ErrPermission},
			wantKind: KindSpawnFailure,
			check:    func(t *testing.T, be *Error) {},
		},
		{
			name:     "anything else",
			engine:   errors.New("pipe burst"),
			wantKind: KindUnknown,
			check:    func(t *testing.T, be *Error) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyRunner{fn: func(engine.Invocation) (*engine.Result, error) {
				return nil, tt.engine
			}}
			b := newTestBridge(t, spy)
			file := filepath.Join(t.TempDir(), "a.rs")
			writeFile(t, file, "fn main() {}")

			_, err := b.AnalyzeFile(context.Background(), file, Rust)

			require.Error(t, err)
			var be *Error
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tt.wantKind, be.Kind)
			assert.Equal(t, "analyze_file", be.Op)
			tt.check(t, be)
		})
	}
}

func TestWorkspaceSchema(t *testing.T) {
	spy := &spyRunner{fn: stdout(`{"nodes": [{"id": "A", "category": "function"}], "edges": []}`)}
	b := newTestBridge(t, spy)
	root := t.TempDir()

	graph, err := b.WorkspaceSchema(context.Background(), root, Haskell)

	require.NoError(t, err)
	require.Len(t, graph.Nodes, 1)

	inv := spy.calls[0]
	assert.Contains(t, inv.Args, "--json-schema")
	assert.Contains(t, inv.Args, "--ROOT_DIR")
	assert.Contains(t, inv.Args, root)
}

func TestAnalyzeWorkspaceAggregatesArtifacts(t *testing.T) {
	root := t.TempDir()
	outDir := t.TempDir()
	outputBase := filepath.Join(outDir, "fdep")
	graphDir := filepath.Join(outDir, "graph")

	// The spy plays the engine: it writes per-file artifacts under the
	// output base, nested like the source tree.
	spy := &spyRunner{fn: func(engine.Invocation) (*engine.Result, error) {
		writeFile(t, filepath.Join(outputBase, "a", "one.json"),
			`[{"kind": "function", "name": "one", "full_component_path": "a.one::one"}]`)
		writeFile(t, filepath.Join(outputBase, "b", "deep", "two.json"),
			`[{"kind": "function", "name": "two", "full_component_path": "b.deep.two::two"},
			  {"kind": "class", "name": "Three", "full_component_path": "b.deep.two::Three"}]`)
		return &engine.Result{}, nil
	}}
	b := newTestBridge(t, spy)

	comps, err := b.AnalyzeWorkspace(context.Background(), root, TypeScript, outputBase, graphDir)

	require.NoError(t, err)
	require.Len(t, comps, 3)
	// Lexical walk order: a/one.json before b/deep/two.json.
	assert.Equal(t, "one", comps[0].Name)
	assert.Equal(t, "two", comps[1].Name)
	assert.Equal(t, "Three", comps[2].Name)

	// Output directories were created before the engine ran.
	for _, dir := range []string{outputBase, graphDir} {
		info, statErr := os.Stat(dir)
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
	}

	inv := spy.calls[0]
	assert.Contains(t, inv.Args, "--OUTPUT_BASE")
	assert.Contains(t, inv.Args, "--GRAPH_DIR")
}

func TestAnalyzeWorkspaceOutputDirFailure(t *testing.T) {
	root := t.TempDir()
	// A regular file where the output directory should go makes MkdirAll
	// fail without any engine involvement.
	blocked := filepath.Join(t.TempDir(), "blocked")
	writeFile(t, blocked, "in the way")

	spy := &spyRunner{}
	b := newTestBridge(t, spy)

	_, err := b.AnalyzeWorkspace(context.Background(), root, Golang, blocked, filepath.Join(t.TempDir(), "graph"))

	require.Error(t, err)
	assert.True(t, IsKind(err, KindExecutionFailure))
	assert.Equal(t, 0, spy.callCount())
}

func TestAnalyzeWorkspaceMalformedArtifact(t *testing.T) {
	root := t.TempDir()
	outputBase := t.TempDir()

	spy := &spyRunner{fn: func(engine.Invocation) (*engine.Result, error) {
		writeFile(t, filepath.Join(outputBase, "bad.json"), "{ nope")
		return &engine.Result{}, nil
	}}
	b := newTestBridge(t, spy)

	_, err := b.AnalyzeWorkspace(context.Background(), root, Golang, outputBase, t.TempDir())

	require.Error(t, err)
	assert.True(t, IsKind(err, KindDecodeFailure))
}

func TestFindPathWithSource(t *testing.T) {
	spy := &spyRunner{fn: stdout("Shortest path from 'A' → 'Z':\n  A → B → Z")}
	b := newTestBridge(t, spy)
	graph := filepath.Join(t.TempDir(), "repo.graphml")
	writeFile(t, graph, "<graphml/>")

	res, err := b.FindPath(context.Background(), graph, "Z", "A")

	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, []string{"A", "B", "Z"}, res.Path)

	inv := spy.calls[0]
	assert.Equal(t, []string{
		"python3", "-m", "codetraverse.path",
		"--GRAPH_PATH", graph,
		"--COMPONENT", "Z",
		"--SOURCE", "A",
	}, inv.Args)
}

func TestFindPathWithoutSourceOmitsFlag(t *testing.T) {
	spy := &spyRunner{fn: stdout("No path found from 'A' to 'Z'.")}
	b := newTestBridge(t, spy)
	graph := filepath.Join(t.TempDir(), "repo.graphml")
	writeFile(t, graph, "<graphml/>")

	res, err := b.FindPath(context.Background(), graph, "Z", "")

	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.NotContains(t, spy.calls[0].Args, "--SOURCE")
}

func TestFindPathMissingGraph(t *testing.T) {
	spy := &spyRunner{}
	b := newTestBridge(t, spy)
	missing := filepath.Join(t.TempDir(), "none.graphml")

	_, err := b.FindPath(context.Background(), missing, "Z", "A")

	assert.True(t, IsKind(err, KindPathNotFound))
	assert.Equal(t, 0, spy.callCount())
}

func TestNeighbors(t *testing.T) {
	spy := &spyRunner{fn: stdout("Nodes with edges INTO 'X' (1):\n  A --[calls]--> X\n" +
		"Nodes with edges OUT OF 'X' (1):\n  X --[uses]--> B\n")}
	b := newTestBridge(t, spy)
	graph := filepath.Join(t.TempDir(), "repo.gpickle")
	writeFile(t, graph, "bin")

	res, err := b.Neighbors(context.Background(), graph, "X")

	require.NoError(t, err)
	require.Len(t, res.Incoming, 1)
	require.Len(t, res.Outgoing, 1)
	assert.Equal(t, "A", res.Incoming[0].From)
	assert.Equal(t, "B", res.Outgoing[0].To)
	assert.NotContains(t, spy.calls[0].Args, "--SOURCE")
}

func TestQueryReturnsRawJSON(t *testing.T) {
	spy := &spyRunner{fn: stdout(`{"anything": ["goes"]}`)}
	b := newTestBridge(t, spy)

	raw, err := b.Query(context.Background(), "get_subgraph", "g.graphml", "M", "f", "2")

	require.NoError(t, err)
	assert.JSONEq(t, `{"anything": ["goes"]}`, string(raw))

	inv := spy.calls[0]
	assert.Equal(t, []string{
		"python3", "-m", "codetraverse.query",
		"get_subgraph", "g.graphml", "M", "f", "2",
	}, inv.Args)
}

func TestQueryRejectsNonJSON(t *testing.T) {
	spy := &spyRunner{fn: stdout("this is not json")}
	b := newTestBridge(t, spy)

	_, err := b.Query(context.Background(), "get_all_modules", "g.graphml")

	require.Error(t, err)
	assert.True(t, IsKind(err, KindDecodeFailure))
}

func TestTypedQueryWrappers(t *testing.T) {
	spy := &spyRunner{fn: stdout(`["A", "B"]`)}
	b := newTestBridge(t, spy)

	children, err := b.FunctionChildren(context.Background(), "g.graphml", "M", "f", 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, children)
	assert.Equal(t, []string{
		"python3", "-m", "codetraverse.query",
		"get_function_children", "g.graphml", "M", "f", "3",
	}, spy.calls[0].Args)

	mods, err := b.AllModules(context.Background(), "g.graphml")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, mods)
}

func TestModuleInfoDecodesComponents(t *testing.T) {
	spy := &spyRunner{fn: stdout(`[{"kind": "function", "name": "f", "module_name": "M"}]`)}
	b := newTestBridge(t, spy)

	comps, err := b.ModuleInfo(context.Background(), "./fdep", "M")

	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, "M", comps[0].ModuleName)
}

func TestSetupEnvironmentIsUnbounded(t *testing.T) {
	spy := &spyRunner{}
	b := newTestBridge(t, spy)

	require.NoError(t, b.SetupEnvironment(context.Background()))

	require.Equal(t, 1, spy.callCount())
	inv := spy.calls[0]
	assert.True(t, inv.NoTimeout)
	assert.Equal(t, []string{"python3", "-m", "pip", "install", "-e", b.Config().EngineDir}, inv.Args)
}

func TestValidateSetupRunsBothProbes(t *testing.T) {
	spy := &spyRunner{}
	b := newTestBridge(t, spy)

	require.NoError(t, b.ValidateSetup(context.Background()))

	require.Equal(t, 2, spy.callCount())
	assert.Equal(t, []string{"python3", "--version"}, spy.calls[0].Args)
	assert.Equal(t, []string{"python3", "-m", "codetraverse.main", "--help"}, spy.calls[1].Args)
}

func TestValidateSetupWrapsFailure(t *testing.T) {
	spy := &spyRunner{fn: func(inv engine.Invocation) (*engine.Result, error) {
		if inv.Args[len(inv.Args)-1] == "--help" {
			return nil, &engine.ExitError{Code: 1, Stderr: "No module named codetraverse"}
		}
		return &engine.Result{Stdout: "Python 3.11.4"}, nil
	}}
	b := newTestBridge(t, spy)

	err := b.ValidateSetup(context.Background())

	require.Error(t, err)
	assert.True(t, IsKind(err, KindExecutionFailure))
	assert.Contains(t, err.Error(), "setup")

	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "No module named codetraverse", be.Stderr)
}

func TestConfigDefaults(t *testing.T) {
	b := NewWithRunner(Config{EngineDir: "/opt/codetraverse"}, &spyRunner{})

	cfg := b.Config()
	assert.Equal(t, "python3", cfg.Python)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "/opt/codetraverse", cfg.WorkDir)
}
