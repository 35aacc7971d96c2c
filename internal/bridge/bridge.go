// Package bridge is the typed public façade over the external codetraverse
// analysis engine. Every operation validates its inputs, confirms required
// paths, runs exactly one engine invocation, decodes the output, and reports
// any failure through the closed error taxonomy in errors.go.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"codebridge/internal/decode"
	"codebridge/internal/engine"
)

// Bridge exposes the engine's operations behind a typed API. It holds no
// mutable state: concurrent calls are independent, each owning its own
// invocation.
type Bridge struct {
	cfg    Config
	runner engine.Runner
}

// New creates a Bridge backed by a real subprocess runner.
func New(cfg Config) *Bridge {
	return NewWithRunner(cfg, engine.ExecRunner{})
}

// NewWithRunner creates a Bridge with an injected runner.
func NewWithRunner(cfg Config, runner engine.Runner) *Bridge {
	return &Bridge{cfg: cfg.withDefaults(), runner: runner}
}

// Config returns a copy of the bridge's configuration.
func (b *Bridge) Config() Config { return b.cfg }

// AnalyzeFile extracts the components of a single source file.
func (b *Bridge) AnalyzeFile(ctx context.Context, filePath string, lang Language) ([]decode.Component, error) {
	const op = "analyze_file"
	if err := checkLanguage(op, lang); err != nil {
		return nil, err
	}
	if err := requirePath(op, filePath); err != nil {
		return nil, err
	}

	res, err := b.invoke(ctx, op, b.moduleArgs("codetraverse.main",
		"--FILE", filePath,
		"--LANGUAGE", string(lang),
		"--output-format", "json",
		"--quiet",
	), 0)
	if err != nil {
		return nil, err
	}

	comps, err := decode.Components(res.Stdout)
	if err != nil {
		return nil, errDecode(op, decode.Excerpt(res.Stdout), err)
	}
	return comps, nil
}

// WorkspaceSchema builds the dependency-graph schema of a workspace.
func (b *Bridge) WorkspaceSchema(ctx context.Context, root string, lang Language) (*decode.Graph, error) {
	const op = "workspace_schema"
	if err := checkLanguage(op, lang); err != nil {
		return nil, err
	}
	if err := requirePath(op, root); err != nil {
		return nil, err
	}

	res, err := b.invoke(ctx, op, b.moduleArgs("codetraverse.main",
		"--ROOT_DIR", root,
		"--LANGUAGE", string(lang),
		"--json-schema",
		"--quiet",
	), 0)
	if err != nil {
		return nil, err
	}

	graph, err := decode.GraphSchema(res.Stdout)
	if err != nil {
		return nil, errDecode(op, decode.Excerpt(res.Stdout), err)
	}
	if issues := graph.Inconsistencies(); len(issues) > 0 {
		log.Printf("[%s] graph has %d dangling edge endpoints", op, len(issues))
	}
	return graph, nil
}

// AnalyzeWorkspace runs a full workspace analysis. The engine writes one
// JSON artifact per source file under outputBase and its graph files under
// graphDir; the flattened component list is read back from the artifacts.
func (b *Bridge) AnalyzeWorkspace(ctx context.Context, root string, lang Language, outputBase, graphDir string) ([]decode.Component, error) {
	const op = "analyze_workspace"
	if err := checkLanguage(op, lang); err != nil {
		return nil, err
	}
	if err := requirePath(op, root); err != nil {
		return nil, err
	}

	// The engine expects its output directories to exist. A creation
	// failure stops the operation the same way a failed process would.
	for _, dir := range []string{outputBase, graphDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &Error{Kind: KindExecutionFailure, Op: op, Path: dir, Stderr: err.Error(), Err: err}
		}
	}

	if _, err := b.invoke(ctx, op, b.moduleArgs("codetraverse.main",
		"--ROOT_DIR", root,
		"--LANGUAGE", string(lang),
		"--OUTPUT_BASE", outputBase,
		"--GRAPH_DIR", graphDir,
		"--quiet",
	), 0); err != nil {
		return nil, err
	}

	comps, err := readComponentsDir(op, outputBase)
	if err != nil {
		return nil, err
	}
	log.Printf("[%s] collected %d components from %s", op, len(comps), outputBase)
	return comps, nil
}

// FindPath asks the engine for the shortest path to target. With a source
// the engine searches from it; "no path" is a successful result with Found
// unset, never an error.
func (b *Bridge) FindPath(ctx context.Context, graphPath, target, source string) (*decode.PathResult, error) {
	const op = "find_path"
	if err := requirePath(op, graphPath); err != nil {
		return nil, err
	}

	args := b.moduleArgs("codetraverse.path",
		"--GRAPH_PATH", graphPath,
		"--COMPONENT", target,
	)
	if source != "" {
		args = append(args, "--SOURCE", source)
	}

	res, err := b.invoke(ctx, op, args, 0)
	if err != nil {
		return nil, err
	}
	return decode.PathReport(res.Stdout), nil
}

// Neighbors lists the edges into and out of one component.
func (b *Bridge) Neighbors(ctx context.Context, graphPath, target string) (*decode.NeighborResult, error) {
	const op = "neighbors"
	if err := requirePath(op, graphPath); err != nil {
		return nil, err
	}

	res, err := b.invoke(ctx, op, b.moduleArgs("codetraverse.path",
		"--GRAPH_PATH", graphPath,
		"--COMPONENT", target,
	), 0)
	if err != nil {
		return nil, err
	}
	return decode.NeighborReport(res.Stdout), nil
}

// Query runs a named engine sub-command with positional arguments and
// returns its JSON document. The typed wrappers below cover the known
// sub-commands.
func (b *Bridge) Query(ctx context.Context, command string, args ...string) (json.RawMessage, error) {
	op := "query_" + command

	argv := b.moduleArgs("codetraverse.query", append([]string{command}, args...)...)
	res, err := b.invoke(ctx, op, argv, 0)
	if err != nil {
		return nil, err
	}

	if !json.Valid([]byte(res.Stdout)) {
		return nil, errDecode(op, decode.Excerpt(res.Stdout), fmt.Errorf("output is not a JSON document"))
	}
	return json.RawMessage(res.Stdout), nil
}

// AllModules lists every module name present in a graph.
func (b *Bridge) AllModules(ctx context.Context, graphPath string) ([]string, error) {
	return b.stringListQuery(ctx, "get_all_modules", graphPath)
}

// ModuleInfo lists the components of one module from the analysis artifacts.
func (b *Bridge) ModuleInfo(ctx context.Context, fdepDir, moduleName string) ([]decode.Component, error) {
	return b.componentQuery(ctx, "get_module_info", fdepDir, moduleName)
}

// FunctionInfo returns the full records of one component.
func (b *Bridge) FunctionInfo(ctx context.Context, fdepDir, moduleName, componentName string) ([]decode.Component, error) {
	return b.componentQuery(ctx, "get_function_info", fdepDir, moduleName, componentName)
}

// FunctionChildren lists the identities a component depends on, to depth.
func (b *Bridge) FunctionChildren(ctx context.Context, graphPath, moduleName, componentName string, depth int) ([]string, error) {
	return b.stringListQuery(ctx, "get_function_children", graphPath, moduleName, componentName, strconv.Itoa(depth))
}

// FunctionParents lists the identities depending on a component, to depth.
func (b *Bridge) FunctionParents(ctx context.Context, graphPath, moduleName, componentName string, depth int) ([]string, error) {
	return b.stringListQuery(ctx, "get_function_parent", graphPath, moduleName, componentName, strconv.Itoa(depth))
}

// Subgraph extracts the neighborhood graph around one component.
func (b *Bridge) Subgraph(ctx context.Context, graphPath, moduleName, componentName string, depth int) (*decode.Graph, error) {
	raw, err := b.Query(ctx, "get_subgraph", graphPath, moduleName, componentName, strconv.Itoa(depth))
	if err != nil {
		return nil, err
	}
	graph, err := decode.GraphSchema(string(raw))
	if err != nil {
		return nil, errDecode("query_get_subgraph", decode.Excerpt(string(raw)), err)
	}
	return graph, nil
}

// CommonParents lists the common ancestors of two components.
func (b *Bridge) CommonParents(ctx context.Context, graphPath, module1, component1, module2, component2 string) ([]string, error) {
	return b.stringListQuery(ctx, "get_common_parents", graphPath, module1, component1, module2, component2)
}

// CommonChildren lists the common descendants of two components.
func (b *Bridge) CommonChildren(ctx context.Context, graphPath, module1, component1, module2, component2 string) ([]string, error) {
	return b.stringListQuery(ctx, "get_common_children", graphPath, module1, component1, module2, component2)
}

// SetupEnvironment prepares the engine environment. The step is opaque to
// the bridge (a pip install of the engine checkout) and known to run long on
// first use, so it is never timed out.
func (b *Bridge) SetupEnvironment(ctx context.Context) error {
	const op = "setup_environment"

	log.Printf("[%s] installing engine from %s", op, b.cfg.EngineDir)
	_, err := b.run(ctx, op, engine.Invocation{
		Args:      []string{b.cfg.Python, "-m", "pip", "install", "-e", b.cfg.EngineDir},
		Dir:       b.cfg.WorkDir,
		Env:       b.cfg.Env,
		NoTimeout: true,
	})
	if err != nil {
		return err
	}
	log.Printf("[%s] engine environment ready", op)
	return nil
}

// ValidateSetup probes the runtime and the engine entry point with two short
// invocations. Any failure is reported as an ExecutionFailure with a
// setup-specific message so callers can distinguish "engine broken" from
// operation-level errors.
func (b *Bridge) ValidateSetup(ctx context.Context) error {
	const op = "validate_setup"

	probes := [][]string{
		{b.cfg.Python, "--version"},
		b.moduleArgs("codetraverse.main", "--help"),
	}
	for _, argv := range probes {
		if _, err := b.invoke(ctx, op, argv, 0); err != nil {
			wrapped := &Error{
				Kind: KindExecutionFailure,
				Op:   op,
				Err:  fmt.Errorf("engine setup is not usable (run setup first): %w", err),
			}
			var be *Error
			if errors.As(err, &be) {
				wrapped.Stderr = be.Stderr
				wrapped.ExitCode = be.ExitCode
			}
			return wrapped
		}
	}
	return nil
}

// moduleArgs builds the canonical module-style argument vector
// `<python> -m <module> <rest...>`.
func (b *Bridge) moduleArgs(module string, rest ...string) []string {
	return append([]string{b.cfg.Python, "-m", module}, rest...)
}

// invoke runs one bounded engine invocation. A zero timeout selects the
// configured default; operations pass a positive value to override it for
// one call.
func (b *Bridge) invoke(ctx context.Context, op string, args []string, timeout time.Duration) (*engine.Result, error) {
	inv := engine.Invocation{
		Args:    args,
		Dir:     b.cfg.WorkDir,
		Env:     b.cfg.Env,
		Timeout: b.cfg.Timeout,
	}
	if timeout > 0 {
		inv.Timeout = timeout
	}
	return b.run(ctx, op, inv)
}

// run hands an invocation to the runner and maps its outcome onto the
// taxonomy.
func (b *Bridge) run(ctx context.Context, op string, inv engine.Invocation) (*engine.Result, error) {
	res, err := b.runner.Run(ctx, inv)
	if err != nil {
		return nil, engineError(op, err)
	}
	return res, nil
}

func (b *Bridge) stringListQuery(ctx context.Context, command string, args ...string) ([]string, error) {
	raw, err := b.Query(ctx, command, args...)
	if err != nil {
		return nil, err
	}
	out, err := decode.StringList(string(raw))
	if err != nil {
		return nil, errDecode("query_"+command, decode.Excerpt(string(raw)), err)
	}
	return out, nil
}

func (b *Bridge) componentQuery(ctx context.Context, command string, args ...string) ([]decode.Component, error) {
	raw, err := b.Query(ctx, command, args...)
	if err != nil {
		return nil, err
	}
	comps, err := decode.Components(string(raw))
	if err != nil {
		return nil, errDecode("query_"+command, decode.Excerpt(string(raw)), err)
	}
	return comps, nil
}

// checkLanguage is the pure membership check run before any path or process
// work.
func checkLanguage(op string, lang Language) error {
	if !IsLanguageSupported(string(lang)) {
		return errInvalidLanguage(op, lang)
	}
	return nil
}

// requirePath fails fast when a path the engine needs does not exist,
// converting what would be an opaque non-zero exit into a local diagnosis
// and skipping the doomed spawn.
func requirePath(op, path string) error {
	if _, err := os.Stat(path); err != nil {
		return errPathNotFound(op, path, err)
	}
	return nil
}
