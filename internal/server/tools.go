package server

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"codebridge/internal/bridge"
	"codebridge/internal/scanner"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Arguments structs

type AnalyzeFileArgs struct {
	FilePath string `json:"file_path" jsonschema:"required,description:The path to the source file to analyze"`
	Language string `json:"language" jsonschema:"required,description:The language of the file (haskell, python, rescript, golang, rust, typescript, purescript, javascript)"`
}

type CreateFdepDataArgs struct {
	RootDir   string `json:"root_dir" jsonschema:"description:The workspace root to analyze; defaults to the server's workspace root"`
	Language  string `json:"language" jsonschema:"required,description:The language of the workspace"`
	FdepPath  string `json:"fdep_path" jsonschema:"description:Directory for per-file component artifacts; defaults to <root>/fdep"`
	GraphPath string `json:"graph_path" jsonschema:"description:Directory for graph files; defaults to <root>/graph"`
}

type WorkspaceSummaryArgs struct {
	RootDir string `json:"root_dir" jsonschema:"description:The workspace root to scan; defaults to the server's workspace root"`
}

type ListModulesArgs struct {
	GraphPath string `json:"graph_path" jsonschema:"required,description:The path to a graph file produced by create_fdep_data"`
}

type ListComponentsArgs struct {
	FdepPath   string `json:"fdep_path" jsonschema:"required,description:The fdep artifact directory produced by create_fdep_data"`
	ModuleName string `json:"module_name" jsonschema:"required,description:The module whose components to list"`
}

type ComponentDetailsArgs struct {
	FdepPath      string `json:"fdep_path" jsonschema:"required,description:The fdep artifact directory produced by create_fdep_data"`
	ModuleName    string `json:"module_name" jsonschema:"required,description:The module containing the component"`
	ComponentName string `json:"component_name" jsonschema:"required,description:The name of the component"`
}

type ComponentRelativesArgs struct {
	GraphPath     string `json:"graph_path" jsonschema:"required,description:The path to a graph file produced by create_fdep_data"`
	ModuleName    string `json:"module_name" jsonschema:"required,description:The module containing the component"`
	ComponentName string `json:"component_name" jsonschema:"required,description:The name of the component"`
	Depth         int    `json:"depth" jsonschema:"description:Traversal depth; defaults to 1"`
}

type ComponentPairArgs struct {
	GraphPath      string `json:"graph_path" jsonschema:"required,description:The path to a graph file produced by create_fdep_data"`
	ModuleName1    string `json:"module_name_1" jsonschema:"required,description:The module of the first component"`
	ComponentName1 string `json:"component_name_1" jsonschema:"required,description:The name of the first component"`
	ModuleName2    string `json:"module_name_2" jsonschema:"required,description:The module of the second component"`
	ComponentName2 string `json:"component_name_2" jsonschema:"required,description:The name of the second component"`
}

type DependencyPathArgs struct {
	GraphPath     string `json:"graph_path" jsonschema:"required,description:The path to a graph file produced by create_fdep_data"`
	ToComponent   string `json:"to_component" jsonschema:"required,description:The fully qualified target component"`
	FromComponent string `json:"from_component" jsonschema:"description:The fully qualified source component; omit to search from any entry point"`
}

type NeighborsArgs struct {
	GraphPath     string `json:"graph_path" jsonschema:"required,description:The path to a graph file produced by create_fdep_data"`
	ComponentName string `json:"component_name" jsonschema:"required,description:The fully qualified component whose edges to list"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "analyze_file",
		Description: "Extracts the components of a single source file",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args AnalyzeFileArgs) (*mcp.CallToolResult, any, error) {
		comps, err := s.bridge.AnalyzeFile(ctx, args.FilePath, bridge.Language(args.Language))
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return jsonResult(comps), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_fdep_data",
		Description: "Analyzes a workspace and writes component artifacts and graph files for the other tools",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args CreateFdepDataArgs) (*mcp.CallToolResult, any, error) {
		root := s.defaultRoot(args.RootDir)
		fdep := args.FdepPath
		if fdep == "" {
			fdep = filepath.Join(root, "fdep")
		}
		graphDir := args.GraphPath
		if graphDir == "" {
			graphDir = filepath.Join(root, "graph")
		}

		comps, err := s.bridge.AnalyzeWorkspace(ctx, root, bridge.Language(args.Language), fdep, graphDir)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		msg := fmt.Sprintf("Analyzed %s: %d components. Artifacts in %s, graph files in %s.",
			root, len(comps), fdep, graphDir)
		return textResult(msg), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "workspace_summary",
		Description: "Previews which languages and files a workspace analysis would cover, honoring .gitignore",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args WorkspaceSummaryArgs) (*mcp.CallToolResult, any, error) {
		sum, err := scanner.Scan(s.defaultRoot(args.RootDir))
		if err != nil {
			return errorResult(fmt.Sprintf("scan failed: %v", err)), nil, nil
		}
		return jsonResult(sum), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_modules",
		Description: "Lists every module name present in a graph",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ListModulesArgs) (*mcp.CallToolResult, any, error) {
		modules, err := s.bridge.AllModules(ctx, args.GraphPath)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return jsonResult(modules), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_components_in_module",
		Description: "Lists the components of one module from the analysis artifacts",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ListComponentsArgs) (*mcp.CallToolResult, any, error) {
		comps, err := s.bridge.ModuleInfo(ctx, args.FdepPath, args.ModuleName)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return jsonResult(comps), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_component_details",
		Description: "Returns the full records of one component",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ComponentDetailsArgs) (*mcp.CallToolResult, any, error) {
		comps, err := s.bridge.FunctionInfo(ctx, args.FdepPath, args.ModuleName, args.ComponentName)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		if len(comps) == 0 {
			return textResult("Component not found."), nil, nil
		}
		return jsonResult(comps), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_component_children",
		Description: "Lists the components a component depends on, to the given depth",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ComponentRelativesArgs) (*mcp.CallToolResult, any, error) {
		children, err := s.bridge.FunctionChildren(ctx, args.GraphPath, args.ModuleName, args.ComponentName, defaultDepth(args.Depth))
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return jsonResult(children), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_component_parents",
		Description: "Lists the components depending on a component, to the given depth",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ComponentRelativesArgs) (*mcp.CallToolResult, any, error) {
		parents, err := s.bridge.FunctionParents(ctx, args.GraphPath, args.ModuleName, args.ComponentName, defaultDepth(args.Depth))
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return jsonResult(parents), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_component_subgraph",
		Description: "Extracts the neighborhood graph around one component",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ComponentRelativesArgs) (*mcp.CallToolResult, any, error) {
		graph, err := s.bridge.Subgraph(ctx, args.GraphPath, args.ModuleName, args.ComponentName, defaultDepth(args.Depth))
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return jsonResult(graph), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "find_lca",
		Description: "Finds the common ancestors of two components",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ComponentPairArgs) (*mcp.CallToolResult, any, error) {
		parents, err := s.bridge.CommonParents(ctx, args.GraphPath,
			args.ModuleName1, args.ComponentName1, args.ModuleName2, args.ComponentName2)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		if len(parents) == 0 {
			return textResult("No common ancestors found."), nil, nil
		}
		return jsonResult(parents), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_common_children",
		Description: "Finds the common descendants of two components",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ComponentPairArgs) (*mcp.CallToolResult, any, error) {
		children, err := s.bridge.CommonChildren(ctx, args.GraphPath,
			args.ModuleName1, args.ComponentName1, args.ModuleName2, args.ComponentName2)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		if len(children) == 0 {
			return textResult("No common descendants found."), nil, nil
		}
		return jsonResult(children), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "find_dependency_path",
		Description: "Finds the shortest dependency path to a component, optionally from a specific source",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args DependencyPathArgs) (*mcp.CallToolResult, any, error) {
		path, err := s.bridge.FindPath(ctx, args.GraphPath, args.ToComponent, args.FromComponent)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		if !path.Found {
			msg := path.Message
			if msg == "" {
				msg = "No path found."
			}
			return textResult(msg), nil, nil
		}
		return jsonResult(path), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "neighbors",
		Description: "Lists the edges into and out of one component",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args NeighborsArgs) (*mcp.CallToolResult, any, error) {
		edges, err := s.bridge.Neighbors(ctx, args.GraphPath, args.ComponentName)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return jsonResult(edges), nil, nil
	})
}

// defaultRoot resolves an optional root argument against the server's
// workspace root.
func (s *Server) defaultRoot(root string) string {
	if root == "" {
		return s.workspaceRoot
	}
	return root
}

func defaultDepth(depth int) int {
	if depth <= 0 {
		return 1
	}
	return depth
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to encode result: %v", err))
	}
	return textResult(string(jsonBytes))
}
