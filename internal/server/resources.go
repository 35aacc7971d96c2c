package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "codebridge://usage-guidelines",
		Name:        "Usage Guidelines",
		Description: "System prompt and usage guidelines for the codebridge MCP server",
		MIMEType:    "text/markdown",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      "codebridge://usage-guidelines",
					MIMEType: "text/markdown",
					Text:     systemPrompt,
				},
			},
		}, nil
	})

	// Build a map of tool name -> schema JSON for dynamic dispatch.
	schemaMap := buildSchemaMap()

	// Register a single resource template that matches codebridge://schemas/{tool_name}.
	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "codebridge://schemas/{tool_name}",
		Name:        "Tool Schema",
		Description: "JSON schema for the named tool's arguments",
		MIMEType:    "application/schema+json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := req.Params.URI
		toolName := strings.TrimPrefix(uri, "codebridge://schemas/")
		schemaJSON, ok := schemaMap[toolName]
		if !ok {
			return nil, fmt.Errorf("unknown tool schema: %q", toolName)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/schema+json",
					Text:     schemaJSON,
				},
			},
		}, nil
	})
}

// buildSchemaMap constructs a map from tool name to its JSON schema string.
// Schemas are derived from the args structs using jsonschema inference.
func buildSchemaMap() map[string]string {
	m := make(map[string]string)
	addSchema[AnalyzeFileArgs](m, "analyze_file")
	addSchema[CreateFdepDataArgs](m, "create_fdep_data")
	addSchema[WorkspaceSummaryArgs](m, "workspace_summary")
	addSchema[ListModulesArgs](m, "list_modules")
	addSchema[ListComponentsArgs](m, "list_components_in_module")
	addSchema[ComponentDetailsArgs](m, "get_component_details")
	addSchema[ComponentRelativesArgs](m, "get_component_children")
	addSchema[ComponentRelativesArgs](m, "get_component_parents")
	addSchema[ComponentRelativesArgs](m, "get_component_subgraph")
	addSchema[ComponentPairArgs](m, "find_lca")
	addSchema[ComponentPairArgs](m, "get_common_children")
	addSchema[DependencyPathArgs](m, "find_dependency_path")
	addSchema[NeighborsArgs](m, "neighbors")
	return m
}

func addSchema[T any](m map[string]string, name string) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return
	}
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return
	}
	m[name] = string(schemaJSON)
}
