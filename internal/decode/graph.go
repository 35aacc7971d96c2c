package decode

import (
	"encoding/json"
	"fmt"
)

// GraphNode is one node of the engine's dependency graph schema. Keys the
// engine emits beyond the fixed set land in Attributes, since extractors for
// different languages attach different bags (signatures, type parameters,
// modifiers).
type GraphNode struct {
	ID         string
	Category   string
	FilePath   string
	StartLine  int
	EndLine    int
	Attributes map[string]any
}

// GraphEdge is one directed edge. Relation is an open string, not an enum:
// the engine introduces new relation kinds without notice and a decode must
// not fail on them.
type GraphEdge struct {
	Source   string `json:"from"`
	Target   string `json:"to"`
	Relation string `json:"relation"`
}

// Common relation labels observed in engine output.
const (
	RelationCalls   = "calls"
	RelationUses    = "uses"
	RelationImports = "imports"
)

// Graph is the node and edge lists of one workspace schema.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// UnmarshalJSON captures the fixed node keys and routes everything else into
// the open attribute bag.
func (n *GraphNode) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	take := func(key string, dst any) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("node field %q: %w", key, err)
		}
		delete(raw, key)
		return nil
	}

	for key, dst := range map[string]any{
		"id":         &n.ID,
		"category":   &n.Category,
		"file_path":  &n.FilePath,
		"start_line": &n.StartLine,
		"end_line":   &n.EndLine,
	} {
		if err := take(key, dst); err != nil {
			return err
		}
	}

	if len(raw) > 0 {
		n.Attributes = make(map[string]any, len(raw))
		for key, v := range raw {
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return fmt.Errorf("node attribute %q: %w", key, err)
			}
			n.Attributes[key] = val
		}
	}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON: attributes are flattened back
// alongside the fixed keys.
func (n GraphNode) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Attributes)+5)
	for key, v := range n.Attributes {
		out[key] = v
	}
	out["id"] = n.ID
	out["category"] = n.Category
	if n.FilePath != "" {
		out["file_path"] = n.FilePath
	}
	if n.StartLine != 0 {
		out["start_line"] = n.StartLine
	}
	if n.EndLine != 0 {
		out["end_line"] = n.EndLine
	}
	return json.Marshal(out)
}

// GraphSchema decodes a JSON graph document.
func GraphSchema(text string) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal([]byte(text), &g); err != nil {
		return nil, fmt.Errorf("graph schema %q: %w", Excerpt(text), err)
	}
	return &g, nil
}

// Inconsistencies lists edges whose endpoints are not present in the node
// list. Engine output may violate that invariant; it is diagnostic
// information, never a decode failure.
func (g *Graph) Inconsistencies() []string {
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = struct{}{}
	}

	var issues []string
	for _, e := range g.Edges {
		if _, ok := ids[e.Source]; !ok {
			issues = append(issues, fmt.Sprintf("edge %s --[%s]--> %s: unknown source", e.Source, e.Relation, e.Target))
		}
		if _, ok := ids[e.Target]; !ok {
			issues = append(issues, fmt.Sprintf("edge %s --[%s]--> %s: unknown target", e.Source, e.Relation, e.Target))
		}
	}
	return issues
}
