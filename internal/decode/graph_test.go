package decode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGraph = `{
	"nodes": [
		{"id": "M::f", "category": "function", "file_path": "m.hs", "start_line": 1, "end_line": 4,
		 "signature": "f :: Int -> Int", "type_params": ["a"]},
		{"id": "M::g", "category": "function"}
	],
	"edges": [
		{"from": "M::f", "to": "M::g", "relation": "calls"}
	]
}`

func TestGraphSchemaDecode(t *testing.T) {
	g, err := GraphSchema(sampleGraph)

	require.NoError(t, err)
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)

	n := g.Nodes[0]
	assert.Equal(t, "M::f", n.ID)
	assert.Equal(t, "function", n.Category)
	assert.Equal(t, "m.hs", n.FilePath)
	assert.Equal(t, 1, n.StartLine)
	assert.Equal(t, "f :: Int -> Int", n.Attributes["signature"])

	e := g.Edges[0]
	assert.Equal(t, "M::f", e.Source)
	assert.Equal(t, "M::g", e.Target)
	assert.Equal(t, RelationCalls, e.Relation)
}

func TestGraphSchemaMalformed(t *testing.T) {
	_, err := GraphSchema("{{{")

	require.Error(t, err)
}

func TestGraphNodeRoundTrip(t *testing.T) {
	g, err := GraphSchema(sampleGraph)
	require.NoError(t, err)

	data, err := json.Marshal(g.Nodes[0])
	require.NoError(t, err)

	var back GraphNode
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, g.Nodes[0], back)
}

func TestGraphInconsistenciesDanglingEdges(t *testing.T) {
	g, err := GraphSchema(`{
		"nodes": [{"id": "A", "category": "function"}],
		"edges": [
			{"from": "A", "to": "GHOST", "relation": "calls"},
			{"from": "PHANTOM", "to": "A", "relation": "uses"}
		]
	}`)
	require.NoError(t, err)

	issues := g.Inconsistencies()

	require.Len(t, issues, 2)
	assert.Contains(t, issues[0], "GHOST")
	assert.Contains(t, issues[1], "PHANTOM")
}

func TestGraphInconsistenciesCleanGraph(t *testing.T) {
	g, err := GraphSchema(sampleGraph)
	require.NoError(t, err)

	assert.Empty(t, g.Inconsistencies())
}

func TestGraphFreeFormRelationDecodes(t *testing.T) {
	g, err := GraphSchema(`{
		"nodes": [],
		"edges": [{"from": "A", "to": "B", "relation": "instantiates-template"}]
	}`)

	require.NoError(t, err)
	assert.Equal(t, "instantiates-template", g.Edges[0].Relation)
}
