package decode

import (
	"regexp"
	"strings"
)

// PathResult is the outcome of a shortest-path query. Absence of a path is a
// successful result, not an error; Message preserves the raw engine text for
// display either way.
type PathResult struct {
	Found   bool     `json:"found"`
	Path    []string `json:"path,omitempty"`
	Message string   `json:"message"`
}

// NeighborEdge is one edge of a neighbor listing. From is set on incoming
// edges, To on outgoing ones.
type NeighborEdge struct {
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Relation string `json:"relation"`
}

// NeighborResult holds the edges into and out of one component.
type NeighborResult struct {
	Incoming []NeighborEdge `json:"incoming"`
	Outgoing []NeighborEdge `json:"outgoing"`
}

// Banner substrings that open the two sections of a neighbor report.
const (
	incomingBanner = "edges INTO"
	outgoingBanner = "edges OUT OF"
)

// edgeLine matches `source --[relation]--> target`.
var edgeLine = regexp.MustCompile(`^\s*(.+?)\s*--\[(.*?)\]-->\s*(.+?)\s*$`)

// PathReport parses the engine's human-readable shortest-path report. The
// report header also contains an arrow ("Shortest path from 'a' → 'b':"), so
// the decoder takes the last arrow-separated line that is not a header and
// splits it into the ordered identity sequence. The engine enriches hops with
// "(module: …)" or "(file: …)" suffixes; those are stripped. Any number of
// hops is accepted.
func PathReport(text string) *PathResult {
	message := strings.TrimSpace(text)

	var pathLine string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasSuffix(line, ":") {
			continue
		}
		if strings.Contains(line, "→") || strings.Contains(line, "->") {
			pathLine = line
		}
	}

	if pathLine == "" {
		return &PathResult{Found: false, Message: message}
	}

	// Older engine builds emit the ASCII arrow.
	pathLine = strings.ReplaceAll(pathLine, "→", "->")

	var path []string
	for _, hop := range strings.Split(pathLine, "->") {
		hop = strings.TrimSpace(hop)
		if idx := strings.Index(hop, " ("); idx >= 0 {
			hop = strings.TrimSpace(hop[:idx])
		}
		if hop != "" {
			path = append(path, hop)
		}
	}

	if len(path) == 0 {
		return &PathResult{Found: false, Message: message}
	}
	return &PathResult{Found: true, Path: path, Message: message}
}

// NeighborReport parses the engine's two-section neighbor listing. Lines
// outside a section, and lines within one that do not match the edge shape
// (headers, counts, blanks), are ignored. A report with neither banner yields
// empty lists.
func NeighborReport(text string) *NeighborResult {
	result := &NeighborResult{
		Incoming: []NeighborEdge{},
		Outgoing: []NeighborEdge{},
	}

	const (
		sectionNone = iota
		sectionIncoming
		sectionOutgoing
	)
	section := sectionNone

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.Contains(line, incomingBanner):
			section = sectionIncoming
			continue
		case strings.Contains(line, outgoingBanner):
			section = sectionOutgoing
			continue
		}

		m := edgeLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		switch section {
		case sectionIncoming:
			result.Incoming = append(result.Incoming, NeighborEdge{From: m[1], Relation: m[2]})
		case sectionOutgoing:
			result.Outgoing = append(result.Outgoing, NeighborEdge{To: m[3], Relation: m[2]})
		}
	}

	return result
}
