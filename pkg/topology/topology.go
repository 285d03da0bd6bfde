// Package topology defines the fixed 19-point node topology.
// The table is hand-authored and compiled in; it is never fetched.
package topology

// Arc codes for the three narrative arcs.
const (
	ArcAscent  = "A"
	ArcDescent = "D"
	ArcReturn  = "R"
)

// CenterCode identifies the singular center node outside the three arcs.
const CenterCode = "C0"

// Node is one member of the fixed topology: 18 arc nodes
// (3 arcs x 6 conditions) plus the center.
type Node struct {
	Code      string `json:"code"`
	Arc       string `json:"arc"` // empty for the center
	Condition int    `json:"condition"`
	Title     string `json:"title"`
	Role      string `json:"role"`
	Tone      string `json:"tone"`
}

// IsCenter reports whether the node is the singular center.
func (n *Node) IsCenter() bool {
	return n.Code == CenterCode
}

// nodes is the authoritative topology table. Order matters for display:
// ascent, descent, return, center last.
var nodes = []Node{
	{Code: "A1", Arc: ArcAscent, Condition: 1, Title: "Threshold", Role: "initiator", Tone: "expectant"},
	{Code: "A2", Arc: ArcAscent, Condition: 2, Title: "Summons", Role: "herald", Tone: "urgent"},
	{Code: "A3", Arc: ArcAscent, Condition: 3, Title: "Forge", Role: "mentor", Tone: "exacting"},
	{Code: "A4", Arc: ArcAscent, Condition: 4, Title: "Vigil", Role: "guardian", Tone: "watchful"},
	{Code: "A5", Arc: ArcAscent, Condition: 5, Title: "Crown", Role: "sovereign", Tone: "radiant"},
	{Code: "A6", Arc: ArcAscent, Condition: 6, Title: "Zenith", Role: "sky-father", Tone: "triumphant"},
	{Code: "D1", Arc: ArcDescent, Condition: 1, Title: "Eclipse", Role: "trickster", Tone: "unsettling"},
	{Code: "D2", Arc: ArcDescent, Condition: 2, Title: "Maelstrom", Role: "destroyer", Tone: "violent"},
	{Code: "D3", Arc: ArcDescent, Condition: 3, Title: "Gallows", Role: "sacrificed", Tone: "grave"},
	{Code: "D4", Arc: ArcDescent, Condition: 4, Title: "Abyss", Role: "shadow", Tone: "devouring"},
	{Code: "D5", Arc: ArcDescent, Condition: 5, Title: "Ossuary", Role: "psychopomp", Tone: "silent"},
	{Code: "D6", Arc: ArcDescent, Condition: 6, Title: "Nadir", Role: "chthonic", Tone: "absolute"},
	{Code: "R1", Arc: ArcReturn, Condition: 1, Title: "Ember", Role: "survivor", Tone: "tentative"},
	{Code: "R2", Arc: ArcReturn, Condition: 2, Title: "Spring", Role: "healer", Tone: "renewing"},
	{Code: "R3", Arc: ArcReturn, Condition: 3, Title: "Loom", Role: "weaver", Tone: "patient"},
	{Code: "R4", Arc: ArcReturn, Condition: 4, Title: "Harvest", Role: "provider", Tone: "abundant"},
	{Code: "R5", Arc: ArcReturn, Condition: 5, Title: "Hearth", Role: "keeper", Tone: "settled"},
	{Code: "R6", Arc: ArcReturn, Condition: 6, Title: "Apotheosis", Role: "transfigured", Tone: "luminous"},
	{Code: "C0", Arc: "", Condition: 0, Title: "Axis", Role: "still-point", Tone: "timeless"},
}

// byCode is derived once at init from the table above.
var byCode = func() map[string]*Node {
	m := make(map[string]*Node, len(nodes))
	for i := range nodes {
		m[nodes[i].Code] = &nodes[i]
	}
	return m
}()

// Lookup returns the node for a code, or nil if the code is unknown.
func Lookup(code string) *Node {
	return byCode[code]
}

// All returns the topology in canonical display order.
func All() []*Node {
	result := make([]*Node, len(nodes))
	for i := range nodes {
		result[i] = &nodes[i]
	}
	return result
}

// ByArc returns the six nodes of an arc in condition order.
// The center belongs to no arc and is never returned here.
func ByArc(arc string) []*Node {
	var result []*Node
	for i := range nodes {
		if nodes[i].Arc == arc {
			result = append(result, &nodes[i])
		}
	}
	return result
}

// Count is the total number of topology members.
func Count() int {
	return len(nodes)
}
