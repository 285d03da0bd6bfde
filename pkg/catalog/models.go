// Package catalog loads and caches the four JSON catalogs behind the
// explorer: archetypes, entities, patterns, and the node-affinity table.
// Catalogs are immutable for the session once fetched.
package catalog

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// VectorDim is the required length of a coordinate vector.
// Shorter vectors are a loader bug upstream; readers treat them as absent.
const VectorDim = 8

// Archetype is one record of the archetypes catalog.
type Archetype struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	System      string    `json:"system"`
	Description string    `json:"description,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	Coordinates []float64 `json:"coordinates,omitempty"`

	Primordials   []PrimordialInstance `json:"primordial_instantiations,omitempty"`
	NearestNodes  []NodeAffinity       `json:"nearest_nodes,omitempty"` // sorted descending by affinity
	Relationships []Relationship       `json:"relationships,omitempty"`
}

// HasCoordinates reports whether the record carries a full 8-vector.
func (a *Archetype) HasCoordinates() bool {
	return len(a.Coordinates) == VectorDim
}

// PrimordialInstance links an archetype to a primordial with a weight in [0,1].
type PrimordialInstance struct {
	PrimordialID string   `json:"primordial_id"`
	Weight       float64  `json:"weight"`
	Aspects      []string `json:"aspects,omitempty"`
}

// NodeAffinity scores closeness between a record and a topology node.
type NodeAffinity struct {
	NodeID   string  `json:"node_id"`
	Affinity float64 `json:"affinity"`
}

// Relationship is a directed, typed, weighted link to another archetype.
// Not guaranteed bidirectional; the target id may be dangling.
type Relationship struct {
	TargetID string  `json:"target_id"`
	Type     string  `json:"type"`
	Weight   float64 `json:"weight"`
}

// Entity is one record of the entities catalog. Identity is the name,
// not a synthetic id.
type Entity struct {
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	PrimaryTradition string    `json:"primary_tradition"`
	MentionCount     int       `json:"mention_count,omitempty"`
	TextCount        int       `json:"text_count,omitempty"`
	Coordinates      []float64 `json:"coordinates,omitempty"`

	Mapping     *Mapping       `json:"mapping,omitempty"`
	NearestNode *NodeRef       `json:"nearest_node,omitempty"`
	TopNodes    []NodeAffinity `json:"top_nodes,omitempty"`
}

// Mapped reports whether the entity is linked to an archetype.
// Presence of mapping.archetype_id is the only contract for that.
func (e *Entity) Mapped() bool {
	return e.Mapping != nil && e.Mapping.ArchetypeID != ""
}

// Mapping links an entity to an archetype. The wire format spells the
// score either "confidence" or "score" depending on the authoring tool.
type Mapping struct {
	ArchetypeID  string        `json:"archetype_id"`
	Confidence   float64       `json:"confidence"`
	Fidelity     *float64      `json:"fidelity,omitempty"` // [0,1] when present
	Distance     *float64      `json:"distance,omitempty"`
	Method       string        `json:"method,omitempty"`
	TracingChain *TracingChain `json:"tracing_chain,omitempty"`
}

// TracingChain is an authoritative node override recorded by the mapper.
type TracingChain struct {
	Node string `json:"node"`
}

// UnmarshalJSON folds the confidence|score duck typing into Confidence.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	type alias Mapping
	aux := struct {
		*alias
		Score *float64 `json:"score"`
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if m.Confidence == 0 && aux.Score != nil {
		m.Confidence = *aux.Score
	}
	return nil
}

// NodeRef is the normalized nearest-node reference. The wire format is
// duck typed: either {"node_id": "...", "affinity": 0.8} or a bare
// string "D3". Both decode into this one shape so downstream code
// never branches on representation.
type NodeRef struct {
	NodeID   string   `json:"node_id"`
	Affinity *float64 `json:"affinity,omitempty"`
}

// UnmarshalJSON accepts both the object and bare-string forms.
func (n *NodeRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var code string
		if err := json.Unmarshal(data, &code); err != nil {
			return err
		}
		n.NodeID = code
		n.Affinity = nil
		return nil
	}
	type alias NodeRef
	return json.Unmarshal(data, (*alias)(n))
}

// MarshalJSON always emits the normalized object form.
func (n NodeRef) MarshalJSON() ([]byte, error) {
	type alias NodeRef
	return json.Marshal(alias(n))
}

// Pattern is one record of the patterns catalog. Identity is the name.
type Pattern struct {
	Name            string   `json:"name"`
	Arc             string   `json:"arc"` // one of the three arc codes
	Description     string   `json:"description,omitempty"`
	Motifs          []string `json:"motifs,omitempty"`
	Traditions      []string `json:"traditions,omitempty"`
	RelatedEntities []string `json:"related_entities,omitempty"` // entity names, not ids
}

// Document is one parsed catalog. Each catalog fills its own section;
// the others stay nil. A shape mismatch surfaces as missing fields,
// never as a rejected load.
type Document struct {
	Archetypes []Archetype       `json:"archetypes,omitempty"`
	Entities   []Entity          `json:"entities,omitempty"`
	Patterns   []Pattern         `json:"patterns,omitempty"`
	Motifs     map[string]string `json:"motifs,omitempty"`

	// NodeAffinities is the compiled ranking table keyed by node code.
	NodeAffinities map[string][]RankedArchetype `json:"node_affinities,omitempty"`
}

// RankedArchetype is one row of the node-affinity ranking table.
type RankedArchetype struct {
	ArchetypeID string  `json:"archetype_id"`
	Affinity    float64 `json:"affinity"`
}

// ParseDocument decodes raw catalog bytes.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse catalog document")
	}
	return &doc, nil
}
