package domain

import "fmt"

// LinkRelationType links an entity to the chunk it was extracted from.
const LinkRelationType = "FROM_CHUNK"

type Entity struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Relationship is a directed, typed edge between two entities.
type Relationship struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Type    string `json:"type"`
	Details string `json:"details,omitempty"`
	Target  string `json:"target"`
}

func (r Relationship) String() string {
	return fmt.Sprintf("%s - %s(%s) -> %s", r.Source, r.Type, r.Details, r.Target)
}

// ChunkNeighborhood is one seed chunk with the relationships reachable
// within two entity hops of the entities extracted from it.
type ChunkNeighborhood struct {
	Chunk         Chunk          `json:"chunk"`
	Relationships []Relationship `json:"relationships"`
}

// VectorIndexSpec describes the similarity index over chunk embeddings.
type VectorIndexSpec struct {
	Name       string
	Label      string
	Property   string
	Dimensions int
	Similarity string
}
