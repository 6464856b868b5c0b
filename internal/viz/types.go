// Package viz builds and renders collaboration graphs.
package viz

import "github.com/matsen/collab/internal/entity"

// Node kinds.
const (
	NodeKindRepo        = "repo"
	NodeKindContributor = "contributor"
)

// Link distances used by the force layout.
const (
	FocalDistance     = 100
	SecondaryDistance = 20
)

// Graph is a deduplicated node/link structure ready for force layout.
// Every link endpoint references a node in Nodes.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Node is a repository or a contributor. Exactly one of Repo and Contributor
// is set, matching Kind.
type Node struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`

	// Display
	Name string `json:"name"`

	Repo        *entity.RepoSummary        `json:"repo,omitempty"`
	Contributor *entity.ContributorSummary `json:"contributor,omitempty"`

	// Rendering emphasis for repository nodes; topology never depends on it.
	Score float64 `json:"score,omitempty"`
}

// Link connects two nodes by ID.
type Link struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Distance  int    `json:"distance"`
	Thickness int    `json:"thickness,omitempty"`
}

// ID returns the link identity, "source->target". IDs never contain '>',
// so distinct endpoint pairs give distinct IDs.
func (l Link) ID() string {
	return l.Source + "->" + l.Target
}

// IsEmpty returns true if the graph has no nodes.
func (g *Graph) IsEmpty() bool {
	return g == nil || len(g.Nodes) == 0
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}
