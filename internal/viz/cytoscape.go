package viz

import (
	"encoding/json"
	"fmt"
)

// CytoscapeElements represents the Cytoscape.js data format.
type CytoscapeElements struct {
	Nodes []CytoscapeNode `json:"nodes"`
	Edges []CytoscapeEdge `json:"edges"`
}

// CytoscapeNode represents a node in Cytoscape.js format.
type CytoscapeNode struct {
	Data    CytoscapeNodeData `json:"data"`
	Classes string            `json:"classes,omitempty"`
}

// CytoscapeNodeData flattens a Node into the fields the page renders.
type CytoscapeNodeData struct {
	ID    string  `json:"id"`
	Kind  string  `json:"kind"`
	Label string  `json:"label"`
	Score float64 `json:"score"`

	// Tooltip fields
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Stars       int    `json:"stars,omitempty"`
	Name        string `json:"name,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	Followers   int    `json:"followers,omitempty"`
	Commits     int    `json:"commits,omitempty"`
}

// CytoscapeEdge represents an edge in Cytoscape.js format.
type CytoscapeEdge struct {
	Data CytoscapeEdgeData `json:"data"`
}

// CytoscapeEdgeData contains the edge data fields.
type CytoscapeEdgeData struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	Distance  int    `json:"distance"`
	Thickness int    `json:"thickness"`
}

// ToCytoscapeJSON converts the graph to Cytoscape.js JSON. The node with ID
// focalID gets the "focal" class.
func (g *Graph) ToCytoscapeJSON(focalID string) (string, error) {
	elements := CytoscapeElements{
		Nodes: make([]CytoscapeNode, 0, len(g.Nodes)),
		Edges: make([]CytoscapeEdge, 0, len(g.Links)),
	}

	for _, n := range g.Nodes {
		cyNode := CytoscapeNode{Data: nodeData(n)}
		if n.ID == focalID {
			cyNode.Classes = "focal"
		}
		elements.Nodes = append(elements.Nodes, cyNode)
	}

	for _, l := range g.Links {
		elements.Edges = append(elements.Edges, CytoscapeEdge{
			Data: CytoscapeEdgeData{
				ID:        l.ID(),
				Source:    l.Source,
				Target:    l.Target,
				Distance:  l.Distance,
				Thickness: l.Thickness,
			},
		})
	}

	jsonBytes, err := json.Marshal(elements)
	if err != nil {
		return "", fmt.Errorf("marshaling Cytoscape elements to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

func nodeData(n Node) CytoscapeNodeData {
	d := CytoscapeNodeData{
		ID:    n.ID,
		Kind:  n.Kind,
		Label: n.Name,
		Score: n.Score,
	}
	switch {
	case n.Repo != nil:
		d.URL = n.Repo.URL
		d.Description = n.Repo.Description
		d.Language = n.Repo.PrimaryLanguage
		d.Stars = n.Repo.StargazerCount
	case n.Contributor != nil:
		d.URL = "https://github.com/" + n.Contributor.Login
		d.Name = n.Contributor.Name
		d.Company = n.Contributor.Company
		d.Location = n.Contributor.Location
		d.Followers = n.Contributor.FollowerCount
		d.Commits = n.Contributor.CommitCount
	}
	return d
}
