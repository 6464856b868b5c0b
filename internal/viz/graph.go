package viz

import (
	"time"

	"github.com/matsen/collab/internal/entity"
	"github.com/matsen/collab/internal/rank"
)

// BuildRepoCentricGraph builds the graph around a focal repository: its
// contributors, linked with their commit counts, and each contributor's
// recent repositories. Repository scores are computed as of now.
func BuildRepoCentricGraph(contributors []entity.ContributorSummary, focal entity.RepoSummary, now time.Time) *Graph {
	b := newGraphBuilder(now)
	b.addNode(b.repoNode(focal))

	for _, c := range contributors {
		b.addNode(newContributorNode(c))
		b.addLink(Link{
			Source:    focal.NameWithOwner,
			Target:    c.Login,
			Distance:  FocalDistance,
			Thickness: c.CommitCount,
		})

		for _, r := range c.RecentRepos {
			b.addNode(b.repoNode(r))
			b.addLink(Link{Source: c.Login, Target: r.NameWithOwner, Distance: SecondaryDistance})
		}
	}

	return b.graph()
}

// BuildUserCentricGraph builds the graph around a focal contributor and the
// repositories they recently contributed to.
func BuildUserCentricGraph(recentRepos []entity.RepoSummary, focal entity.ContributorSummary, now time.Time) *Graph {
	b := newGraphBuilder(now)
	b.addNode(newContributorNode(focal))

	for _, r := range recentRepos {
		b.addNode(b.repoNode(r))
		b.addLink(Link{Source: focal.Login, Target: r.NameWithOwner, Distance: FocalDistance})
	}

	return b.graph()
}

// graphBuilder inserts nodes and links if absent, keeping first-insertion
// order so output is deterministic.
type graphBuilder struct {
	now       time.Time
	nodes     []Node
	links     []Link
	nodeIndex map[string]int
	linkIndex map[linkKey]int
}

// linkKey identifies a link by its endpoints.
type linkKey struct {
	source, target string
}

func newGraphBuilder(now time.Time) *graphBuilder {
	return &graphBuilder{
		now:       now,
		nodeIndex: make(map[string]int),
		linkIndex: make(map[linkKey]int),
	}
}

func (b *graphBuilder) addNode(n Node) {
	if _, ok := b.nodeIndex[n.ID]; ok {
		return
	}
	b.nodeIndex[n.ID] = len(b.nodes)
	b.nodes = append(b.nodes, n)
}

func (b *graphBuilder) addLink(l Link) {
	id := linkKey{l.Source, l.Target}
	if _, ok := b.linkIndex[id]; ok {
		return
	}
	b.linkIndex[id] = len(b.links)
	b.links = append(b.links, l)
}

func (b *graphBuilder) graph() *Graph {
	g := &Graph{Nodes: b.nodes, Links: b.links}
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Links == nil {
		g.Links = []Link{}
	}
	return g
}

// repoNode creates a node from a copy of the repository summary.
func (b *graphBuilder) repoNode(r entity.RepoSummary) Node {
	return Node{
		ID:    r.NameWithOwner,
		Kind:  NodeKindRepo,
		Name:  r.NameWithOwner,
		Repo:  &r,
		Score: rank.ScoreRepository(r, b.now),
	}
}

// newContributorNode creates a node from a copy of the contributor summary.
func newContributorNode(c entity.ContributorSummary) Node {
	return Node{
		ID:          c.Login,
		Kind:        NodeKindContributor,
		Name:        c.Login,
		Contributor: &c,
	}
}
