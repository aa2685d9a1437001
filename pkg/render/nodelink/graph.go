package nodelink

import (
	"cmp"
	"slices"

	"github.com/matzehuels/mcbuilder/pkg/catalog"
	"github.com/matzehuels/mcbuilder/pkg/pack"
)

// Node is one box in the diagram.
type Node struct {
	ID       string // pack.File key, e.g. "curseforge:238222"
	Name     string // project name, empty until fetched
	FileName string
	Scope    pack.Scope
	Missing  bool // required by an entry but absent from the manifest
}

// Edge points from a dependent to its dependency.
type Edge struct {
	From, To string
}

// Graph is the dependency graph of a manifest.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// FromManifest builds the graph of required dependencies between the
// entries of m. Entries must be fetched; unfetched entries appear as nodes
// without outgoing edges.
func FromManifest(m *pack.Manifest) *Graph {
	g := &Graph{}
	present := make(map[string]bool)
	for _, f := range m.Files() {
		present[f.Key()] = true
	}

	missing := make(map[string]bool)
	for _, f := range m.Files() {
		node := Node{ID: f.Key(), FileName: f.Entry().Name, Scope: f.Scope()}
		if p, err := f.Project(); err == nil {
			node.Name = p.Name
		}
		g.Nodes = append(g.Nodes, node)

		deps, err := f.Dependencies(catalog.DependencyRequired)
		if err != nil {
			continue
		}
		for _, d := range deps {
			g.Edges = append(g.Edges, Edge{From: f.Key(), To: d.Key()})
			if !present[d.Key()] && !missing[d.Key()] {
				missing[d.Key()] = true
				g.Nodes = append(g.Nodes, Node{ID: d.Key(), Name: d.Ref().String(), Missing: true})
			}
		}
	}

	slices.SortFunc(g.Nodes, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(g.Edges, func(a, b Edge) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.To, b.To))
	})
	return g
}

// Missing returns the keys of required dependencies absent from the manifest.
func (g *Graph) Missing() []string {
	var keys []string
	for _, n := range g.Nodes {
		if n.Missing {
			keys = append(keys, n.ID)
		}
	}
	return keys
}
