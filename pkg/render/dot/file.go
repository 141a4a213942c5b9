package dot

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/cloudsketch/cloudsketch/pkg/ioutil"
	"github.com/cloudsketch/cloudsketch/pkg/layout"
)

// File renders the diagram's node-and-edge view as graphviz DOT. Container
// nesting is dropped here; DOT is the input for the raster export where the
// relationship structure matters more than geography.
type File struct {
	FilenamePrefix string
	Diagram        *layout.Diagram
}

func (f *File) Path() string {
	return fmt.Sprintf("%sdiagram.gv", f.FilenamePrefix)
}

func (f *File) WriteTo(w io.Writer) (n int64, err error) {
	wh := ioutil.NewWriteToHelper(w, &n, &err)

	g, buildErr := f.graph()
	if buildErr != nil {
		wh.AddErr(buildErr)
		return
	}
	adj, adjErr := g.AdjacencyMap()
	if adjErr != nil {
		wh.AddErr(adjErr)
		return
	}

	wh.Write("digraph architecture {\n")
	wh.Write("  rankdir = TB\n")
	wh.Write("  node [fontsize=10]\n")

	ids := make([]string, 0, len(adj))
	for id := range adj {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		_, props, verr := g.VertexWithProperties(id)
		if verr != nil {
			wh.AddErr(verr)
			return
		}
		wh.Writef("  %q%s\n", id, attrString(props.Attributes))
	}
	for _, src := range ids {
		targets := make([]string, 0, len(adj[src]))
		for tgt := range adj[src] {
			targets = append(targets, tgt)
		}
		sort.Strings(targets)
		for _, tgt := range targets {
			e := adj[src][tgt]
			wh.Writef("  %q -> %q%s\n", src, tgt, attrString(e.Properties.Attributes))
		}
	}
	wh.Write("}\n")
	return
}

// graph lifts the diagram into a directed graph keyed by render id. Edges
// pointing at containers are skipped; DOT has no vertex for them.
func (f *File) graph() (graph.Graph[string, *layout.Node], error) {
	g := graph.New(func(n *layout.Node) string { return n.ID }, graph.Directed())

	var errs error
	for _, node := range f.Diagram.Nodes {
		err := g.AddVertex(node,
			graph.VertexAttribute("label", node.Label),
			graph.VertexAttribute("shape", "box"),
			graph.VertexAttribute("style", "rounded"),
		)
		if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			errs = errors.Join(errs, err)
		}
	}
	for _, e := range f.Diagram.Edges {
		opts := []func(*graph.EdgeProperties){
			graph.EdgeAttribute("color", e.Style.Color),
		}
		if e.Style.Dashed {
			opts = append(opts, graph.EdgeAttribute("style", "dashed"))
		} else if e.Style.Dotted {
			opts = append(opts, graph.EdgeAttribute("style", "dotted"))
		}
		if e.Style.Bold {
			opts = append(opts, graph.EdgeAttribute("penwidth", "2"))
		}
		if e.Label != "" {
			opts = append(opts, graph.EdgeAttribute("label", e.Label))
		}
		err := g.AddEdge(e.Source, e.Target, opts...)
		switch {
		case errors.Is(err, graph.ErrEdgeAlreadyExists):
		case errors.Is(err, graph.ErrVertexNotFound):
			// container endpoint, not drawable in DOT
		case err != nil:
			errs = errors.Join(errs, err)
		}
	}
	return g, errs
}
