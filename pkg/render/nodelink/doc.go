// Package nodelink renders a pack's dependency graph as a node-link diagram.
//
// # Overview
//
// Every manifest entry becomes a box, and every required dependency an
// arrow from the dependent to its dependency. Client-only and server-only
// entries are tinted, and a required dependency that the manifest does not
// carry is drawn as a dashed node so that gaps in the closure stand out.
//
// # Usage
//
//	g := nodelink.FromManifest(m)
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering. No external tools are required.
package nodelink
