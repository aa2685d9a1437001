// Package render holds the visual renderers for pack dependency graphs.
//
// The [nodelink] subpackage draws a manifest's dependency graph as a
// Graphviz node-link diagram in DOT, SVG or PNG form.
package render
