package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/views"
)

// Options configures DOT output.
type Options struct {
	// Detailed lists the non-empty attributes in node labels.
	Detailed bool
	// Views adds the view tree of the diagram.
	Views bool
}

type edge struct {
	from, to entity.ID
	label    string
	style    string
}

// ToDOT returns the Graphviz source for the diagram's model tree.
func ToDOT(d *views.Diagram, opts Options) string {
	d.RLock()
	model := d.Model()
	d.RUnlock()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []edge
	if model != nil {
		edges = writeTree(&buf, model, opts, "white")
	}
	if opts.Views {
		buf.WriteString("\n")
		edges = append(edges, writeTree(&buf, d, opts, "lightgrey")...)
	}

	buf.WriteString("\n")
	for _, e := range edges {
		attrs := []string{"style=" + e.style}
		if e.label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.label), "fontsize=10")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.from.Tagged(), e.to.Tagged(), strings.Join(attrs, ", "))
	}
	buf.WriteString("}\n")
	return buf.String()
}

// writeTree emits the nodes under root and returns the edges among them.
func writeTree(buf *bytes.Buffer, root entity.Node, opts Options, fill string) []edge {
	var edges []edge
	entity.Walk(root, func(n entity.Node, at entity.Address) bool {
		n.RLock()
		label := fmtLabel(n, opts.Detailed)
		var refs []edge
		if l, ok := n.(entity.Linker); ok {
			for _, f := range l.RefFields() {
				for _, t := range l.Refs(f.Name) {
					e := edge{from: n.ID(), to: t.ID(), label: f.Name, style: "dashed"}
					if _, isView := n.(views.View); isView && f.Name == "model" {
						e.label, e.style = "", "dotted"
					}
					refs = append(refs, e)
				}
			}
		}
		n.RUnlock()

		fmt.Fprintf(buf, "  %q [label=%q, fillcolor=%s];\n", n.ID().Tagged(), label, fill)
		if !at.Parent.IsZero() {
			edges = append(edges, edge{from: at.Parent, to: n.ID(), style: "solid"})
		}
		edges = append(edges, refs...)
		return true
	})
	return edges
}

// fmtLabel is the kind followed by the name, if any. The caller holds the
// node's read lock.
func fmtLabel(n entity.Node, detailed bool) string {
	kind := string(n.Kind())
	if _, short, ok := strings.Cut(kind, "."); ok {
		kind = short
	}
	attrs := n.Attrs()
	label := kind
	for _, key := range []string{"name", "iri", "content", "text"} {
		if s, ok := attrs[key].(string); ok && s != "" {
			label = fmt.Sprintf("%s\n%s", s, kind)
			break
		}
	}
	if !detailed {
		return label
	}

	var parts []string
	for _, k := range attrs.Keys() {
		switch v := attrs[k].(type) {
		case string:
			if v == "" {
				continue
			}
		case bool:
			if !v {
				continue
			}
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, attrs[k]))
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one that
// scales with its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
