// Package dot draws the structure of a diagram as a Graphviz graph.
//
// Every model node of the diagram becomes a Graphviz node. Ownership is
// drawn as solid edges from owner to child, references as dashed edges
// labelled with the field name. With [Options.Views] the view tree is drawn
// as well, with dotted edges from each view to the model node it presents.
//
// The output is meant for inspecting documents, not for presenting them:
// node positions stored in the views are ignored and Graphviz lays the
// graph out on its own.
//
//	src := dot.ToDOT(diagram, dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(ctx, src)
package dot
