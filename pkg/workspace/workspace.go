// Package workspace runs project operations against a store.
//
// The CLI and the API server both go through a [Runner], which loads a
// project from its [store.Store], applies one operation and saves the
// result. Derived artifacts (summaries, exports) are cached by the content
// hash of the stored document.
//
// # Usage
//
//	r := workspace.NewRunner(st, c, nil, logger)
//	sum, err := r.Inspect(ctx, "shop")
//	copy, err := r.Duplicate(ctx, "shop", diagramID, false)
//	svg, err := r.Export(ctx, "shop", diagramID, workspace.ExportOptions{Format: "svg"})
//
// Mutating operations on the same project are serialized within one Runner.
// Separate processes writing the same project are not coordinated.
package workspace

import (
	"fmt"
	"slices"
	"strings"
)

// Export formats.
const (
	FormatDOT      = "dot"
	FormatSVG      = "svg"
	FormatPlantUML = "plantuml"
	FormatNQuads   = "nquads"
)

// Formats lists the export formats in display order.
var Formats = []string{FormatDOT, FormatSVG, FormatPlantUML, FormatNQuads}

// ValidateFormat checks that format is a known export format.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}
