package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modelgraph/pkg/workspace"
)

var formatExt = map[string]string{
	workspace.FormatDOT:      ".dot",
	workspace.FormatSVG:      ".svg",
	workspace.FormatPlantUML: ".puml",
	workspace.FormatNQuads:   ".nq",
}

var formatHelp = map[string]string{
	workspace.FormatDOT:      "Write the ownership and reference graph as Graphviz DOT",
	workspace.FormatSVG:      "Render the ownership and reference graph as SVG",
	workspace.FormatPlantUML: "Describe a UML class diagram in PlantUML",
	workspace.FormatNQuads:   "Write an RDF diagram as N-Quads",
}

// exportCommand creates the "export" command with one subcommand per format.
func (c *CLI) exportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a diagram",
	}
	for _, format := range workspace.Formats {
		cmd.AddCommand(c.exportFormatCommand(format))
	}
	return cmd
}

func (c *CLI) exportFormatCommand(format string) *cobra.Command {
	var output string
	opts := workspace.ExportOptions{Format: format}

	cmd := &cobra.Command{
		Use:   format + " [project] [diagram]",
		Short: formatHelp[format],
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), args[0], args[1:], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <diagram>"+formatExt[format]+", - for stdout)")
	if format == workspace.FormatDOT || format == workspace.FormatSVG {
		cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "add attributes to node labels")
		cmd.Flags().BoolVar(&opts.Views, "views", false, "include the view tree")
	}
	return cmd
}

func (c *CLI) runExport(ctx context.Context, name string, args []string, opts workspace.ExportOptions, output string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	id, err := c.selectDiagram(ctx, runner, name, args)
	if err != nil {
		return err
	}

	spin := startSpinner(ctx, fmt.Sprintf("Exporting %s...", opts.Format))
	out, err := runner.Export(ctx, name, id, opts)
	if err != nil {
		spin.Fail("Export failed")
		return err
	}
	spin.Stop()

	if output == "-" {
		_, err := os.Stdout.Write(out)
		return err
	}
	if output == "" {
		output = id.String() + formatExt[opts.Format]
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Exported %s", opts.Format)
	printFile(output)
	return nil
}
