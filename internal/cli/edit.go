package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/project"
)

// closureCommand creates the "closure" command.
func (c *CLI) closureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "closure [project] [id]...",
		Short: "List everything deleting the given elements would remove",
		Long: `List everything deleting the given elements would remove.

Identifiers take the form model:<uuid> or view:<uuid>; a bare UUID names a
model element. The project is not modified.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			set, err := runner.Closure(cmd.Context(), args[0], ids)
			if err != nil {
				return err
			}
			for _, id := range set.Sorted() {
				fmt.Fprintln(cmd.OutOrStdout(), id.Tagged())
			}
			return nil
		},
	}
}

// deleteCommand creates the "delete" command.
func (c *CLI) deleteCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "delete [project] [id]...",
		Short: "Delete elements together with everything that depends on them",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			if dryRun {
				del, err := runner.PreviewDelete(cmd.Context(), args[0], ids)
				if err != nil {
					return err
				}
				printInfo("Would remove %d elements", len(del.IDs))
				for _, d := range del.Diagrams() {
					printDetail("would remove diagram %s", project.DiagramName(d))
				}
				return nil
			}

			prog := newProgress(loggerFromContext(cmd.Context()))
			del, err := runner.Delete(cmd.Context(), args[0], ids)
			if err != nil {
				return err
			}
			prog.done("Deleted elements", "project", args[0], "count", len(del.IDs))
			for _, d := range del.Diagrams() {
				printDetail("removed diagram %s", project.DiagramName(d))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only report what would be removed")
	return cmd
}

// duplicateCommand creates the "duplicate" command.
func (c *CLI) duplicateCommand() *cobra.Command {
	var shallow bool

	cmd := &cobra.Command{
		Use:   "duplicate [project] [diagram]",
		Short: "Copy a diagram",
		Long: `Copy a diagram and insert the copy after the original.

A deep copy (the default) also copies the presented model; a --shallow
copy presents the original model. The diagram may be given by UUID or by
name and is picked interactively when omitted.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			id, err := c.selectDiagram(cmd.Context(), runner, args[0], args[1:])
			if err != nil {
				return err
			}
			d, err := runner.Duplicate(cmd.Context(), args[0], id, shallow)
			if err != nil {
				return err
			}
			mode := "deep"
			if shallow {
				mode = "shallow"
			}
			printSuccess("Created %s copy %s", mode, StyleHighlight.Render(project.DiagramName(d)))
			printDetail("%s", d.ID())
			return nil
		},
	}

	cmd.Flags().BoolVar(&shallow, "shallow", false, "share the model with the original")
	return cmd
}

func parseIDs(args []string) ([]entity.ID, error) {
	ids := make([]entity.ID, 0, len(args))
	for _, a := range args {
		id, err := entity.ParseTagged(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
