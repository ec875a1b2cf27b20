package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modelgraph/pkg/notation"
	"github.com/matzehuels/modelgraph/pkg/project"
	"github.com/matzehuels/modelgraph/pkg/workspace"
)

// newCommand creates the "new" command.
func (c *CLI) newCommand() *cobra.Command {
	var notationName, diagramName string

	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Create a project with one empty diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			p, err := runner.Create(cmd.Context(), args[0], notationName, diagramName)
			if err != nil {
				return err
			}
			printSuccess("Created project %s", StyleHighlight.Render(p.Name))
			for _, d := range p.Diagrams() {
				printDetail("%s  %s", d.ID(), project.DiagramName(d))
			}
			printNextStep("Inspect it", appName+" inspect "+p.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&notationName, "notation", "n", "umlclass",
		"diagram notation: "+strings.Join(notation.Names(), ", "))
	cmd.Flags().StringVar(&diagramName, "diagram", "", "name of the first diagram")
	cmd.RegisterFlagCompletionFunc("notation", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return notation.Names(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// listCommand creates the "list" command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			infos, err := runner.Store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				printInfo("No projects")
				return nil
			}
			rows := make([][]string, len(infos))
			for i, info := range infos {
				rows[i] = []string{info.Name, formatSize(info.Size), formatRelativeTime(info.UpdatedAt)}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Project", "Size", "Updated"}, rows))
			return nil
		},
	}
}

// inspectCommand creates the "inspect" command.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [name]",
		Short: "Show the hierarchy, diagrams and record counts of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			s, err := runner.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

// importCommand creates the "import" command.
func (c *CLI) importCommand() *cobra.Command {
	var name string
	var force bool

	cmd := &cobra.Command{
		Use:   "import [file.toml]",
		Short: "Validate a project file and add it to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if name == "" {
				name = projectNameFromPath(args[0])
			}

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			if !force {
				if _, err := runner.Store.Load(cmd.Context(), name); err == nil {
					return fmt.Errorf("project %q exists (use --force to replace it)", name)
				}
			}
			p, err := runner.Decode(cmd.Context(), name, data)
			if err != nil {
				return err
			}
			p.Name = name
			if err := runner.Save(cmd.Context(), p); err != nil {
				return err
			}
			printSuccess("Imported %s as %s", args[0], StyleHighlight.Render(name))
			if n := len(p.Unreferenced); n > 0 {
				printWarning("Dropped %d unreferenced records", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "project name (default: file name)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing project")
	return cmd
}

// validateCommand creates the "validate" command.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file.toml]...",
		Short: "Check that project files decode",
		Long: `Check that project files decode.

Every record reachable from a diagram must resolve: references must name
existing records, kinds must be known and required attributes present.
Records no diagram reaches are reported but do not fail validation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			failed := 0
			for _, path := range args {
				s, err := validateFile(path)
				if err != nil {
					failed++
					printError("%s: %v", path, err)
					continue
				}
				printSuccess("%s", path)
				printCounts(s)
				if s.Unreferenced > 0 {
					printWarning("%d unreferenced records", s.Unreferenced)
				}
				for _, key := range s.IgnoredKeys {
					printWarning("unknown key %s", key)
				}
				logger.Debug("validated", "file", path, "diagrams", len(s.Diagrams))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files invalid", failed, len(args))
			}
			return nil
		},
	}
}

func validateFile(path string) (*workspace.Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := project.Unmarshal(data, notation.Registry())
	if err != nil {
		return nil, err
	}
	return workspace.Summarize(p)
}

// fmtCommand creates the "fmt" command.
func (c *CLI) fmtCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt [file.toml]",
		Short: "Rewrite a project file in canonical form",
		Long: `Rewrite a project file in canonical form.

Records are sorted by identifier and unreferenced records are dropped.
The result is printed unless --write is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return formatFile(cmd.Context(), args[0], write, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the file")
	return cmd
}

func formatFile(ctx context.Context, path string, write bool, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	p, err := project.Unmarshal(data, notation.Registry())
	if err != nil {
		return err
	}
	formatted, err := project.Marshal(p)
	if err != nil {
		return err
	}
	if !write {
		_, err := out.Write(formatted)
		return err
	}
	if string(formatted) == string(data) {
		return nil
	}
	if err := writeFileAtomic(path, formatted); err != nil {
		return err
	}
	loggerFromContext(ctx).Info("formatted", "file", path, "dropped", len(p.Unreferenced))
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func projectNameFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
