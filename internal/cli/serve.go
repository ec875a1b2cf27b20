package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelgraph/internal/server"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project API over HTTP",
		Long: `Serve the project API over HTTP.

Routes:
  GET    /v1/projects
  GET    /v1/projects/{name}
  GET    /v1/projects/{name}/entities/{id}
  DELETE /v1/projects/{name}/entities
  POST   /v1/projects/{name}/closure
  POST   /v1/projects/{name}/diagrams/{id}/duplicate
  GET    /v1/projects/{name}/diagrams/{id}/export?format=svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if listen == "" {
				listen = cfg.Server.Listen
			}
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			return server.New(runner, loggerFromContext(cmd.Context())).ListenAndServe(cmd.Context(), listen)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default from config, "+defaultListen+")")
	return cmd
}
