package cmd

import (
	"github.com/spf13/cobra"

	"github.com/espcarve/espcarve/pkg/api"
	"github.com/espcarve/espcarve/pkg/nvs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the partition decode service",
	Long: `Run an HTTP service that decodes partition images on demand:
POST a raw partition image to /api/v1/nvs or /api/v1/mi and receive the
decoded records as JSON. Prometheus metrics are exposed at /metrics.

Example:
  espcarve serve --port 9350`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bind := cfg.Server.Bind
		if cmd.Flags().Changed("bind") {
			bind, _ = cmd.Flags().GetString("bind")
		}
		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		server := api.NewServer(api.ServerConfig{
			Bind: bind,
			Port: port,
			Options: nvs.Options{
				IncludeWritten: cfg.Records.IncludeWritten,
				IncludeErased:  cfg.Records.IncludeErased,
			},
		}, api.NewMetrics(), logger)

		return server.ListenAndServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("bind", "", "Address to bind (default from config)")
	serveCmd.Flags().Int("port", 0, "Port to listen on (default from config)")
}
