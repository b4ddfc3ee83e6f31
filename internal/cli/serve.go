package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"go-linkedin-harvester/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler and the dashboard API",
	Long: `Run as a daemon: sessions fire on the configured schedule and the
dashboard API (/api/status, /api/run, /api/files) listens on server.port.
Manual and scheduled runs never overlap.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fx.New(
			fx.Supply(cfg, log),
			app.Module(),
		).Run()
		return nil
	},
}

// Serve runs the serve command with the process arguments as its flags.
func Serve() error {
	rootCmd.SetArgs(append([]string{"serve"}, os.Args[1:]...))
	return rootCmd.Execute()
}
