package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go-linkedin-harvester/internal/app"
	"go-linkedin-harvester/internal/pipeline"
)

var (
	runKeywords string
	runLocation string
	runLimit    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scrape session now",
	Long: `Run one scrape session and exit.

Only postings never exported before are written. The session exits
non-zero when scraping or exporting fails; finding nothing new is not
an error.

Examples:
  linkedin-harvester run
  linkedin-harvester run --keywords "golang developer" --location Pune --limit 20`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runKeywords, "keywords", "k", "", "search only these keywords instead of the configured variants")
	runCmd.Flags().StringVarP(&runLocation, "location", "l", "", "override the configured location")
	runCmd.Flags().IntVarP(&runLimit, "limit", "n", 0, "override results per session")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	archive, closeArchive := app.OpenArchive(ctx, cfg, log)
	defer closeArchive()

	store := app.ProvideStore(cfg, log)
	session, err := app.ProvideSession(cfg, store, app.ProvideScraper(cfg, log), app.ProvideExporter(cfg),
		app.ProvideNotifier(cfg, log), archive, log)
	if err != nil {
		return err
	}

	res, err := session.Run(ctx, pipeline.Override{
		Keywords: runKeywords,
		Location: runLocation,
		Limit:    runLimit,
		Trigger:  pipeline.TriggerCLI,
	})
	if err != nil {
		return fmt.Errorf("session %s: %w", res.SessionID, err)
	}

	if res.Count == 0 {
		fmt.Println("No new jobs found.")
		return nil
	}
	fmt.Printf("Saved %d new jobs to %s\n", res.Count, res.Path)
	return nil
}
