package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go-linkedin-harvester/internal/app"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many postings have been seen",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	store := app.ProvideStore(cfg, log)
	st := store.Stats()

	fmt.Printf("Store:              %s\n", store.Path())
	fmt.Printf("Job IDs:            %d\n", st.JobIDs)
	fmt.Printf("Links:              %d\n", st.Links)
	fmt.Printf("Title+company keys: %d\n", st.TitleCompanyKeys)
	if !st.LastUpdated.IsZero() {
		fmt.Printf("Last updated:       %s\n", st.LastUpdated.Local().Format(time.RFC1123))
	}
	return nil
}
