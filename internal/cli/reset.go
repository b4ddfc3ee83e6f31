package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"go-linkedin-harvester/internal/app"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget every posting seen so far",
	Long: `Delete the seen-jobs store. The next session may export postings
that were already exported before.

Requires confirmation unless --force is used.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "skip confirmation")
}

func runReset(cmd *cobra.Command, args []string) error {
	store := app.ProvideStore(cfg, log)

	if !resetForce {
		fmt.Printf("About to delete %s\n", store.Path())
		fmt.Print("\nContinue? [y/N]: ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := store.Reset(); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	fmt.Println("Seen jobs cleared.")
	return nil
}
