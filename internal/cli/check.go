package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"go-linkedin-harvester/internal/browser"
	"go-linkedin-harvester/internal/database"
	"go-linkedin-harvester/internal/models"
	"go-linkedin-harvester/internal/scraper"
	"go-linkedin-harvester/internal/scraper/linkedin"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Diagnose config, cookies, browser and database",
}

var checkConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("🔧 Effective config (secrets masked):")
		masked := *cfg
		masked.Browser.LinkedInCookie = mask(masked.Browser.LinkedInCookie)
		masked.DatabaseURL = mask(masked.DatabaseURL)

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(masked)
	},
}

var checkCookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Show the LinkedIn cookies an authenticated search would use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("🍪 Checking cookies...")
		source := "LINKEDIN_COOKIE"
		cookies := browser.ParseCookieHeader(cfg.Browser.LinkedInCookie)
		if len(cookies) == 0 {
			source = linkedin.OptionsFromConfig(cfg).CookiesFile
			if source == "" {
				return fmt.Errorf("no LINKEDIN_COOKIE and no cookies_path configured")
			}
			var err error
			if cookies, err = browser.LoadCookies(source); err != nil {
				return fmt.Errorf("load cookies: %w", err)
			}
		}

		fmt.Printf("✅ Loaded %d cookies from %s\n", len(cookies), source)
		for _, c := range cookies {
			fmt.Printf("   %-20s domain=%s secure=%t\n", c.Name, c.Domain, c.Secure)
		}
		return nil
	},
}

var checkBrowserCmd = &cobra.Command{
	Use:   "browser",
	Short: "Open the first results page and count the job cards found",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		s := linkedin.NewLinkedInScraper(linkedin.OptionsFromConfig(cfg), browser.NewPlaywrightLauncher(log), nil, log)
		q := scraper.Query{
			Keywords:   cfg.Keywords,
			Location:   cfg.Location,
			TimePosted: cfg.TimePosted,
		}
		if queries := cfg.Queries(); len(queries) > 0 {
			q.Keywords = queries[0]
		}

		fmt.Printf("🌐 Probing %s\n", linkedin.SearchURL(q, 0))
		cards, err := s.Probe(ctx, q)
		if err != nil {
			return err
		}
		fmt.Printf("✅ %d job cards found\n", len(cards))
		for i, c := range cards {
			if i == 5 {
				fmt.Printf("   ... and %d more\n", len(cards)-i)
				break
			}
			fmt.Printf("   %s | %s | %s\n", c.Title, c.Company, c.Location)
		}
		return nil
	},
}

var checkJobID string

var checkDBCmd = &cobra.Command{
	Use:   "db",
	Short: "Connect to the archive database and list recent sessions",
	Long: `Connect to the archive database, create the schema if needed and list
the latest sessions. With --job, print the archived record of one LinkedIn job.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is not set")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		fmt.Println("Attempting to connect to PostgreSQL...")
		repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer repo.Close()
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		fmt.Println("✅ Connected, schema ready")

		if checkJobID != "" {
			job, err := repo.GetJob(ctx, checkJobID)
			if err != nil {
				return fmt.Errorf("job %s: %w", checkJobID, err)
			}
			printArchivedJob(cmd.OutOrStdout(), job)
			return nil
		}

		sessions, err := repo.RecentSessions(ctx, 10)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions archived yet.")
		}
		for _, s := range sessions {
			fmt.Printf("   %s  %-9s %-8s %3d jobs  %s\n",
				s.StartedAt.Local().Format("2006-01-02 15:04"), s.Status, s.Trigger, s.JobCount, s.Keywords)
		}
		return nil
	},
}

func printArchivedJob(w io.Writer, j *models.Job) {
	fmt.Fprintf(w, "   %s | %s | %s\n", j.Title, j.Company, j.Location)
	fmt.Fprintf(w, "   %s\n", j.URL)
	fmt.Fprintf(w, "   session %s, scraped %s, seniority %s, startup %t\n",
		j.SessionID, j.ScrapedAt.Local().Format("2006-01-02 15:04"), j.Seniority, j.IsLikelyStartup)
	if len(j.TechStack) > 0 {
		fmt.Fprintf(w, "   stack: %s\n", strings.Join(j.TechStack, ", "))
	}
}

func mask(secret string) string {
	if len(secret) <= 8 {
		if secret == "" {
			return ""
		}
		return "****"
	}
	return secret[:4] + "****"
}

func init() {
	checkCmd.AddCommand(checkConfigCmd)
	checkCmd.AddCommand(checkCookiesCmd)
	checkCmd.AddCommand(checkBrowserCmd)
	checkDBCmd.Flags().StringVar(&checkJobID, "job", "", "LinkedIn job id to read back from the archive")
	checkCmd.AddCommand(checkDBCmd)
}
