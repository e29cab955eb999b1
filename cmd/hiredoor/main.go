// Package main provides the entry point for the hiredoor command line client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/hiredoor/internal/config"
)

var (
	cfgFile string
	v       = config.NewViper()
)

var rootCmd = &cobra.Command{
	Use:   "hiredoor",
	Short: "Find the people behind a job posting and reach out to them",
	Long: `hiredoor turns a job posting URL into a list of people at the hiring company,
drafts outreach emails to them and tracks every conversation.

Common workflows:

  Sign in:
    hiredoor login

  Search a job posting:
    hiredoor search https://boards.greenhouse.io/acme/jobs/123

  Draft an email to a contact from the last search:
    hiredoor draft ann@acme.com --generate

  Track the outreach:
    hiredoor track add ann@acme.com --status emailed
    hiredoor tracker list

Configuration:
  Settings are read from flags, HIREDOOR_* environment variables and
  $HOME/.hiredoor.yaml (or --config):
    HIREDOOR_API_URL          Backend URL (default: http://localhost:3030)
    HIREDOOR_DATA_DIR         Local data directory (default: $HOME/.hiredoor)
    HIREDOOR_AUTH_CLIENT_ID   OAuth client ID used by login`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hiredoor.yaml)")

	rootCmd.PersistentFlags().String("api-url", "", "Backend URL")
	_ = v.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))

	rootCmd.PersistentFlags().String("data-dir", "", "Directory for local preferences")
	_ = v.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print detailed debug information")
	_ = v.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
