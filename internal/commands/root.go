// Package commands wires the bookkeeping core into a cobra CLI. The
// CLI is a thin consumer: it parses flags, calls the core, and prints
// results; all business rules live in the core packages.
package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/buildinfo"
	"github.com/tallybook-dev/tallybook/internal/config"
	"github.com/tallybook-dev/tallybook/internal/gitops"
	"github.com/tallybook-dev/tallybook/internal/store"
)

const dateFormat = "2006-01-02"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tallybook",
		Short:   "Multi-company double-entry bookkeeping",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "tallybook.yaml", "path to tallybook.yaml")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newCompanyCommand())
	rootCmd.AddCommand(newAccountCommand())
	rootCmd.AddCommand(newPostCommand())
	rootCmd.AddCommand(newReverseCommand())
	rootCmd.AddCommand(newLedgerCommand())
	rootCmd.AddCommand(newTrialBalanceCommand())
	rootCmd.AddCommand(newFiscalCommand())

	return rootCmd
}

// loadContext resolves the config file and opens the store. A missing
// config file falls back to defaults so read commands work before
// `tallybook init` has run.
func loadContext(cmd *cobra.Command) (*config.Config, *store.Store, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	st, err := store.Open(cfg.DataDir, log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, st, nil
}

// snapshot commits the data directory when snapshots are enabled.
func snapshot(cfg *config.Config, message string) {
	if _, err := gitops.Snapshot(cfg.DataDir, message, cfg.Git.AuthorName, cfg.Git.AuthorEmail, cfg.Git.Snapshot); err != nil {
		fmt.Fprintf(os.Stderr, "warning: snapshot failed: %v\n", err)
	}
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}
