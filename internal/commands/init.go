package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/config"
	"github.com/tallybook-dev/tallybook/internal/store"
)

func newInitCommand() *cobra.Command {
	var dataDir string
	var currency string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new Tallybook workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(cmd, absDir, dataDir, currency)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "data directory, relative to the workspace")
	cmd.Flags().StringVar(&currency, "currency", "INR", "default currency code")

	return cmd
}

func runInit(cmd *cobra.Command, dir, dataDir, currency string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating workspace: %w", err)
	}

	cfg := config.Default()
	cfg.DataDir = filepath.Join(dir, dataDir)
	cfg.Currency = currency
	if err := config.Save(filepath.Join(dir, "tallybook.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Prepare the data directory and empty company index.
	if _, err := store.Open(cfg.DataDir, nil); err != nil {
		return err
	}

	cmd.Printf("Initialized Tallybook workspace at %s\n", dir)
	return nil
}
