package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/accounts"
	"github.com/tallybook-dev/tallybook/internal/model"
)

func newCompanyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Manage companies",
	}
	cmd.AddCommand(newCompanyCreateCommand())
	cmd.AddCommand(newCompanyListCommand())
	cmd.AddCommand(newCompanyDeleteCommand())
	cmd.AddCommand(newCompanyResyncCommand())
	cmd.AddCommand(newCompanyBackupCommand())
	cmd.AddCommand(newCompanyRestoreCommand())
	return cmd
}

func newCompanyCreateCommand() *cobra.Command {
	var companyType, city, state string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a company with the default chart of accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := loadContext(cmd)
			if err != nil {
				return err
			}

			meta := model.CompanyMeta{
				Name:     args[0],
				Type:     companyType,
				Currency: cfg.Currency,
				City:     city,
				State:    state,
			}
			seed := map[string]any{
				"accounts":        accounts.DefaultChart(),
				"journal_entries": []model.JournalEntry{},
				"sequences":       map[string]int{},
			}
			if err := st.CreateCompany(meta, seed); err != nil {
				return err
			}
			snapshot(cfg, "company created: "+meta.Name)
			cmd.Printf("Created company %q with %d default accounts\n", meta.Name, len(accounts.DefaultChart()))
			return nil
		},
	}

	cmd.Flags().StringVar(&companyType, "type", "", "company type")
	cmd.Flags().StringVar(&city, "city", "", "city")
	cmd.Flags().StringVar(&state, "state", "", "state")
	return cmd
}

func newCompanyListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List companies in the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			idx, err := st.Companies()
			if err != nil {
				return err
			}

			names := make([]string, 0, len(idx))
			for name := range idx {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				meta := idx[name]
				cmd.Printf("%-30s %-20s %s\n", name, meta.Type, meta.Status)
			}
			cmd.Printf("%d companies\n", len(names))
			return nil
		},
	}
}

func newCompanyDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a company and all its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			if err := st.DeleteCompany(args[0]); err != nil {
				return err
			}
			snapshot(cfg, "company deleted: "+args[0])
			cmd.Printf("Deleted company %q\n", args[0])
			return nil
		},
	}
}

func newCompanyResyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resync",
		Short: "Rebuild the company index from per-company metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			if err := st.ResyncIndex(); err != nil {
				return err
			}
			idx, err := st.Companies()
			if err != nil {
				return err
			}
			cmd.Printf("Index resynced: %d companies\n", len(idx))
			return nil
		},
	}
}

func newCompanyBackupCommand() *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "backup NAME",
		Short: "Zip a company's data directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			zipPath, err := st.Backup(args[0], dest)
			if err != nil {
				return err
			}
			cmd.Printf("Backed up %q to %s\n", args[0], zipPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "backups", "destination directory for the archive")
	return cmd
}

func newCompanyRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore ARCHIVE",
		Short: "Restore a company from a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			if err := st.Restore(args[0]); err != nil {
				return err
			}
			snapshot(cfg, "company restored from "+args[0])
			cmd.Printf("Restored %s\n", args[0])
			return nil
		},
	}
}

// requireCompany fetches the shared --company flag.
func requireCompany(cmd *cobra.Command) (string, error) {
	company, _ := cmd.Flags().GetString("company")
	if company == "" {
		return "", fmt.Errorf("--company is required")
	}
	return company, nil
}
