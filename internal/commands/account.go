package commands

import (
	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/accounts"
	"github.com/tallybook-dev/tallybook/internal/model"
)

func newAccountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage a company's chart of accounts",
	}
	cmd.PersistentFlags().String("company", "", "company name (required)")

	cmd.AddCommand(newAccountAddCommand())
	cmd.AddCommand(newAccountListCommand())
	cmd.AddCommand(newAccountRemoveCommand())
	cmd.AddCommand(newAccountRecomputeCommand())
	return cmd
}

func newAccountAddCommand() *cobra.Command {
	var name, acctType, parent string

	cmd := &cobra.Command{
		Use:   "add CODE",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			company, err := requireCompany(cmd)
			if err != nil {
				return err
			}

			reg := accounts.NewRegistry(st, company)
			if err := reg.Add(model.Account{
				Code:   args[0],
				Name:   name,
				Type:   model.AccountType(acctType),
				Parent: parent,
			}); err != nil {
				return err
			}
			cmd.Printf("Added account %s (%s)\n", args[0], name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&acctType, "type", "", "asset, liability, equity, revenue, or expense")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&parent, "parent", "", "parent account code")
	return cmd
}

func newAccountListCommand() *cobra.Command {
	var filterType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			company, err := requireCompany(cmd)
			if err != nil {
				return err
			}

			reg := accounts.NewRegistry(st, company)
			var accts []model.Account
			if filterType != "" {
				accts, err = reg.ByType(model.AccountType(filterType))
			} else {
				accts, err = reg.All()
			}
			if err != nil {
				return err
			}

			for _, a := range accts {
				cmd.Printf("%-8s %-30s %-10s %s\n", a.Code, a.Name, a.Type, a.Balance.StringFixed(2))
			}
			cmd.Printf("%d accounts\n", len(accts))
			return nil
		},
	}

	cmd.Flags().StringVar(&filterType, "type", "", "filter by account type")
	return cmd
}

func newAccountRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove CODE",
		Short: "Remove an unreferenced account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			company, err := requireCompany(cmd)
			if err != nil {
				return err
			}

			if err := accounts.NewRegistry(st, company).Remove(args[0]); err != nil {
				return err
			}
			cmd.Printf("Removed account %s\n", args[0])
			return nil
		},
	}
}

func newAccountRecomputeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute-balances",
		Short: "Rebuild the advisory balance cache from journal replay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			company, err := requireCompany(cmd)
			if err != nil {
				return err
			}

			if err := accounts.NewRegistry(st, company).RecomputeBalances(); err != nil {
				return err
			}
			cmd.Println("Balances recomputed")
			return nil
		},
	}
}
