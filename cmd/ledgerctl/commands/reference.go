package commands

import (
	"fmt"
	"strconv"

	"github.com/sebuszqo/FinanceLedger/internal/finance/application"
	"github.com/sebuszqo/FinanceLedger/internal/finance/infrastructure"
	"github.com/spf13/cobra"
)

var accountIcon string

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage accounts",
}

var accountsCreateCmd = &cobra.Command{
	Use:   "create <name> <abbreviation>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbService, _, _, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer dbService.Close()

		var icon *string
		if accountIcon != "" {
			icon = &accountIcon
		}
		account, err := application.NewAccountService(infrastructure.NewAccountRepository(dbService.DB)).
			CreateAccount(cmd.Context(), args[0], args[1], icon)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), account)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created account %d %s\n", account.ID, account.Name)
		return nil
	},
}

var accountsDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Hide an account from listings; its balance and history are kept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accountID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid account ID %q", args[0])
		}
		dbService, _, _, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer dbService.Close()

		return application.NewAccountService(infrastructure.NewAccountRepository(dbService.DB)).
			DeactivateAccount(cmd.Context(), accountID)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage categories",
}

var categoriesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbService, _, _, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer dbService.Close()

		category, err := application.NewCategoryService(infrastructure.NewCategoryRepository(dbService.DB)).
			CreateCategory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), category)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created category %d %s\n", category.ID, category.Name)
		return nil
	},
}

var categoriesDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Hide a category from listings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		categoryID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid category ID %q", args[0])
		}
		dbService, _, _, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer dbService.Close()

		return application.NewCategoryService(infrastructure.NewCategoryRepository(dbService.DB)).
			DeactivateCategory(cmd.Context(), categoryID)
	},
}

func init() {
	accountsCreateCmd.Flags().StringVar(&accountIcon, "icon", "", "Icon path")

	accountsCmd.AddCommand(accountsCreateCmd)
	accountsCmd.AddCommand(accountsDeactivateCmd)
	categoriesCmd.AddCommand(categoriesCreateCmd)
	categoriesCmd.AddCommand(categoriesDeactivateCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(categoriesCmd)
}
