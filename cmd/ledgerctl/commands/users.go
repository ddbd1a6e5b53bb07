package commands

import (
	"fmt"
	"time"

	"github.com/sebuszqo/FinanceLedger/internal/auth"
	"github.com/sebuszqo/FinanceLedger/internal/user"
	"github.com/spf13/cobra"
)

var (
	newUser  user.User
	tokenTTL time.Duration
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage ledger users",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Long: `Create a user that can record transactions.

Examples:
  ledgerctl users create --login anna --email anna@example.com
  ledgerctl users create --login audit --email audit@example.com --view-all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbService, _, _, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer dbService.Close()

		created := newUser
		if err := user.NewUserService(user.NewUserRepository(dbService.DB)).CreateUser(cmd.Context(), &created); err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), created)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", created.Login, created.ID)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue an access token for an existing user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbService, cfg, _, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer dbService.Close()

		found, err := user.NewUserService(user.NewUserRepository(dbService.DB)).GetUserByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		jwtManager, err := auth.NewJWTManager(cfg.JWTSecret)
		if err != nil {
			return err
		}
		token, err := jwtManager.GenerateAccessJWT(found.ID, tokenTTL)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"access_token": token,
				"expires_in":   int(tokenTTL.Seconds()),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	usersCreateCmd.Flags().StringVar(&newUser.Login, "login", "", "Login name")
	usersCreateCmd.Flags().StringVar(&newUser.Email, "email", "", "Email address")
	usersCreateCmd.Flags().StringVar(&newUser.FirstName, "first-name", "", "First name")
	usersCreateCmd.Flags().StringVar(&newUser.LastName, "last-name", "", "Last name")
	usersCreateCmd.Flags().BoolVar(&newUser.CanViewAll, "view-all", false, "Allow the user to see and edit every transaction")
	usersCreateCmd.MarkFlagRequired("login")
	usersCreateCmd.MarkFlagRequired("email")

	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", auth.DefaultAccessTokenDuration, "Token lifetime")

	usersCmd.AddCommand(usersCreateCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(tokenCmd)
}
