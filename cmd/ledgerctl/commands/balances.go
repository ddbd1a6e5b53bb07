package commands

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sebuszqo/FinanceLedger/internal/finance/application"
	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	"github.com/sebuszqo/FinanceLedger/internal/finance/infrastructure"
	"github.com/spf13/cobra"
)

// ErrDriftFound makes verify exit non-zero so it can gate scripts.
var ErrDriftFound = errors.New("balance drift found")

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Inspect and repair materialized balances",
}

var balancesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every materialized balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbService, _, logger, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer dbService.Close()

		ledger := application.NewLedgerService(infrastructure.NewLedgerRepository(dbService.DB, logger), logger)
		balances, err := ledger.ListBalances(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), balances)
		}
		printBalances(cmd.OutOrStdout(), balances)
		return nil
	},
}

var balancesVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare every balance with the sum of its transactions",
	Long: `Compare every materialized balance with the sum of its transaction
contributions. Nothing is changed. The command fails when any account drifts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbService, _, logger, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer dbService.Close()

		ledger := application.NewLedgerService(infrastructure.NewLedgerRepository(dbService.DB, logger), logger)
		drifts, err := ledger.VerifyBalances(cmd.Context())
		if err != nil {
			return err
		}
		if err := reportDrifts(cmd.OutOrStdout(), drifts, "consistent"); err != nil {
			return err
		}
		if len(drifts) > 0 {
			return ErrDriftFound
		}
		return nil
	},
}

var balancesRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute every balance from the stored transactions",
	Long: `Recompute every balance from the stored transactions and overwrite the
materialized values. Ledger writes are blocked while the rebuild runs. The
drift that was repaired is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbService, _, logger, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer dbService.Close()

		ledger := application.NewLedgerService(infrastructure.NewLedgerRepository(dbService.DB, logger), logger)
		repaired, err := ledger.RebuildBalances(cmd.Context())
		if err != nil {
			return err
		}
		return reportDrifts(cmd.OutOrStdout(), repaired, "nothing to repair")
	},
}

func reportDrifts(w io.Writer, drifts []domain.BalanceDrift, cleanMessage string) error {
	if jsonOutput {
		if drifts == nil {
			drifts = []domain.BalanceDrift{}
		}
		return writeJSON(w, map[string]interface{}{"consistent": len(drifts) == 0, "drifts": drifts})
	}
	if len(drifts) == 0 {
		fmt.Fprintln(w, cleanMessage)
		return nil
	}
	printDrifts(w, drifts)
	return nil
}

func printDrifts(w io.Writer, drifts []domain.BalanceDrift) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tEXPECTED\tACTUAL\tDIFFERENCE")
	for _, drift := range drifts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			drift.AccountID,
			drift.Expected.StringFixed(2),
			drift.Actual.StringFixed(2),
			drift.Difference.StringFixed(2))
	}
	tw.Flush()
}

func printBalances(w io.Writer, balances []domain.AccountBalance) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tACCOUNT\tVALUE\tUPDATED")
	for _, balance := range balances {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			balance.Account.ID,
			balance.Account.Name,
			balance.Value.StringFixed(2),
			balance.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	tw.Flush()
}

func init() {
	balancesCmd.AddCommand(balancesListCmd)
	balancesCmd.AddCommand(balancesVerifyCmd)
	balancesCmd.AddCommand(balancesRebuildCmd)
	rootCmd.AddCommand(balancesCmd)
}
