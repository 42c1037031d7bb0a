package cmd

import (
	"github.com/spf13/cobra"
)

// admin command toggling the credit line flag on a user's debt
var creditLineCmd = &cobra.Command{
	Use:     "credit-line",
	Aliases: []string{"cl"},
	Short:   "mark a user's debt as uncollateralized or collateralized",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		marketStore := provideMarketStore(database)
		userStore := provideUserStore(database)
		debtStore := provideDebtStore(database)
		priceStore := providePriceStore(database)
		ledgerService := provideLedgerService(database)

		priceService := providePriceService(priceStore)
		marketService := provideMarketService(database, marketStore, ledgerService)
		accountService := provideAccountService(marketStore, debtStore, userStore, ledgerService, priceService)
		bankService := provideBankService(database, marketStore, userStore, debtStore, ledgerService, marketService, accountService, priceService)

		operator, _ := cmd.Flags().GetString("operator")
		userID, _ := cmd.Flags().GetString("user")
		assetID, _ := cmd.Flags().GetString("asset")
		flag, _ := cmd.Flags().GetBool("enable")

		if err := bankService.SetUncollateralized(ctx, operator, userID, assetID, flag); err != nil {
			cmd.PrintErrln("set credit line error:", err)
			return
		}

		cmd.Println("done")
	},
}

func init() {
	creditLineCmd.Flags().String("operator", "", "operator user id, must be an admin")
	creditLineCmd.Flags().String("user", "", "borrower user id")
	creditLineCmd.Flags().String("asset", "", "debt asset id")
	creditLineCmd.Flags().Bool("enable", true, "enable or disable the credit line")

	rootCmd.AddCommand(creditLineCmd)
}
