package cmd

import (
	"strings"

	"github.com/mars-protocol/v1-core-sub001/core"
	"github.com/mars-protocol/v1-core-sub001/pkg/number"

	"github.com/fox-one/pkg/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var addMarketCmd = &cobra.Command{
	Use:     "add-market",
	Aliases: []string{"am"},
	Short:   "list a new market",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		marketStore := provideMarketStore(database)
		ledgerService := provideLedgerService(database)
		marketService := provideMarketService(database, marketStore, ledgerService)

		operator, _ := cmd.Flags().GetString("operator")

		symbol, e := cmd.Flags().GetString("symbol")
		if e != nil || symbol == "" {
			panic("invalid symbol")
		}
		assetID, e := cmd.Flags().GetString("asset")
		if e != nil || assetID == "" {
			panic("invalid asset id")
		}
		if _, e := uuid.FromString(assetID); e != nil {
			panic("asset id is not a uuid")
		}
		ctokenAssetID, e := cmd.Flags().GetString("ctoken")
		if e != nil || ctokenAssetID == "" {
			panic("invalid ctoken asset id")
		}
		if _, e := uuid.FromString(ctokenAssetID); e != nil {
			panic("ctoken asset id is not a uuid")
		}

		market := core.Market{
			Symbol:            strings.ToUpper(symbol),
			AssetID:           assetID,
			CTokenAssetID:     ctokenAssetID,
			Active:            true,
			DepositEnabled:    true,
			BorrowEnabled:     true,
			RateStrategy:      core.InterestRateStrategyType(flagString(cmd, "strategy")),
			ReserveFactor:     number.Decimal(flagString(cmd, "rf")),
			MaxLoanToValue:    number.Decimal(flagString(cmd, "ltv")),
			MaintenanceMargin: number.Decimal(flagString(cmd, "mm")),
			LiquidationBonus:  number.Decimal(flagString(cmd, "bonus")),
			CloseFactor:       number.Decimal(flagString(cmd, "cf")),

			OptimalUtilizationRate: number.Decimal(flagString(cmd, "optimal")),

			MinBorrowRate:           number.Decimal(flagString(cmd, "min-rate")),
			MaxBorrowRate:           number.Decimal(flagString(cmd, "max-rate")),
			KpAugmentationThreshold: number.Decimal(flagString(cmd, "kp-threshold")),
			Kp1:                     number.Decimal(flagString(cmd, "kp1")),
			Kp2:                     number.Decimal(flagString(cmd, "kp2")),

			Base:   number.Decimal(flagString(cmd, "base")),
			Slope1: number.Decimal(flagString(cmd, "slope1")),
			Slope2: number.Decimal(flagString(cmd, "slope2")),
		}

		if err := marketService.CreateMarket(ctx, operator, &market); err != nil {
			cmd.PrintErrln("create market error:", err)
			return
		}

		cmd.Println("market", market.Symbol, "listed at position", market.Position)
	},
}

var updateMarketCmd = &cobra.Command{
	Use:     "update-market",
	Aliases: []string{"um"},
	Short:   "update market risk or strategy params",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		marketStore := provideMarketStore(database)
		ledgerService := provideLedgerService(database)
		marketService := provideMarketService(database, marketStore, ledgerService)

		operator, _ := cmd.Flags().GetString("operator")

		symbol, e := cmd.Flags().GetString("symbol")
		if e != nil || symbol == "" {
			panic("invalid symbol")
		}

		market, err := marketStore.FindBySymbol(ctx, strings.ToUpper(symbol))
		if err != nil {
			cmd.PrintErrln("find market error:", err)
			return
		}

		fields := map[string]*decimal.Decimal{
			"rf":           &market.ReserveFactor,
			"ltv":          &market.MaxLoanToValue,
			"mm":           &market.MaintenanceMargin,
			"bonus":        &market.LiquidationBonus,
			"cf":           &market.CloseFactor,
			"optimal":      &market.OptimalUtilizationRate,
			"min-rate":     &market.MinBorrowRate,
			"max-rate":     &market.MaxBorrowRate,
			"kp-threshold": &market.KpAugmentationThreshold,
			"kp1":          &market.Kp1,
			"kp2":          &market.Kp2,
			"base":         &market.Base,
			"slope1":       &market.Slope1,
			"slope2":       &market.Slope2,
		}
		for name, field := range fields {
			if cmd.Flags().Changed(name) {
				*field = number.Decimal(flagString(cmd, name))
			}
		}
		if cmd.Flags().Changed("strategy") {
			market.RateStrategy = core.InterestRateStrategyType(flagString(cmd, "strategy"))
		}
		if cmd.Flags().Changed("active") {
			market.Active, _ = cmd.Flags().GetBool("active")
		}
		if cmd.Flags().Changed("deposit") {
			market.DepositEnabled, _ = cmd.Flags().GetBool("deposit")
		}
		if cmd.Flags().Changed("borrow") {
			market.BorrowEnabled, _ = cmd.Flags().GetBool("borrow")
		}

		if err := marketService.UpdateMarket(ctx, operator, market); err != nil {
			cmd.PrintErrln("update market error:", err)
			return
		}

		cmd.Println("market", market.Symbol, "updated")
	},
}

var listMarketsCmd = &cobra.Command{
	Use:     "markets",
	Aliases: []string{"lm"},
	Short:   "list all markets",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		marketStore := provideMarketStore(database)
		markets, err := marketStore.All(ctx)
		if err != nil {
			cmd.PrintErrln("fetch markets error:", err)
			return
		}

		for _, m := range markets {
			cmd.Println(m.Position, m.Symbol, m.AssetID,
				"borrow_rate:", m.BorrowRate,
				"liquidity_rate:", m.LiquidityRate,
				"utilization:", m.UtilizationRate)
		}
	},
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func init() {
	addMarketCmd.Flags().String("operator", "", "operator user id, must be an admin")
	addMarketCmd.Flags().String("symbol", "", "market symbol")
	addMarketCmd.Flags().String("asset", "", "underlying asset id")
	addMarketCmd.Flags().String("ctoken", "", "collateral share asset id")
	addMarketCmd.Flags().String("strategy", string(core.InterestRateStrategyLinear), "interest rate strategy: dynamic or linear")
	addMarketCmd.Flags().String("rf", "0", "reserve factor")
	addMarketCmd.Flags().String("ltv", "0", "max loan to value")
	addMarketCmd.Flags().String("mm", "0", "maintenance margin")
	addMarketCmd.Flags().String("bonus", "0", "liquidation bonus")
	addMarketCmd.Flags().String("cf", "0", "close factor")
	addMarketCmd.Flags().String("optimal", "0", "optimal utilization rate")
	addMarketCmd.Flags().String("min-rate", "0", "dynamic min borrow rate")
	addMarketCmd.Flags().String("max-rate", "0", "dynamic max borrow rate")
	addMarketCmd.Flags().String("kp-threshold", "0", "dynamic kp augmentation threshold")
	addMarketCmd.Flags().String("kp1", "0", "dynamic kp1")
	addMarketCmd.Flags().String("kp2", "0", "dynamic kp2")
	addMarketCmd.Flags().String("base", "0", "linear base rate")
	addMarketCmd.Flags().String("slope1", "0", "linear slope below optimal")
	addMarketCmd.Flags().String("slope2", "0", "linear slope above optimal")

	updateMarketCmd.Flags().String("operator", "", "operator user id, must be an admin")
	updateMarketCmd.Flags().String("symbol", "", "market symbol")
	updateMarketCmd.Flags().String("strategy", "", "interest rate strategy: dynamic or linear")
	updateMarketCmd.Flags().String("rf", "", "reserve factor")
	updateMarketCmd.Flags().String("ltv", "", "max loan to value")
	updateMarketCmd.Flags().String("mm", "", "maintenance margin")
	updateMarketCmd.Flags().String("bonus", "", "liquidation bonus")
	updateMarketCmd.Flags().String("cf", "", "close factor")
	updateMarketCmd.Flags().String("optimal", "", "optimal utilization rate")
	updateMarketCmd.Flags().String("min-rate", "", "dynamic min borrow rate")
	updateMarketCmd.Flags().String("max-rate", "", "dynamic max borrow rate")
	updateMarketCmd.Flags().String("kp-threshold", "", "dynamic kp augmentation threshold")
	updateMarketCmd.Flags().String("kp1", "", "dynamic kp1")
	updateMarketCmd.Flags().String("kp2", "", "dynamic kp2")
	updateMarketCmd.Flags().String("base", "", "linear base rate")
	updateMarketCmd.Flags().String("slope1", "", "linear slope below optimal")
	updateMarketCmd.Flags().String("slope2", "", "linear slope above optimal")
	updateMarketCmd.Flags().Bool("active", true, "market active")
	updateMarketCmd.Flags().Bool("deposit", true, "deposits enabled")
	updateMarketCmd.Flags().Bool("borrow", true, "borrows enabled")

	rootCmd.AddCommand(addMarketCmd)
	rootCmd.AddCommand(updateMarketCmd)
	rootCmd.AddCommand(listMarketsCmd)
}
