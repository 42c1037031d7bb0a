package cmd

import (
	"sync"

	"github.com/mars-protocol/v1-core-sub001/worker"
	"github.com/mars-protocol/v1-core-sub001/worker/interest"
	"github.com/mars-protocol/v1-core-sub001/worker/priceoracle"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "run red bank job workers",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		propertyStore := providePropertyStore(database)
		marketStore := provideMarketStore(database)
		priceStore := providePriceStore(database)
		ledgerService := provideLedgerService(database)

		priceService := providePriceService(priceStore)
		marketService := provideMarketService(database, marketStore, ledgerService)

		workers := []worker.Worker{
			interest.New(provideConfig(), database, marketStore, marketService),
			priceoracle.New(provideConfig(), database, propertyStore, marketStore, priceStore, priceService),
		}

		wg := sync.WaitGroup{}
		for _, w := range workers {
			wg.Add(1)

			go func(worker worker.Worker) {
				defer wg.Done()
				worker.Run(ctx)
			}(w)
		}

		wg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
