package rest

import (
	"errors"
	"net/http"

	"github.com/mars-protocol/v1-core-sub001/core"
	"github.com/mars-protocol/v1-core-sub001/handler/render"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(
	marketStore core.IMarketStore,
	marketService core.IMarketService,
	accountService core.IAccountService,
	ledger core.ILedgerService,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/markets/all", allMarketsHandler(marketStore, marketService, ledger))
	router.Get("/markets/{symbol}", marketHandler(marketStore, marketService, ledger))
	router.Get("/users/{user_id}/position", positionHandler(accountService))
	router.Get("/liquidations", liquidationsHandler(accountService))

	return router
}
