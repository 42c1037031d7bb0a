package rest

import (
	"net/http"
	"time"

	"github.com/mars-protocol/v1-core-sub001/core"
	"github.com/mars-protocol/v1-core-sub001/handler/render"

	"github.com/go-chi/chi"
	"github.com/spf13/cast"
)

func positionHandler(accountSrv core.IAccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := chi.URLParam(r, "user_id")
		position, e := accountSrv.CalculateUserPosition(ctx, userID, time.Now())
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		render.JSON(w, position)
	}
}

func liquidationsHandler(accountSrv core.IAccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		positions, e := accountSrv.LiquidatableUsers(ctx, time.Now())
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		if limit := cast.ToInt(r.URL.Query().Get("limit")); limit > 0 && limit < len(positions) {
			positions = positions[:limit]
		}

		render.JSON(w, positions)
	}
}
