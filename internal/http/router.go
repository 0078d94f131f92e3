package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/budgetcal/internal/http/account"
	"github.com/MrJamesThe3rd/budgetcal/internal/http/balance"
	"github.com/MrJamesThe3rd/budgetcal/internal/http/item"
	"github.com/MrJamesThe3rd/budgetcal/internal/http/layer"
	"github.com/MrJamesThe3rd/budgetcal/internal/http/snapshot"
)

func New(
	itemsV1 *item.Handler,
	accountsV1 *account.Handler,
	layersV1 *layer.Handler,
	balancesV1 *balance.Handler,
	snapshotsV1 *snapshot.Handler,
	allowedOrigins []string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// The calendar client runs in the browser and holds the persistent copy
	// of the data, so it must be able to call us cross-origin.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			itemsV1.Routes(r)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			accountsV1.Routes(r)
		})

		r.Route("/layers", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			layersV1.Routes(r)
		})

		r.Route("/balances", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			balancesV1.Routes(r)
		})

		// The snapshot restore-file endpoint takes multipart uploads, so no
		// content-type restriction here.
		r.Route("/snapshot", snapshotsV1.Routes)
	})

	return router
}
