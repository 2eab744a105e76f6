package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(Timeout)
	r.Use(CORS)

	r.Get("/healthz", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/transactions", handler.ListTransactions)
		r.Post("/transactions", handler.RecordTransaction)
		r.Get("/transactions/{id}", handler.GetTransaction)
		r.Put("/transactions/{id}", handler.PutTransaction)
		r.Delete("/transactions/{id}", handler.DeleteTransaction)

		r.Get("/clients", handler.ListClients)
		r.Put("/clients/{id}", handler.PutClient)
		r.Delete("/clients/{id}", handler.DeleteClient)

		r.Get("/products", handler.ListProducts)
		r.Get("/employees", handler.ListEmployees)

		r.Get("/company", handler.GetCompany)
		r.Put("/company", handler.PutCompany)

		r.Get("/stats", handler.Stats)
		r.Get("/reports/sales", handler.SalesReport)
		r.Get("/reports/summary", handler.DeliverySummary)

		r.Post("/sync", handler.Sync)
		r.Get("/remote/test", handler.TestRemote)
	})

	return r
}
