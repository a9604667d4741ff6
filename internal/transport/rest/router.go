package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rmacedo/prestacao-viagens/internal/advance"
	"github.com/rmacedo/prestacao-viagens/internal/auth"
	"github.com/rmacedo/prestacao-viagens/internal/department"
	"github.com/rmacedo/prestacao-viagens/internal/expense"
	"github.com/rmacedo/prestacao-viagens/internal/transport/middleware"
	"github.com/rmacedo/prestacao-viagens/internal/transport/swagger"
	"github.com/rmacedo/prestacao-viagens/internal/trip"
	"github.com/rmacedo/prestacao-viagens/internal/user"
)

type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Department *department.Handler
	Trip       *trip.Handler
	Advance    *advance.Handler
	Expense    *expense.Handler
}

// RegisterAllRoutes wires the Portuguese API surface under /api/v1.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// OpenAPI spec and Swagger UI live at the root, outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/me", h.User.GetCurrentUser)
				ur.Get("/", h.User.GetUsers)
				ur.Post("/", h.User.CreateUser)
				ur.Get("/{id}", h.User.GetUser)
				ur.Patch("/{id}", h.User.UpdateUser)
				ur.Put("/{id}", h.User.UpdateUser)
				ur.Delete("/{id}", h.User.DeleteUser)
			})

			pr.Route("/departamentos", func(der chi.Router) {
				der.Get("/", h.Department.GetDepartments)
				der.Get("/{id}", h.Department.GetDepartment)
			})

			pr.Route("/viagens", func(vr chi.Router) {
				vr.Get("/", h.Trip.GetTrips)
				vr.Post("/", h.Trip.CreateTrip)
				vr.Get("/{id}", h.Trip.GetTrip)
				vr.Patch("/{id}", h.Trip.UpdateTrip)
				vr.Put("/{id}", h.Trip.UpdateTrip)
				vr.Delete("/{id}", h.Trip.DeleteTrip)
			})

			pr.Route("/adiantamentos", func(ar chi.Router) {
				ar.Get("/", h.Advance.GetAdvances)
				ar.Post("/", h.Advance.CreateAdvance)
				ar.Get("/{id}", h.Advance.GetAdvance)
				ar.Patch("/{id}", h.Advance.UpdateAdvance)
				ar.Put("/{id}", h.Advance.UpdateAdvance)
				ar.Delete("/{id}", h.Advance.DeleteAdvance)
			})

			pr.Route("/despesas", func(dr chi.Router) {
				dr.Get("/", h.Expense.GetExpenses)
				dr.Post("/", h.Expense.CreateExpense)
				dr.Get("/{id}", h.Expense.GetExpense)
				dr.Patch("/{id}", h.Expense.UpdateExpense)
				dr.Put("/{id}", h.Expense.UpdateExpense)
				dr.Delete("/{id}", h.Expense.DeleteExpense)
				dr.Post("/{id}/aprovar", h.Expense.ApproveExpense)
				dr.Post("/{id}/rejeitar", h.Expense.RejectExpense)
			})

			pr.Get("/despesas-para-aprovacao", h.Expense.GetPendingApprovals)
		})
	})
}
