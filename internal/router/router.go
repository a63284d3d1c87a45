package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-expense-tracker/internal/config"
	"go-expense-tracker/internal/handler"
	"go-expense-tracker/internal/middleware"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Category *handler.CategoryHandler
	Expense  *handler.ExpenseHandler
	Document *handler.DocumentHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.With(authMiddleware.RequireRefresh).Post("/refresh", h.Auth.Refresh)
			auth.With(authMiddleware.RequireAuth).Post("/logout", h.Auth.Logout)
		})

		api.Route("/users", func(users chi.Router) {
			users.Use(authMiddleware.RequireAuth)
			users.Get("/me", h.User.Me)
			users.Patch("/me/email", h.User.UpdateEmail)
			users.Patch("/me/password", h.User.ChangePassword)
			users.Delete("/me", h.User.Delete)
		})

		api.Route("/categories", func(categories chi.Router) {
			categories.Use(authMiddleware.RequireAuth)
			categories.Get("/", h.Category.List)
			categories.Get("/tree", h.Category.Tree)
			categories.Post("/", h.Category.Create)
			categories.Post("/~seed-defaults", h.Category.SeedDefaults)
			categories.Patch("/{id}", h.Category.Update)
			categories.Delete("/{id}", h.Category.Delete)
		})

		api.Route("/expense-events", func(events chi.Router) {
			events.Use(authMiddleware.RequireAuth)
			events.Get("/", h.Expense.List)
			events.Get("/~summary", h.Expense.Summary)
			events.Post("/", h.Expense.Create)
			events.Get("/{id}", h.Expense.Get)
			events.Patch("/{id}", h.Expense.Update)
			events.Delete("/{id}", h.Expense.Delete)
		})

		api.Route("/documents", func(documents chi.Router) {
			documents.Use(authMiddleware.RequireAuth)
			documents.Post("/upload", h.Document.Upload)
			documents.Get("/", h.Document.List)
			documents.Get("/{id}", h.Document.Get)
			documents.Get("/{id}/download", h.Document.Download)
			documents.Delete("/{id}", h.Document.Delete)
		})
	})

	return r
}
