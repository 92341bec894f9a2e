package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/littlelemon/ordering-api/app/api"
	"github.com/littlelemon/ordering-api/app/auth"
	"github.com/littlelemon/ordering-api/app/cart"
	"github.com/littlelemon/ordering-api/app/catalog"
	"github.com/littlelemon/ordering-api/app/categories"
	"github.com/littlelemon/ordering-api/app/orders"
	"github.com/littlelemon/ordering-api/app/roles"
	"github.com/rs/zerolog"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server bundles the handlers mounted by NewRouter.
type Server struct {
	AuthHandler       *auth.AuthHandler
	CategoryHandler   *categories.CategoryHandler
	CatalogHandler    *catalog.CatalogHandler
	CartHandler       *cart.CartHandler
	OrderHandler      *orders.OrderHandler
	ManagerGroup      *roles.GroupHandler
	DeliveryCrewGroup *roles.GroupHandler
	Tokens            auth.TokenResolver
	DB                Pinger
}

func NewRouter(s *Server, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(api.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.Logger(logger))
	r.Use(api.Recover)
	r.Use(auth.Authenticate(s.Tokens))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.AuthHandler.HandleRegister)
		r.With(auth.RequireAuthentication).Get("/users/me", s.AuthHandler.HandleMe)
		r.Post("/api-token-auth", s.AuthHandler.HandleObtainToken)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.CategoryHandler.HandleGetAll)
			r.Post("/", s.CategoryHandler.HandleCreate)
			r.Delete("/{id}", s.CategoryHandler.HandleDelete)
			r.Get("/{id}/menu-items", s.CatalogHandler.HandleGetByCategory)
		})

		r.Route("/menu-items", func(r chi.Router) {
			r.Get("/", s.CatalogHandler.HandleGet)
			r.Post("/", s.CatalogHandler.HandleCreate)
			r.Get("/{slug}", s.CatalogHandler.HandleGetMenuItem)
			r.Put("/{slug}", s.CatalogHandler.HandleReplace)
			r.Patch("/{slug}", s.CatalogHandler.HandlePatch)
			r.Delete("/{slug}", s.CatalogHandler.HandleDelete)
		})

		r.Route("/cart/menu-items", func(r chi.Router) {
			r.Use(auth.RequireAuthentication)
			r.Get("/", s.CartHandler.HandleList)
			r.Post("/", s.CartHandler.HandleAdd)
			r.Delete("/", s.CartHandler.HandleClear)
			r.Delete("/{id}", s.CartHandler.HandleRemove)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(auth.RequireAuthentication)
			r.Get("/", s.OrderHandler.HandleList)
			r.Post("/", s.OrderHandler.HandleCreate)
			r.Get("/{id}", s.OrderHandler.HandleGet)
			r.Patch("/{id}", s.OrderHandler.HandlePatch)
			r.Delete("/{id}", s.OrderHandler.HandleDelete)
		})

		groups := map[string]*roles.GroupHandler{
			"manager":       s.ManagerGroup,
			"delivery-crew": s.DeliveryCrewGroup,
		}
		for name, h := range groups {
			r.Route("/groups/"+name+"/users", func(r chi.Router) {
				r.Get("/", h.HandleList)
				r.Post("/", h.HandleAdd)
				r.Delete("/{userID}", h.HandleRemove)
			})
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.DB.PingContext(ctx); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("database ping failed")
		api.ErrorResponse(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	api.OKResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
