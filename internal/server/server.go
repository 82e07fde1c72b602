package server

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/simonvc/leaveledger/internal/store"
	"go.uber.org/zap"
)

type Server struct {
	store  *store.Store
	router chi.Router
	addr   string
	log    *zap.Logger
}

func New(st *store.Store, addr string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	s := &Server{store: st, router: r, addr: addr, log: log}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.health)

		// Tenants are global; everything else is scoped by X-Tenant-ID.
		r.Post("/tenants", s.createTenant)
		r.Get("/tenants", s.listTenants)

		r.Group(func(r chi.Router) {
			r.Use(s.withTenant)

			// Users
			r.Post("/users", s.createUser)
			r.Get("/users", s.listUsers)
			r.Get("/users/{id}", s.getUser)
			r.Get("/users/{id}/balances", s.listBalances)
			r.Get("/users/{id}/balances/{typeID}", s.getBalance)

			// Leave types
			r.Post("/leave-types", s.createLeaveType)
			r.Get("/leave-types", s.listLeaveTypes)
			r.Get("/leave-types/{id}", s.getLeaveType)
			r.Patch("/leave-types/{id}", s.updateLeaveType)

			// Grants
			r.Post("/grants", s.createGrant)
			r.Get("/grants", s.listGrants)
			r.Delete("/grants/{id}", s.deleteGrant)

			// Calendar
			r.Post("/holidays", s.addHoliday)
			r.Get("/holidays", s.listHolidays)
			r.Delete("/holidays/{date}", s.deleteHoliday)
			r.Post("/blackouts", s.addBlackout)
			r.Get("/blackouts", s.listBlackouts)
			r.Delete("/blackouts/{id}", s.deleteBlackout)

			// Requests
			r.Post("/requests", s.submitRequest)
			r.Post("/requests/quote", s.quoteRequest)
			r.Get("/requests", s.listRequests)
			r.Get("/requests/{id}", s.getRequest)
			r.Post("/requests/{id}/approve", s.approveRequest)
			r.Post("/requests/{id}/reject", s.rejectRequest)
			r.Post("/requests/{id}/cancel", s.cancelRequest)
		})
	})

	return s
}

func (s *Server) ListenAndServe() error {
	s.log.Info("leaveledger server listening", zap.String("addr", s.addr))
	return http.ListenAndServe(s.addr, s.router)
}

func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("leaveledger server listening", zap.Stringer("addr", ln.Addr()))
	return http.Serve(ln, s.router)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
