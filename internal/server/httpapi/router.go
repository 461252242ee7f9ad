// Package httpapi exposes the authentication and patient-record services
// over a JSON HTTP API.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/medvault/internal/logging"
	"github.com/dmitrijs2005/medvault/internal/server/auth"
	"github.com/dmitrijs2005/medvault/internal/server/services"
)

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	auth     *services.AuthService
	patients *services.PatientService
	logger   logging.Logger
}

func NewServer(authSvc *services.AuthService, patientSvc *services.PatientService, logger logging.Logger) *Server {
	return &Server{
		auth:     authSvc,
		patients: patientSvc,
		logger:   logger.With("module", "httpapi"),
	}
}

// Router assembles the route tree. Registration and login are public; the
// patient endpoints require a bearer token and a role with the matching
// capability.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/api/register", s.handleRegister)
	r.Post("/api/login", s.handleLogin)

	r.Route("/api/patients", func(r chi.Router) {
		r.Use(s.authenticate)

		r.With(s.requireCapability(auth.CapViewRecords)).Get("/", s.handleListPatients)
		r.With(s.requireCapability(auth.CapViewRecords)).Get("/{id}", s.handleGetPatient)
		r.With(s.requireCapability(auth.CapEditRecords)).Post("/", s.handleCreatePatient)
		r.With(s.requireCapability(auth.CapEditRecords)).Put("/{id}", s.handleUpdatePatient)
		r.With(s.requireCapability(auth.CapEditRecords)).Delete("/{id}", s.handleDeletePatient)
	})

	return r
}
