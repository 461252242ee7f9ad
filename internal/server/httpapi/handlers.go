package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/dmitrijs2005/medvault/internal/server/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// patientPayload is the wire shape of a patient record.
type patientPayload struct {
	ID              string  `json:"id,omitempty"`
	Gender          string  `json:"gender"`
	Age             float64 `json:"age"`
	Hypertension    int     `json:"hypertension"`
	HeartDisease    int     `json:"heart_disease"`
	EverMarried     string  `json:"ever_married"`
	WorkType        string  `json:"work_type"`
	ResidenceType   string  `json:"residence_type"`
	AvgGlucoseLevel float64 `json:"avg_glucose_level"`
	BMI             float64 `json:"bmi"`
	SmokingStatus   string  `json:"smoking_status"`
	Stroke          int     `json:"stroke"`
	Email           string  `json:"email,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}

func toPatientPayload(p *models.Patient) patientPayload {
	out := patientPayload{
		ID:              p.ID,
		Gender:          p.Gender,
		Age:             p.Age,
		Hypertension:    p.Hypertension,
		HeartDisease:    p.HeartDisease,
		EverMarried:     p.EverMarried,
		WorkType:        p.WorkType,
		ResidenceType:   p.ResidenceType,
		AvgGlucoseLevel: p.AvgGlucoseLevel,
		BMI:             p.BMI,
		SmokingStatus:   p.SmokingStatus,
		Stroke:          p.Stroke,
		Email:           p.Email,
		Phone:           p.Phone,
	}
	if !p.CreatedAt.IsZero() {
		out.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	if !p.UpdatedAt.IsZero() {
		out.UpdatedAt = p.UpdatedAt.Format(time.RFC3339)
	}
	return out
}

func (p *patientPayload) toModel() *models.Patient {
	return &models.Patient{
		ID:              p.ID,
		Gender:          p.Gender,
		Age:             p.Age,
		Hypertension:    p.Hypertension,
		HeartDisease:    p.HeartDisease,
		EverMarried:     p.EverMarried,
		WorkType:        p.WorkType,
		ResidenceType:   p.ResidenceType,
		AvgGlucoseLevel: p.AvgGlucoseLevel,
		BMI:             p.BMI,
		SmokingStatus:   p.SmokingStatus,
		Stroke:          p.Stroke,
		Email:           p.Email,
		Phone:           p.Phone,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, accountResponse{
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
		Role:     account.Role,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, _, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (s *Server) handleListPatients(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	list, err := s.patients.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]patientPayload, 0, len(list))
	for _, p := range list {
		out = append(out, toPatientPayload(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	patient, err := s.patients.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientPayload(patient))
}

func (s *Server) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var req patientPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.patients.Create(r.Context(), req.toModel())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPatientPayload(created))
}

func (s *Server) handleUpdatePatient(w http.ResponseWriter, r *http.Request) {
	var req patientPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patient := req.toModel()
	patient.ID = chi.URLParam(r, "id")
	if err := s.patients.Update(r.Context(), patient); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeletePatient(w http.ResponseWriter, r *http.Request) {
	if err := s.patients.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// writeServiceError maps service sentinels to HTTP statuses. Authentication
// failures share one body so the response does not leak whether the account
// exists or which check failed.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorInvalidInput):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorInvalidCredentials):
		writeJSONError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, common.ErrorAccountLocked):
		writeJSONError(w, http.StatusForbidden, "account is temporarily locked")
	case errors.Is(err, common.ErrorAccountInactive):
		writeJSONError(w, http.StatusForbidden, "account is inactive")
	case errors.Is(err, common.ErrorAlreadyExists):
		writeJSONError(w, http.StatusConflict, "already exists")
	case errors.Is(err, common.ErrorNotFound):
		writeJSONError(w, http.StatusNotFound, "not found")
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
