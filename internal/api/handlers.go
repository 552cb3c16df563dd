package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/email-builder/internal/apperr"
	"github.com/email-builder/internal/logging"
	"github.com/email-builder/internal/middleware"
	"github.com/email-builder/internal/model"
	"github.com/email-builder/internal/service"
)

const maxJSONBodyBytes = 2 << 20

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	MaxUploadBytes int64
	ExposeErrors   bool
	// Pinger is optional; nil reports the store as always up.
	Pinger Pinger
}

// Handler contains all API handlers
type Handler struct {
	auth      *service.AuthService
	templates *service.TemplateService
	images    *service.ImageService
	log       logging.Logger
	opts      Options
}

func NewHandler(
	authSvc *service.AuthService,
	templateSvc *service.TemplateService,
	imageSvc *service.ImageService,
	log logging.Logger,
	opts Options,
) *Handler {
	return &Handler{
		auth:      authSvc,
		templates: templateSvc,
		images:    imageSvc,
		log:       log,
		opts:      opts,
	}
}

type errorResponse struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	body := errorResponse{Message: apperr.Message(err)}

	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		body.Details = ve.Fields
	}

	if status == http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if h.opts.ExposeErrors {
			body.Error = err.Error()
		}
	}

	respondJSON(w, status, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.New(apperr.ErrBadRequest, "invalid request body")
	}
	return nil
}

func userID(r *http.Request) (string, error) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return "", apperr.New(apperr.ErrUnauthorized, "Authentication required")
	}
	return id, nil
}

// Auth handlers

// Register godoc
// @Summary Register a new user
// @Description Create a new user account and return a session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Registration details"
// @Success 201 {object} model.AuthResponse
// @Failure 400 {object} errorResponse "Validation failed or email already registered"
// @Failure 500 {object} errorResponse "Server error"
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	resp, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Login credentials"
// @Success 200 {object} model.AuthResponse
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Invalid credentials"
// @Failure 500 {object} errorResponse "Server error"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Me godoc
// @Summary Get current user
// @Description Get the authenticated user's profile
// @Tags Authentication
// @Produce json
// @Success 200 {object} model.UserProfile
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 404 {object} errorResponse "User not found"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	profile, err := h.auth.CurrentUser(r.Context(), uid)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// Health godoc
// @Summary Health check
// @Description Check if the API and its store are reachable
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Service healthy"
// @Failure 503 {object} map[string]interface{} "Store unreachable"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.opts.Pinger != nil {
		if err := h.opts.Pinger.Ping(r.Context()); err != nil {
			h.log.Warn(r.Context(), "health check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":   "degraded",
				"database": false,
			})
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"database": true,
	})
}
