package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/email-builder/internal/config"
	"github.com/email-builder/internal/logging"
	"github.com/email-builder/internal/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates a new HTTP router with all routes
func NewRouter(h *Handler, auth *middleware.AuthMiddleware, cfg *config.Config, log logging.Logger) http.Handler {
	mux := http.NewServeMux()

	protected := func(fn http.HandlerFunc) http.Handler {
		return auth.Authenticate(fn)
	}

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	// Public routes
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("GET /api/health", h.Health)

	// User routes
	mux.Handle("GET /api/auth/me", protected(h.Me))

	// Template routes
	mux.Handle("GET /api/email/templates", protected(h.ListTemplates))
	mux.Handle("POST /api/email/templates", protected(h.CreateTemplate))
	mux.Handle("POST /api/email/template", protected(h.CreateTemplate))
	mux.Handle("GET /api/email/template/{id}", protected(h.GetTemplate))
	mux.Handle("PUT /api/email/template/{id}", protected(h.UpdateTemplate))
	mux.Handle("DELETE /api/email/template/{id}", protected(h.DeleteTemplate))
	mux.Handle("GET /api/email/template/{id}/render", protected(h.RenderTemplate))
	mux.Handle("GET /api/email/template/{id}/download", protected(h.RenderTemplate))
	mux.Handle("GET /api/email/layout", protected(h.GetLayout))
	mux.Handle("POST /api/email/upload-image", protected(h.UploadImage))

	// Uploaded images
	prefix := "/" + strings.Trim(cfg.Upload.URLPrefix, "/")
	mux.Handle("GET "+prefix+"/", http.StripPrefix(prefix, http.FileServer(noListingFS{http.Dir(cfg.Upload.Dir)})))

	// Apply global middleware
	exposeErrors := cfg.App.IsDevelopment()
	handler := middleware.CORS(cfg.CORS)(mux)
	handler = middleware.Logger(log)(handler)
	handler = middleware.Recoverer(log, exposeErrors)(handler)

	return handler
}

// noListingFS serves files but reports directories as missing.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
