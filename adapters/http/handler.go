// Package http provides the read-only HTTP API over the package catalog.
//
//	@title			botdef catalog API
//	@version		1.0
//	@description	Read-only access to published interface and integration packages.
//	@BasePath		/
package http

//go:generate swag init --generalInfo handler.go --output docs --outputTypes go

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/artpar/botdef/adapters/http/docs"
	"github.com/artpar/botdef/adapters/metrics"
	"github.com/artpar/botdef/core/catalog"
	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/integration"
	"github.com/artpar/botdef/ports"
)

// ErrorResponseBody is the body of every error response.
type ErrorResponseBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// VersionResponse is the version endpoint response.
type VersionResponse struct {
	Version string `json:"version"`
	Service string `json:"service"`
}

// Catalog is the read side of the package catalog.
type Catalog interface {
	ListInterfaces(ctx context.Context) ([]contract.Package, error)
	GetInterface(ctx context.Context, name, version string) (contract.Package, error)
	ListIntegrations(ctx context.Context) ([]integration.Package, error)
	GetIntegration(ctx context.Context, name, version string) (integration.Package, error)
	GetByID(ctx context.Context, id string) (catalog.Entry, error)
}

// RouterConfig holds optional configuration for the router.
type RouterConfig struct {
	Metrics *metrics.Collector
	Version string

	// EnableOpenAPI serves the API description and Swagger UI.
	EnableOpenAPI bool
}

// CatalogHandler serves catalog lookups.
type CatalogHandler struct {
	catalog Catalog
	logger  zerolog.Logger
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(catalog Catalog, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// ListInterfaces returns every published interface.
//
//	@Summary		List interfaces
//	@Description	Get every published interface package
//	@Tags			Interfaces
//	@Produce		json
//	@Success		200	{array}		contract.Package
//	@Failure		500	{object}	ErrorResponseBody
//	@Router			/interfaces [get]
func (h *CatalogHandler) ListInterfaces(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.catalog.ListInterfaces(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, pkgs)
}

// GetInterface returns one published interface.
//
//	@Summary		Get interface
//	@Description	Get a published interface package by name and version
//	@Tags			Interfaces
//	@Produce		json
//	@Param			name	path		string	true	"Interface name"
//	@Param			version	path		string	true	"Interface version"
//	@Success		200		{object}	contract.Package
//	@Failure		404		{object}	ErrorResponseBody
//	@Router			/interfaces/{name}/{version} [get]
func (h *CatalogHandler) GetInterface(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.catalog.GetInterface(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "version"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, pkg)
}

// ListIntegrations returns every published integration.
//
//	@Summary		List integrations
//	@Description	Get every published integration package
//	@Tags			Integrations
//	@Produce		json
//	@Success		200	{array}		integration.Package
//	@Failure		500	{object}	ErrorResponseBody
//	@Router			/integrations [get]
func (h *CatalogHandler) ListIntegrations(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.catalog.ListIntegrations(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, pkgs)
}

// GetIntegration returns one published integration.
//
//	@Summary		Get integration
//	@Description	Get a published integration package by name and version
//	@Tags			Integrations
//	@Produce		json
//	@Param			name	path		string	true	"Integration name"
//	@Param			version	path		string	true	"Integration version"
//	@Success		200		{object}	integration.Package
//	@Failure		404		{object}	ErrorResponseBody
//	@Router			/integrations/{name}/{version} [get]
func (h *CatalogHandler) GetIntegration(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.catalog.GetIntegration(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "version"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, pkg)
}

// GetPackage returns any published package by its ID.
//
//	@Summary		Get package
//	@Description	Get a published interface or integration package by ID
//	@Tags			Packages
//	@Produce		json
//	@Param			id	path		string	true	"Package ID"
//	@Success		200	{object}	catalog.Entry
//	@Failure		404	{object}	ErrorResponseBody
//	@Router			/packages/{id} [get]
func (h *CatalogHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	entry, err := h.catalog.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entry)
}

func (h *CatalogHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "not_found", err.Error())
		return
	}
	h.logger.Error().
		Err(err).
		Str("path", r.URL.Path).
		Msg("catalog lookup failed")
	writeError(w, r, http.StatusInternalServerError, "internal_error", "internal error")
}

// Liveness reports that the process is serving.
func Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// NewRouter creates the catalog API router.
func NewRouter(h *CatalogHandler, logger zerolog.Logger, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(NewLoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	if cfg.Metrics != nil {
		r.Use(NewMetricsMiddleware(cfg.Metrics))
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{}))
	}

	r.Get("/healthz", Liveness)

	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, VersionResponse{Version: version, Service: "botdef"})
	})

	if cfg.EnableOpenAPI {
		r.Get("/.well-known/openapi.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Access-Control-Allow-Origin", "*")
			io.WriteString(w, docs.SwaggerInfo.ReadDoc())
		})
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/.well-known/openapi.json"),
		))
	}

	r.Route("/interfaces", func(r chi.Router) {
		r.Get("/", h.ListInterfaces)
		r.Get("/{name}/{version}", h.GetInterface)
	})
	r.Route("/integrations", func(r chi.Router) {
		r.Get("/", h.ListIntegrations)
		r.Get("/{name}/{version}", h.GetIntegration)
	})
	r.Get("/packages/{id}", h.GetPackage)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
	})

	return r
}

// NewMetricsMiddleware counts requests by method, route pattern and status class.
func NewMetricsMiddleware(m *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/healthz") || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.RequestsTotal.WithLabelValues(r.Method, route, statusLabel(ww.Status())).Inc()
		})
	}
}

// statusLabel returns a string label for the status code.
func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}

// NewLoggingMiddleware logs every request at debug level and attaches a
// request logger to the request context.
func NewLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			r = r.WithContext(reqLogger.WithContext(r.Context()))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// Skip logging for health checks and metrics
			if strings.HasPrefix(r.URL.Path, "/healthz") || r.URL.Path == "/metrics" {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("encode response failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, r, status, ErrorResponseBody{Error: ErrorDetail{Code: code, Message: message}})
}
