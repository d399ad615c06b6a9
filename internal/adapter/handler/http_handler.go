package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rl1809/sofa-configurator/internal/core/catalog"
	"github.com/rl1809/sofa-configurator/internal/core/domain"
	"github.com/rl1809/sofa-configurator/internal/core/service"
)

const maxBodyBytes = 1 << 20

// Configurator is the orchestration surface the transports depend on.
type Configurator interface {
	Catalog() (*catalog.Catalog, error)
	Configure(ctx context.Context, payload any) (domain.ConfigurationResult, error)
	Validate(ctx context.Context, payload any) (domain.ValidationResult, error)
	Estimate(ctx context.Context, material, size string) (domain.PriceRange, error)
}

type HTTPHandler struct {
	configurator Configurator
	logger       *zap.Logger
	exposeErrors bool
	now          func() time.Time
}

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorBody struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

// NewHTTPHandler builds the HTTP surface. exposeErrors adds internal error
// text to 500 responses and must be false in production.
func NewHTTPHandler(configurator Configurator, logger *zap.Logger, exposeErrors bool) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		configurator: configurator,
		logger:       logger,
		exposeErrors: exposeErrors,
		now:          time.Now,
	}
}

// Routes wires the handler into a chi router with the shared middleware.
func (h *HTTPHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID, RequestLogger(h.logger), Recoverer(h.logger, h.exposeErrors))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: errorBody{Message: fmt.Sprintf("Route %s %s not found", req.Method, req.URL.Path)},
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error: errorBody{Message: fmt.Sprintf("Method %s not allowed on %s", req.Method, req.URL.Path)},
		})
	})

	r.Get("/health", h.HealthCheck)
	r.Get("/materials", h.ListMaterials)
	r.Get("/sizes", h.ListSizes)
	r.Get("/addons", h.ListAddons)
	r.Post("/configure", h.Configure)
	r.Post("/configure/validate", h.Validate)
	r.Get("/pricing/estimate", h.Estimate)

	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "API is running",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *HTTPHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	c, err := h.configurator.Catalog()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: c.Materials()})
}

func (h *HTTPHandler) ListSizes(w http.ResponseWriter, r *http.Request) {
	c, err := h.configurator.Catalog()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: c.Sizes()})
}

func (h *HTTPHandler) ListAddons(w http.ResponseWriter, r *http.Request) {
	c, err := h.configurator.Catalog()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: c.Addons()})
}

func (h *HTTPHandler) Configure(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r)
	if !ok {
		return
	}

	result, err := h.configurator.Configure(r.Context(), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) Validate(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r)
	if !ok {
		return
	}

	result, err := h.configurator.Validate(r.Context(), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	estimate, err := h.configurator.Estimate(r.Context(), query.Get("material"), query.Get("size"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: estimate})
}

// decodeBody reads exactly one JSON value; trailing data is rejected.
func decodeBody(w http.ResponseWriter, r *http.Request) (any, bool) {
	var payload any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(&payload)
	if err == nil {
		if extra := dec.Decode(&struct{}{}); !errors.Is(extra, io.EOF) {
			err = errors.New("trailing data after JSON value")
		}
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Message: "invalid request body"},
		})
		return nil, false
	}
	return payload, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Message: verr.Error(), Details: verr.Violations},
		})
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if errors.Is(err, service.ErrCatalogUnavailable) {
		status = http.StatusServiceUnavailable
		message = "Catalog unavailable"
	}

	h.logger.Error("request failed",
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	body := errorBody{Message: message}
	if h.exposeErrors {
		body.Details = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: body})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
