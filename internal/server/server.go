// Package server exposes the compute service, the case store and the export
// endpoints over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/iwvelando/outright-forecast/internal/cases"
	"github.com/iwvelando/outright-forecast/internal/compare"
	"github.com/iwvelando/outright-forecast/internal/export"
	"github.com/iwvelando/outright-forecast/internal/forecast"
	"github.com/iwvelando/outright-forecast/internal/metrics"
	"github.com/iwvelando/outright-forecast/internal/scenario"
	"github.com/iwvelando/outright-forecast/pkg/adapters"
	"github.com/iwvelando/outright-forecast/pkg/constants"
	"github.com/iwvelando/outright-forecast/pkg/output"
	"go.uber.org/zap"
)

// CaseStore is the persistence the handlers need.
type CaseStore interface {
	Create(ctx context.Context, name string, inputs scenario.Input, results []metrics.RawRow) (*cases.Case, error)
	List(ctx context.Context) ([]cases.Summary, error)
	Get(ctx context.Context, id string) (*cases.Case, error)
	Update(ctx context.Context, id string, inputs scenario.Input, results []metrics.RawRow) (*cases.Case, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	All(ctx context.Context) ([]cases.Case, error)
}

// Options configures NewHandler.
type Options struct {
	Logger      *zap.Logger
	Store       CaseStore
	Year        int
	MaxBodySize int64
	Version     string
	Now         func() time.Time
}

type handler struct {
	logger      *zap.Logger
	store       CaseStore
	year        int
	maxBodySize int64
	version     string
	now         func() time.Time
}

// NewHandler constructs the HTTP handler that serves the compute, case and
// export API.
func NewHandler(opts Options) http.Handler {
	h := &handler{
		logger:      opts.Logger,
		store:       opts.Store,
		year:        opts.Year,
		maxBodySize: opts.MaxBodySize,
		version:     strings.TrimSpace(opts.Version),
		now:         opts.Now,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.year <= 0 {
		h.year = constants.DefaultForecastYear
	}
	if h.maxBodySize <= 0 {
		h.maxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if h.version == "" {
		h.version = "dev"
	}
	if h.now == nil {
		h.now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Post("/compute", h.handleCompute)

		r.Route("/cases", func(r chi.Router) {
			r.Get("/", h.handleListCases)
			r.Post("/", h.handleCreateCase)
			r.Delete("/", h.handleClearCases)
			r.Get("/{id}", h.handleGetCase)
			r.Put("/{id}", h.handleUpdateCase)
			r.Delete("/{id}", h.handleDeleteCase)
		})

		r.Route("/export", func(r chi.Router) {
			r.Post("/csv", h.handleExportCSV)
			r.Get("/xlsx", h.handleExportXLSX)
			r.Post("/xlsx", h.handleExportXLSX)
			r.Get("/pdf", h.handleExportPDF)
		})
	})

	return r
}

func (h *handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.Info("HTTP request",
			zap.String("op", "server.loggingMiddleware"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, VersionResponse{Version: h.version, Year: h.year})
}

// compute runs the forecast engine for one scenario.
func (h *handler) compute(in scenario.Input) ([]metrics.RawRow, error) {
	params, err := adapters.InputToParams(in, h.year)
	if err != nil {
		return nil, err
	}
	return forecast.GetOutrights(h.logger, params)
}

func (h *handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompute"

	var in scenario.Input
	if !h.decodeBody(w, r, &in, op) {
		return
	}

	start := time.Now()
	rows, err := h.compute(in)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.logger.Debug("outrights computed",
		zap.String("op", op),
		zap.Int("rows", len(rows)),
		zap.Duration("duration", time.Since(start)),
	)
	h.writeJSON(w, http.StatusOK, ComputeResponse{Success: true, Data: rows})
}

func (h *handler) handleListCases(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListCases"

	summaries, err := h.store.List(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, ListResponse{Success: true, Cases: summaries})
}

func (h *handler) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreateCase"

	var req CaseRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = fmt.Sprintf("Case %d", h.now().Unix())
	}

	results, err := h.compute(req.Inputs)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	c, err := h.store.Create(r.Context(), name, req.Inputs, results)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	h.logger.Info("case saved",
		zap.String("op", op),
		zap.String("id", c.ID),
		zap.String("name", c.Name),
	)
	h.writeJSON(w, http.StatusCreated, CaseResponse{Success: true, ID: c.ID, Case: c})
}

func (h *handler) handleGetCase(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetCase"

	c, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, CaseResponse{Success: true, ID: c.ID, Case: c})
}

func (h *handler) handleUpdateCase(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUpdateCase"
	id := chi.URLParam(r, "id")

	var req CaseRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}

	results, err := h.compute(req.Inputs)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	c, err := h.store.Update(r.Context(), id, req.Inputs, results)
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}

	h.logger.Info("case updated",
		zap.String("op", op),
		zap.String("id", c.ID),
	)
	h.writeJSON(w, http.StatusOK, CaseResponse{Success: true, ID: c.ID, Case: c})
}

func (h *handler) handleDeleteCase(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeleteCase"
	id := chi.URLParam(r, "id")

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.respondStoreError(w, err, op)
		return
	}

	h.logger.Info("case deleted",
		zap.String("op", op),
		zap.String("id", id),
	)
	h.writeJSON(w, http.StatusOK, ErrorResponse{Success: true})
}

func (h *handler) handleClearCases(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleClearCases"

	if err := h.store.Clear(r.Context()); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.logger.Info("all cases cleared", zap.String("op", op))
	h.writeJSON(w, http.StatusOK, ErrorResponse{Success: true})
}

func (h *handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportCSV"

	var in scenario.Input
	if !h.decodeBody(w, r, &in, op) {
		return
	}

	rows, err := h.compute(in)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	var buf bytes.Buffer
	if err := output.CsvFormat(&buf, metrics.DeriveSeries(rows)); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeAttachment(w, "text/csv; charset=utf-8", fmt.Sprintf("outrights_%d.csv", h.year), buf.Bytes())
}

func (h *handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportXLSX"

	stored, err := h.store.All(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	sheets := make([]export.Sheet, 0, len(stored))
	for _, c := range stored {
		sheets = append(sheets, export.Sheet{Name: c.Name, Rows: c.Results})
	}

	if len(sheets) == 0 {
		// No saved cases: export the posted scenario as a single sheet.
		var in scenario.Input
		if r.Method == http.MethodPost && !h.decodeBody(w, r, &in, op) {
			return
		}
		rows, err := h.compute(in)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		sheets = append(sheets, export.Sheet{Name: "Current", Rows: rows})
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, sheets); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		fmt.Sprintf("outrights_%d.xlsx", h.year), buf.Bytes())
}

func (h *handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportPDF"

	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	cmp, err := compare.Build(r.Context(), h.store, ids)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, compare.ErrTooFewCases) || errors.Is(err, compare.ErrInsufficientData) {
			status = http.StatusBadRequest
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteComparisonPDF(&buf, cmp, h.now()); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeAttachment(w, "application/pdf", "outright_comparison.pdf", buf.Bytes())
}

// decodeBody reads a JSON request body into dst. An empty body leaves dst at
// its zero value. It reports false after writing an error response.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return true
	}
	if err := json.Unmarshal(body, dst); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondStoreError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, cases.ErrNotFound) {
		h.respondErrorWithOp(w, http.StatusNotFound, cases.ErrNotFound.Error(), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, ErrorResponse{Success: false, Error: msg})
}

// writeJSON encodes payload before committing status, so an unencodable
// payload becomes a 500 error response instead of an empty 200.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.Int("status", status),
			zap.Error(err),
		)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(ErrorResponse{Success: false, Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *handler) writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write attachment",
			zap.String("filename", filename),
			zap.Error(err),
		)
	}
}

// Server wraps the handler in an http.Server.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// New builds a server listening on cfg.Address.
func New(cfg *Config, store CaseStore, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := NewHandler(Options{
		Logger:      logger,
		Store:       store,
		Year:        cfg.Year,
		MaxBodySize: cfg.BodySizeBytes(),
		Version:     version,
	})
	return &Server{
		server: &http.Server{
			Addr:         cfg.Address,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until Shutdown; it returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.String("op", "server.Start"),
		zap.String("address", s.server.Addr),
	)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server", zap.String("op", "server.Shutdown"))
	return s.server.Shutdown(ctx)
}
