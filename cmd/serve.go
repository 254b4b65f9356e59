package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-intake/internal/ai"
	"github.com/sells-group/lead-intake/internal/model"
	"github.com/sells-group/lead-intake/internal/parser"
	"github.com/sells-group/lead-intake/internal/security"
	"github.com/sells-group/lead-intake/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lead intake HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		gate := newGate()
		pipeline, err := newAIPipeline(gate)
		if err != nil && !eris.Is(err, ai.ErrNotConfigured) {
			return err
		}

		api := &apiServer{
			store:    s,
			gate:     gate,
			pipeline: pipeline,
			parser:   parser.New(),
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// apiServer holds the handlers' shared dependencies. pipeline is nil when no
// Anthropic key is configured; the AI endpoint then returns 503.
type apiServer struct {
	store    store.Store
	gate     *security.Validator
	pipeline *ai.Pipeline
	parser   *parser.Parser
}

func (a *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/parse", a.handleParse)
		r.Post("/validate", a.handleValidate)
		r.Get("/leads", a.handleListLeads)
		r.Get("/leads/{id}", a.handleGetLead)
		r.Delete("/leads/{id}", a.handleDeleteLead)
		r.Get("/batches", a.handleListBatches)
		r.Get("/batches/{id}", a.handleGetBatch)
		r.Get("/audit/report", a.handleAuditReport)
	})

	return r
}

type parseRequest struct {
	Data string `json:"data"`
	AI   bool   `json:"ai"`
	Save bool   `json:"save"`
}

func (a *apiServer) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Data == "" {
		writeError(w, http.StatusBadRequest, "data is required")
		return
	}

	var result *model.ParseResult
	if req.AI {
		if a.pipeline == nil {
			writeError(w, http.StatusServiceUnavailable, "ai extraction is not configured")
			return
		}
		var err error
		result, err = a.pipeline.Parse(r.Context(), req.Data)
		if err != nil {
			zap.L().Error("api: ai parse failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "ai extraction failed")
			return
		}
	} else {
		// The gate runs in front of the heuristic engine too when data
		// arrives over the network.
		vr, err := a.gate.Validate(r.Context(), req.Data, map[string]string{
			"remote_addr": r.RemoteAddr,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, "request cancelled")
			return
		}
		if !vr.IsValid {
			writeJSON(w, http.StatusUnprocessableEntity, vr)
			return
		}
		result = a.parser.Parse(vr.SanitizedData)
		result.Warnings = append(result.Warnings, vr.Warnings...)
	}

	if req.Save {
		batch, err := a.store.SaveBatch(r.Context(), result)
		if err != nil {
			zap.L().Error("api: save batch failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save batch")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"batch":  batch,
			"result": result,
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data string `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vr, err := a.gate.Validate(r.Context(), req.Data, map[string]string{
		"remote_addr": r.RemoteAddr,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "request cancelled")
		return
	}
	writeJSON(w, http.StatusOK, vr)
}

func (a *apiServer) handleListLeads(w http.ResponseWriter, r *http.Request) {
	filter := store.LeadFilter{
		Email:    r.URL.Query().Get("email"),
		LeadSize: model.LeadSize(r.URL.Query().Get("lead_size")),
	}
	if v := r.URL.Query().Get("min_confidence"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min_confidence must be an integer")
			return
		}
		filter.MinConfidence = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		filter.Limit = n
	}

	leads, err := a.store.ListLeads(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list leads failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func (a *apiServer) handleGetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := a.store.GetLead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (a *apiServer) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteLead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *apiServer) handleListBatches(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	batches, err := a.store.ListBatches(r.Context(), limit)
	if err != nil {
		zap.L().Error("api: list batches failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list batches")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"batches": batches})
}

func (a *apiServer) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := a.store.GetBatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "batch not found")
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (a *apiServer) handleAuditReport(w http.ResponseWriter, r *http.Request) {
	window := 24 * time.Hour
	if v := r.URL.Query().Get("window_hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "window_hours must be a positive integer")
			return
		}
		window = time.Duration(n) * time.Hour
	}
	writeJSON(w, http.StatusOK, auditLog().Report(window))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
