package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lead search HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *pipelineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/search", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
			Count int    `json:"count"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Query == "" {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}

		resp, err := env.Service.Search(r.Context(), req.Query, req.Count)
		if err != nil {
			zap.L().Error("api search failed", zap.String("query", req.Query), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "search failed")
			return
		}

		status := http.StatusCreated
		if resp.Cached {
			status = http.StatusOK
		}
		writeJSON(w, status, resp)
	})

	r.Get("/api/leads", func(w http.ResponseWriter, r *http.Request) {
		leads, err := env.Store.ListLeads(r.Context(), 100)
		if err != nil {
			zap.L().Error("api list leads failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"leads": leads, "count": len(leads)})
	})

	r.Get("/api/leads/{id}", func(w http.ResponseWriter, r *http.Request) {
		lead, err := env.Store.GetLead(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			zap.L().Error("api get lead failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "lookup failed")
			return
		}
		if lead == nil {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		writeJSON(w, http.StatusOK, lead)
	})

	r.Get("/api/queries", func(w http.ResponseWriter, r *http.Request) {
		recs, err := env.Store.ListSearches(r.Context())
		if err != nil {
			zap.L().Error("api list queries failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"queries": recs, "count": len(recs)})
	})

	r.Get("/api/queries/{key}", func(w http.ResponseWriter, r *http.Request) {
		rec, leads, err := env.Service.Resolve(r.Context(), chi.URLParam(r, "key"))
		if err != nil {
			zap.L().Error("api get query failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "lookup failed")
			return
		}
		if rec == nil {
			writeError(w, http.StatusNotFound, "query not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"record": rec, "results": leads})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
