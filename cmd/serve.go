package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server exposing search and batch triggers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/search", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Profession string `json:"profession"`
				City       string `json:"city"`
				Country    string `json:"country"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if body.Profession == "" || body.City == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "profession and city are required"})
				return
			}

			res, err := env.Pipeline.Search(req.Context(), body.Profession, body.City, body.Country)
			if err != nil {
				zap.L().Error("search request failed",
					zap.String("profession", body.Profession),
					zap.String("city", body.City),
					zap.Error(err),
				)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "search failed"})
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/run-batch", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Limit int `json:"limit"`
			}
			// Body is optional for this trigger.
			_ = json.NewDecoder(req.Body).Decode(&body)
			if body.Limit == 0 {
				body.Limit = cfg.Batch.Limit
			}

			res, err := env.Pipeline.RunBatch(req.Context(), body.Limit)
			if err != nil {
				zap.L().Error("batch request failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "batch failed"})
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Get("/jobs", func(w http.ResponseWriter, req *http.Request) {
			jobs, err := env.Store.ReadJobs(req.Context())
			if err != nil {
				zap.L().Error("read jobs failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "read jobs failed"})
				return
			}
			writeJSON(w, http.StatusOK, jobs)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
