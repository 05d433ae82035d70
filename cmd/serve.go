package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/homepage-finder/internal/finder"
	"github.com/sells-group/homepage-finder/internal/location"
	"github.com/sells-group/homepage-finder/internal/model"
	"github.com/sells-group/homepage-finder/internal/scorer"
)

var servePort int

// maxRequestBytes caps request bodies.
const maxRequestBytes = 1 << 20

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scoring HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		env, err := initEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		api := &apiServer{
			newScorer: func() (*scorer.Scorer, error) {
				var resolver location.Resolver
				if env.Resolver != nil {
					resolver = location.NewCachedResolver(env.Resolver)
				}
				return scorer.New(cfg.Scoring, env.Lists, resolver, env.Liveness)
			},
			finder: env.Finder,
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           newRouter(api, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port), zap.Bool("search_enabled", env.Finder != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// apiServer serves scoring and search requests. finder is nil when no
// search API key is configured.
type apiServer struct {
	newScorer func() (*scorer.Scorer, error)
	finder    *finder.Finder
}

func newRouter(api *apiServer, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"search": api.finder != nil,
		})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/score", api.handleScore)
		r.Post("/find", api.handleFind)
	})
	return r
}

func (a *apiServer) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Company.CompanyName) == "" {
		writeError(w, http.StatusBadRequest, "company.company_name is required")
		return
	}

	sc, err := a.newScorer()
	if err != nil {
		zap.L().Error("api: build scorer", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "scorer unavailable")
		return
	}
	writeJSON(w, http.StatusOK, scoreHitsFor(r.Context(), sc, req))
}

func (a *apiServer) handleFind(w http.ResponseWriter, r *http.Request) {
	if a.finder == nil {
		writeError(w, http.StatusServiceUnavailable, "search is not configured")
		return
	}

	var req struct {
		Company model.CompanyRecord `json:"company"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Company.CompanyName) == "" {
		writeError(w, http.StatusBadRequest, "company.company_name is required")
		return
	}

	out, err := a.finder.Find(r.Context(), req.Company)
	if err != nil {
		zap.L().Warn("api: find aborted", zap.String("company", req.Company.CompanyName), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
