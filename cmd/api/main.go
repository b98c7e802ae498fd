package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"capig-dash-go/internal/config"
	"capig-dash-go/internal/logger"
	"capig-dash-go/internal/pipeline"
	"capig-dash-go/internal/store"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.Info("starting service")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.WithFields(logrus.Fields{
		"workbook_path": cfg.WorkbookPath,
		"workbook_url":  cfg.WorkbookURL != "",
		"output_path":   cfg.OutputPath,
		"overrides":     len(cfg.Overrides),
	}).Info("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []pipeline.Option
	if cfg.SQLitePath != "" {
		db, err := store.NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			log.WithError(err).Fatal("failed to open sqlite mirror")
		}
		defer db.Close()
		opts = append(opts, pipeline.WithStore(db))
		log.WithField("sqlite_path", cfg.SQLitePath).Info("sqlite mirror enabled")
	}
	runner := pipeline.New(cfg, log, opts...)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      routes(runner, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func routes(runner *pipeline.Runner, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		log.WithRequest(r).Debug("health check")
		fmt.Fprint(w, "ok")
	})

	mux.HandleFunc("GET /dashboards", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log.WithRequest(r), http.StatusOK, runner.Dashboards())
	})

	mux.HandleFunc("POST /dashboards/{name}/refresh", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		reqLog := log.WithRequest(r).WithFields(logrus.Fields{"handler": "refresh", "dashboard": name})
		reqLog.Info("refresh requested")

		run, err := runner.Refresh(r.Context(), name)
		switch {
		case errors.Is(err, pipeline.ErrUnknownDashboard):
			reqLog.Warn("unknown dashboard")
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		case err != nil:
			reqLog.WithError(err).Error("refresh failed")
			writeJSON(w, reqLog, http.StatusInternalServerError, run)
			return
		}
		writeJSON(w, reqLog, http.StatusOK, run)
	})

	mux.HandleFunc("POST /refresh", func(w http.ResponseWriter, r *http.Request) {
		reqLog := log.WithRequest(r).WithField("handler", "refresh_all")
		reqLog.Info("full refresh requested")

		runs, err := runner.RefreshAll(r.Context())
		status := http.StatusOK
		if err != nil {
			reqLog.WithError(err).Error("refresh failed")
			status = http.StatusInternalServerError
		}
		writeJSON(w, reqLog, status, runs)
	})

	mux.HandleFunc("GET /workbook", func(w http.ResponseWriter, r *http.Request) {
		reqLog := log.WithRequest(r).WithField("handler", "workbook")
		sums, err := runner.Summary(r.Context())
		if err != nil {
			reqLog.WithError(err).Error("workbook summary failed")
			http.Error(w, "workbook load error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, reqLog, http.StatusOK, sums)
	})

	mux.HandleFunc("GET /runs", func(w http.ResponseWriter, r *http.Request) {
		reqLog := log.WithRequest(r).WithField("handler", "runs")
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		runs, err := runner.Runs(r.Context(), limit)
		switch {
		case errors.Is(err, pipeline.ErrNoStore):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		case err != nil:
			reqLog.WithError(err).Error("list runs failed")
			http.Error(w, "run log error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, reqLog, http.StatusOK, runs)
	})

	return requestID(mux)
}

// requestID makes every request carry an id and echoes it on the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(logger.RequestIDHeader, logger.RequestID(r))
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, log *logrus.Entry, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}
