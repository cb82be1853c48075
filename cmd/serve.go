package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GrayGhostDev/lead-generator/internal/ingest"
	"github.com/GrayGhostDev/lead-generator/internal/model"
	"github.com/GrayGhostDev/lead-generator/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server for provider contact callbacks",
	Long: `Accepts contact records pushed by enrichment providers and stores them for
replay as an enrichment source on later consolidation runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "serve: open store")
		}
		if st == nil {
			return eris.New("serve: a store driver is required (LEADGEN_STORE_DRIVER)")
		}
		defer st.Close()

		r := buildRouter(st)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("serve: listening", zap.Int("port", port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return eris.Wrap(err, "serve: shutdown")
			}
			return nil
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "serve: listen")
			}
			return nil
		}
	},
}

// buildRouter wires the webhook endpoints over the given store.
func buildRouter(st store.Store) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Post("/webhook/contact", func(w http.ResponseWriter, req *http.Request) {
		var payload map[string]string
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		// Payload keys get the same normalization as file headers, so
		// providers may spell fields however their export does.
		row := make(ingest.Row, len(payload))
		for k, v := range payload {
			row[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		}

		rec, err := ingest.ParseRow(row, model.SourceEnrichment, 0)
		if err != nil {
			zap.L().Warn("webhook: rejected contact", zap.Error(err))
			http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
			return
		}

		if err := st.SaveContact(req.Context(), rec.Contact); err != nil {
			zap.L().Error("webhook: store contact", zap.Error(err))
			http.Error(w, `{"error":"store error"}`, http.StatusInternalServerError)
			return
		}

		zap.L().Info("webhook: contact stored",
			zap.String("name", rec.Contact.FullName),
			zap.String("email", rec.Contact.Email),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"status": "stored"})
	})

	return r
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
