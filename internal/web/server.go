package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status is what the liveness endpoint reports. External uptime monitors
// poll it to keep the host awake.
type Status struct {
	Status  string `json:"status"`
	BotUser string `json:"bot_user"`
}

// StatusSource supplies the liveness payload fields at request time.
type StatusSource struct {
	BotUser        func() string
	ActiveSessions func() int
}

// Handler builds the HTTP routes: liveness on / and /healthz, Prometheus
// metrics on /metrics.
func Handler(src StatusSource) http.Handler {
	registerSessionGauge(src.ActiveSessions)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Status{ //nolint:errcheck
			Status:  "ok",
			BotUser: src.BotUser(),
		})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) //nolint:errcheck
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// RunServerWithContext starts the liveness HTTP server and respects ctx for
// graceful shutdown. It blocks until the server exits; run in a goroutine.
func RunServerWithContext(ctx context.Context, addr string, src StatusSource) {
	srv := &http.Server{Addr: addr, Handler: Handler(src)}

	go func() {
		<-ctx.Done()
		log.Println("[INFO] Shutting down web server...")
		srv.Shutdown(context.Background()) //nolint:errcheck
	}()

	log.Printf("[INFO] Web server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		// Log the error but do NOT call log.Fatal — that would kill the whole process.
		log.Printf("[ERR] Web server exited: %v", err)
	}
}
