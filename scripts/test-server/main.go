// Local fixture server for trying rawprobe by hand. Listens on :80 since
// the probe always connects to port 80, so it usually needs root.
//
//	sudo go run ./scripts/test-server
//	rawprobe -v http://127.0.0.1/drip
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wesleyorama2/rawprobe/internal/logging"
)

func main() {
	addr := flag.String("addr", ":80", "listen address")
	delay := flag.Duration("delay", 300*time.Millisecond, "delay used by /slow and /drip")
	flag.Parse()

	logger, err := logging.New("info", os.Stderr, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "OK")
	})

	// Holds back the status line so TTFB dominates.
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(*delay)
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "slow")
	})

	// Streams the body in pieces so content transfer dominates.
	mux.HandleFunc("/drip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		flusher, _ := w.(http.Flusher)
		for i := 0; i < 5; i++ {
			fmt.Fprintln(w, strings.Repeat(fmt.Sprint(i), 1000))
			if flusher != nil {
				flusher.Flush()
			}
			time.Sleep(*delay / 5)
		}
	})

	mux.HandleFunc("/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"path":%q,"time":%q}`, r.URL.Path, time.Now().Format(time.RFC3339))
	})

	mux.HandleFunc("/latin1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=iso-8859-1")
		w.Write([]byte{'c', 'a', 'f', 0xe9})
	})

	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Hijacks and closes without answering.
	mux.HandleFunc("/hangup", func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			http.Error(w, "hijacking unsupported", http.StatusInternalServerError)
			return
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			conn.Close()
		}
	})

	server := &http.Server{
		Addr:              *addr,
		Handler:           logRequests(logger, mux),
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	logger.Info().Str("addr", *addr).Msg("fixture server listening")
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func logRequests(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info().Str("path", r.URL.RequestURI()).Dur("elapsed", time.Since(start)).Msg("served")
	})
}
