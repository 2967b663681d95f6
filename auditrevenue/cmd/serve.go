package cmd

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rendered reports over HTTP",
	Long: `serve exposes the output directory over HTTP so rendered graphs and
CSV exports can be reviewed in a browser without copying files around.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := LoadProfile(profilePath)
		if err != nil {
			return err
		}
		return runServe(profile)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8056", "listen address")
}

func runServe(profile *Profile) error {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.PathPrefix("/").Handler(compressHTML(http.FileServer(http.Dir(profile.outputDir()))))

	server := &http.Server{
		Addr:              serveAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("serving reports", "addr", serveAddr, "dir", profile.outputDir())
	return server.ListenAndServe()
}

type brotliResponseWriter struct {
	http.ResponseWriter
	bw *brotli.Writer
}

func (w *brotliResponseWriter) Write(p []byte) (int, error) {
	return w.bw.Write(p)
}

// compressHTML brotli-compresses responses for clients that accept it.
// Rendered graph pages are large, the embedded tooltips compress well.
func compressHTML(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "br") {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Encoding", "br")
		w.Header().Del("Content-Length")
		bw := brotli.NewWriter(w)
		defer bw.Close()
		next.ServeHTTP(&brotliResponseWriter{ResponseWriter: w, bw: bw}, r)
	})
}
