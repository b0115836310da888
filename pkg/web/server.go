package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"github.com/tosih/mrdf-tool/pkg/detect"
	"github.com/tosih/mrdf-tool/pkg/editor"
	"github.com/tosih/mrdf-tool/pkg/logging"
	"github.com/tosih/mrdf-tool/pkg/models"
)

// SaveFunc persists a session to target, e.g. backup, write and audit log.
// It returns a short description of what was written.
type SaveFunc func(s *editor.Session, target string) (string, error)

// Options configures a Server
type Options struct {
	Filename    string
	Session     *editor.Session
	Detector    *detect.Detector
	Registry    *models.Registry // nil disables POST /api/profile
	Save        SaveFunc         // nil disables POST /api/save
	Port        int
	OpenBrowser bool
	Log         *logging.Logger
}

// Server exposes one editing session over a small JSON API. Every handler
// holds mu for its whole run; the session itself is not safe for concurrent use.
type Server struct {
	mu       sync.Mutex
	filename string
	session  *editor.Session
	detector *detect.Detector
	registry *models.Registry
	save     SaveFunc
	port     int
	open     bool
	log      *logging.Logger
}

func NewServer(opts Options) (*Server, error) {
	if opts.Session == nil {
		return nil, fmt.Errorf("no session to serve")
	}
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}
	if opts.Port == 0 {
		opts.Port = 8080
	}
	return &Server{
		filename: opts.Filename,
		session:  opts.Session,
		detector: opts.Detector,
		registry: opts.Registry,
		save:     opts.Save,
		port:     opts.Port,
		open:     opts.OpenBrowser,
		log:      opts.Log,
	}, nil
}

// Handler wires the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/fields", s.handleFields)
	mux.HandleFunc("/api/field", s.handleField)
	mux.HandleFunc("/api/bit", s.handleBit)
	mux.HandleFunc("/api/hex", s.handleHex)
	mux.HandleFunc("/api/revert", s.handleRevert)
	mux.HandleFunc("/api/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/detect", s.handleDetect)
	mux.HandleFunc("/api/profile", s.handleProfile)
	mux.HandleFunc("/api/save", s.handleSave)
	return mux
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	url := fmt.Sprintf("http://%s/api/state", addr)

	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("MRDF Editing API Started")

	pterm.Info.Printf("Serving %s at %s\n", filepath.Base(s.filename), url)
	pterm.Info.Println("Press Ctrl+C to stop the server")
	pterm.Println()

	if s.open {
		if err := openBrowser(url); err != nil {
			s.log.Warn("could not open browser", "url", url, "error", err)
		}
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the editing error taxonomy onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status, kind := http.StatusBadRequest, "invalid"

	var (
		rangeErr    *models.RangeError
		typeErr     *models.TypeMismatchError
		indexErr    *models.IndexError
		conflictErr *models.ProfileConflictError
		unknownErr  *models.UnknownFieldError
	)
	switch {
	case errors.As(err, &unknownErr):
		status, kind = http.StatusNotFound, "unknown_field"
	case errors.As(err, &rangeErr):
		kind = "range"
	case errors.As(err, &typeErr):
		kind = "type_mismatch"
	case errors.As(err, &indexErr):
		kind = "index"
	case errors.As(err, &conflictErr):
		status, kind = http.StatusConflict, "profile_conflict"
	case errors.Is(err, errNoProfile):
		status, kind = http.StatusConflict, "no_profile"
	case errors.Is(err, errUnknownProfile):
		status, kind = http.StatusNotFound, "unknown_profile"
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Kind: "method"})
}
