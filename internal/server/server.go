// Package server exposes the scheduler over HTTP. Each request carries its
// own task list and start date; nothing is shared between requests.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/ganttloom/internal/calendar"
	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/schedule"
	"github.com/joshharrison/ganttloom/internal/task"
	"github.com/joshharrison/ganttloom/internal/tasksfile"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-200 reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Request is the body accepted by POST /schedule.
type Request struct {
	Start *calendar.Date `json:"start,omitempty"`
	Tasks []task.Task    `json:"tasks"`
}

// Handler returns the HTTP routes. today supplies the start date when a
// request omits one; nil means calendar.Today.
func Handler(today func() calendar.Date) http.Handler {
	if today == nil {
		today = calendar.Today
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/schedule", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", errors.New("method not allowed"))
			return
		}
		handleSchedule(w, r, today)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok\n"))
	})
	return mux
}

func handleSchedule(w http.ResponseWriter, r *http.Request, today func() calendar.Date) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("read body: %w", err))
		return
	}
	if !gjson.ValidBytes(body) {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid JSON"))
		return
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("expected a JSON object with a tasks array"))
		return
	}

	start := today()
	if s := doc.Get("start"); s.Exists() && s.Type != gjson.Null {
		if start, err = calendar.Parse(s.String()); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
	}

	raw := doc.Get("tasks")
	if !raw.IsArray() {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("tasks must be an array"))
		return
	}
	tasks, err := tasksfile.Parse(tasksfile.FormatJSON, []byte(raw.Raw))
	if err != nil {
		if k := graph.Kind(err); k != "internal" {
			writeError(w, http.StatusUnprocessableEntity, k, err)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	s, err := schedule.Generate(tasks, start)
	if err != nil {
		status, kind := engineStatus(err)
		writeError(w, status, kind, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

// engineStatus maps a scheduling error to its HTTP status and kind. Input
// errors are 422; anything else is an engine defect.
func engineStatus(err error) (int, string) {
	k := graph.Kind(err)
	if k == "internal" {
		return http.StatusInternalServerError, k
	}
	return http.StatusUnprocessableEntity, k
}

func writeError(w http.ResponseWriter, status int, kind string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error(), Kind: kind})
}

// Serve runs the server on port until ctx is cancelled, then shuts it down.
func Serve(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           Handler(nil),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen on port %d: %w", port, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// PostSchedule sends tasks to a running server and returns the computed schedule.
func PostSchedule(ctx context.Context, addr string, req Request) (*schedule.Schedule, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, addr+"/schedule", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("POST /schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			return nil, fmt.Errorf("POST /schedule returned %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("POST /schedule returned %d: %s (%s)", resp.StatusCode, e.Error, e.Kind)
	}

	var s schedule.Schedule
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	return &s, nil
}

// IsPortOpen checks if something is listening on the given address.
func IsPortOpen(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
