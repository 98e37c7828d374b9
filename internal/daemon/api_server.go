package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"copydesk/internal/api"
	"copydesk/internal/config"
	"copydesk/internal/lifecycle"
	"copydesk/internal/logging"
	"copydesk/internal/views"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.WithComponent(logger, "api"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/queue", srv.handleQueue)
	mux.HandleFunc("/api/posting-queue-v2", srv.handleReview)
	mux.HandleFunc("/api/action/", srv.handleAction)
	mux.HandleFunc("/api/transcript/", srv.handleTranscript)
	mux.HandleFunc("/api/analysis-types", srv.handleAnalysisTypes)
	mux.HandleFunc("/api/templates", srv.handleTemplates)
	mux.HandleFunc("/api/processing", srv.handleProcessing)
	mux.HandleFunc("/api/status", srv.handleStatus)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// handler returns the mux for tests.
func (s *apiServer) handler() http.Handler { return s.server.Handler }

func (s *apiServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	doc, err := s.daemon.service.Document()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	recs, err := s.daemon.records.List(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	pending := views.PendingAnalyses(s.daemon.cfg, recs)
	s.writeJSON(w, http.StatusOK, api.QueueResponse{Items: views.Queue(s.daemon.cfg, doc, pending)})
}

func (s *apiServer) handleReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	doc, err := s.daemon.service.Document()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	// One record fetch per transcript, shared across its actions.
	cache := map[string]map[string]json.RawMessage{}
	lookup := func(transcriptID string) map[string]json.RawMessage {
		if analyses, ok := cache[transcriptID]; ok {
			return analyses
		}
		rec, err := s.daemon.records.Get(r.Context(), transcriptID)
		if err != nil || rec == nil {
			cache[transcriptID] = nil
			return nil
		}
		cache[transcriptID] = rec.Analyses
		return rec.Analyses
	}
	s.writeJSON(w, http.StatusOK, api.ReviewResponse{Items: views.Review(doc, lookup)})
}

// handleAction dispatches /api/action/{id}/{operation}.
func (s *apiServer) handleAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/action/")
	rawID, operation, found := strings.Cut(rest, "/")
	if !found || rawID == "" || operation == "" || strings.Contains(operation, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	id, err := lifecycle.ParseID(rawID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleActionView(w, r, id, operation)
	case http.MethodPost:
		s.handleActionVerb(w, r, id, operation)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleActionView(w http.ResponseWriter, r *http.Request, id lifecycle.ID, view string) {
	ctx := r.Context()
	switch view {
	case "iterations":
		entries, err := s.daemon.service.Iterations(ctx, id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromRounds(id.String(), entries))
	case "edit-history":
		entries, err := s.daemon.service.EditHistory(ctx, id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromEdits(id.String(), entries))
	case "slides":
		slides, err := s.daemon.service.Slides(ctx, id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		out := make([]api.SlideResponse, 0, len(slides))
		for _, slide := range slides {
			out = append(out, api.SlideResponse{Index: slide.Index, Title: slide.Title, Body: slide.Body})
		}
		s.writeJSON(w, http.StatusOK, api.SlidesResponse{ActionID: id.String(), Slides: out})
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *apiServer) handleActionVerb(w http.ResponseWriter, r *http.Request, id lifecycle.ID, verb string) {
	ctx := r.Context()
	switch verb {
	case "stage":
		s.respondAction(w, id)(s.daemon.service.Stage(ctx, id))
	case "save-edit":
		var body api.SaveEditRequest
		if !s.decodeBody(w, r, &body) {
			return
		}
		s.respondAction(w, id)(s.daemon.service.SaveEdit(ctx, id, body.Text))
	case "ready":
		s.respondAction(w, id)(s.daemon.service.Ready(ctx, id))
	case "iterate":
		s.respondJob(w)(s.daemon.service.Iterate(ctx, id))
	case "generate-visuals":
		s.respondJob(w)(s.daemon.service.GenerateVisuals(ctx, id))
	case "render":
		var body api.RenderRequest
		if !s.decodeBody(w, r, &body) {
			return
		}
		s.respondJob(w)(s.daemon.service.Render(ctx, id, body.Template))
	case "posted":
		s.respondAction(w, id)(s.daemon.service.Posted(ctx, id))
	case "done":
		s.respondAction(w, id)(s.daemon.service.Done(ctx, id))
	case "skip":
		s.respondAction(w, id)(s.daemon.service.Skip(ctx, id))
	case "approve":
		s.respondAction(w, id)(s.daemon.service.Approve(ctx, id))
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

// handleTranscript dispatches /api/transcript/{id}/analyze.
func (s *apiServer) handleTranscript(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/transcript/")
	transcriptID, operation, found := strings.Cut(rest, "/")
	if !found || transcriptID == "" || operation != "analyze" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body api.AnalyzeRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	s.respondJob(w)(s.daemon.service.Analyze(r.Context(), transcriptID, body.Types))
}

func (s *apiServer) handleAnalysisTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromAnalysisTypes(s.daemon.cfg.UserFacingTypes()))
}

func (s *apiServer) handleTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	templates := make([]api.TemplateResponse, 0, len(s.daemon.cfg.Templates))
	for _, tpl := range s.daemon.cfg.Templates {
		templates = append(templates, api.TemplateResponse{Name: tpl.Name, Description: tpl.Description})
	}
	s.writeJSON(w, http.StatusOK, api.TemplatesResponse{Templates: templates})
}

func (s *apiServer) handleProcessing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	doc, err := s.daemon.service.Document()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	out := make(map[string]api.ProcessingEntry, len(doc.Processing))
	for transcriptID, entry := range doc.Processing {
		out[transcriptID] = api.ProcessingEntry{Types: entry.Types, StartedAt: entry.StartedAt}
	}
	s.writeJSON(w, http.StatusOK, api.ProcessingResponse{Processing: out})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:       status.Running,
		PID:           status.PID,
		StateFilePath: status.StateFilePath,
		RecordsDBPath: status.RecordsDBPath,
		LiveJobs:      status.LiveJobs,
	})
}

func (s *apiServer) respondAction(w http.ResponseWriter, id lifecycle.ID) func(lifecycle.Action, error) {
	return func(action lifecycle.Action, err error) {
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromAction(id.String(), action))
	}
}

func (s *apiServer) respondJob(w http.ResponseWriter) func(string, error) {
	return func(jobID string, err error) {
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		s.writeJSON(w, http.StatusAccepted, api.JobResponse{JobID: jobID})
	}
}

// decodeBody reads a JSON request body; an empty body decodes to the zero
// value so verbs with optional bodies keep working.
func (s *apiServer) decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return false
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return true
	}
	if err := json.Unmarshal(data, target); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return false
	}
	return true
}

func (s *apiServer) writeDomainError(w http.ResponseWriter, err error) {
	kind := lifecycle.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case lifecycle.KindValidation:
		status = http.StatusBadRequest
	case lifecycle.KindConflict:
		status = http.StatusConflict
	case lifecycle.KindNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", logging.Error(err))
	}
	s.writeJSON(w, status, api.ErrorResponse{Error: err.Error(), Kind: string(kind)})
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", logging.Error(err))
	}
}
