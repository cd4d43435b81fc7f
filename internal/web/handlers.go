package web

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"mashup/internal/logging"
	"mashup/internal/request"
	"mashup/internal/runs"
	"mashup/internal/services"
	"mashup/internal/workflow"
)

const (
	successMessage   = "Mashup created and sent successfully!"
	defaultRunsLimit = 50
	maxRunsLimit     = 500
	formMemoryBytes  = 32 << 20
)

type formPage struct {
	MinCount    int
	MaxCount    int
	MinDuration int
	MaxDuration int
	Extensions  string
}

// RunsResponse wraps the history listing.
type RunsResponse struct {
	Runs []runs.View `json:"runs"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.renderForm(w)
	case http.MethodPost:
		s.handleSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderForm(w http.ResponseWriter) {
	bounds := request.WebBounds(s.cfg)
	page := formPage{
		MinCount:    bounds.MinCount,
		MaxCount:    bounds.MaxCount,
		MinDuration: bounds.MinDuration,
		MaxDuration: bounds.MaxDuration,
		Extensions:  acceptList(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.form.Execute(w, page); err != nil {
		s.logger.Warn("render form failed", logging.Error(err))
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.Web.MaxUploadMB)<<20)
	if err := r.ParseMultipartForm(formMemoryBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeText(w, http.StatusRequestEntityTooLarge, "Error: Uploaded files are too large.")
			return
		}
		s.writeText(w, http.StatusBadRequest, "Error: Could not read the form.")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	form := request.Form{
		Singer:   r.FormValue("singer"),
		Videos:   r.FormValue("videos"),
		Duration: r.FormValue("duration"),
		Email:    r.FormValue("email"),
		Uploads:  formUploads(r.MultipartForm),
	}
	req, err := request.ParseForm(form, request.WebBounds(s.cfg), s.cfg.Web.OutputName)
	if err != nil {
		s.runner.Rejected(workflow.OriginWeb, err)
		s.writeText(w, http.StatusBadRequest, "Error: "+services.UserMessage(err))
		return
	}

	if _, err := s.runner.Run(r.Context(), workflow.OriginWeb, req); err != nil {
		s.writeText(w, statusFor(err), "Error: "+services.UserMessage(err))
		return
	}
	s.writeText(w, http.StatusOK, successMessage)
}

func formUploads(form *multipart.Form) []request.Upload {
	if form == nil {
		return nil
	}
	headers := form.File["songs"]
	uploads := make([]request.Upload, 0, len(headers))
	for _, header := range headers {
		uploads = append(uploads, request.Upload{
			Name: header.Filename,
			Open: func() (io.ReadCloser, error) { return header.Open() },
		})
	}
	return uploads
}

func statusFor(err error) int {
	switch services.Kind(err) {
	case "validation":
		return http.StatusBadRequest
	case "acquisition", "delivery", "external_tool":
		return http.StatusBadGateway
	case "no_audio":
		return http.StatusUnprocessableEntity
	case "configuration":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.history == nil {
		s.writeJSON(w, http.StatusOK, RunsResponse{Runs: []runs.View{}})
		return
	}
	limit := defaultRunsLimit
	if value := r.URL.Query().Get("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(parsed, maxRunsLimit)
	}
	list, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]runs.View, 0, len(list))
	for _, run := range list {
		views = append(views, runs.NewView(run))
	}
	s.writeJSON(w, http.StatusOK, RunsResponse{Runs: views})
}

func (s *Server) writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, message)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode response failed", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
