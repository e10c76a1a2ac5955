package api

import (
	"bytes"
	"io"
	"mime"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/atupatu/pccoe/internal/storage"
	"github.com/atupatu/pccoe/internal/usage"
)

// maxFieldBytes bounds a single non-file form value.
const maxFieldBytes = 1 << 20

type logUsageResponse struct {
	Message string `json:"message"`
	usage.Receipt
}

type logsResponse struct {
	Logs []storage.UsageEvent `json:"logs"`
}

type preferencesResponse struct {
	PreferredEntities []string `json:"preferred_entities"`
}

// handleLogUsage handles POST /log-usage.
func (s *Server) handleLogUsage(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	report, err := readReport(r)
	if err != nil {
		s.logger.Errorw("failed to parse upload", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	receipt, err := s.ingestor.Log(r.Context(), report)
	if err != nil {
		s.writeUsageError(w, "log usage", err)
		return
	}

	writeJSON(w, http.StatusOK, logUsageResponse{
		Message: "Usage logged successfully",
		Receipt: receipt,
	})
}

// readReport reads a log-usage body. Only body fields count; the query
// string is ignored. A part is a file when its Content-Disposition carries a
// filename parameter, even an empty one, and the filename is kept as sent.
// The first "file" part wins and is buffered, since form fields may follow
// it. A body that is not multipart yields a report with no file.
func readReport(r *http.Request) (usage.Report, error) {
	var report usage.Report

	mr, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		return report, nil
	}
	if err != nil {
		return report, errors.Wrap(err, "read multipart body")
	}

	fields := map[string]*string{
		"tab_name":          &report.Tab,
		"entities":          &report.Entities,
		"selected_entities": &report.SelectedEntities,
	}
	seen := make(map[string]bool)

	for {
		part, err := mr.NextRawPart()
		if errors.Is(err, io.EOF) {
			return report, nil
		}
		if err != nil {
			return report, errors.Wrap(err, "read multipart part")
		}

		name, filename, isFile := disposition(part.Header.Get("Content-Disposition"))
		switch {
		case isFile && name == "file" && report.File == nil:
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, part); err != nil {
				part.Close()
				return report, errors.Wrap(err, "read file")
			}
			report.File = &usage.Upload{Filename: filename, Body: &buf}
		case !isFile && fields[name] != nil && !seen[name]:
			value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			if err != nil {
				part.Close()
				return report, errors.Wrapf(err, "read %s", name)
			}
			*fields[name] = string(value)
			seen[name] = true
		}
		part.Close()
	}
}

// disposition parses a form-data Content-Disposition header. isFile reports
// whether a filename parameter is present at all.
func disposition(header string) (name, filename string, isFile bool) {
	d, params, err := mime.ParseMediaType(header)
	if err != nil || d != "form-data" {
		return "", "", false
	}
	filename, isFile = params["filename"]
	return params["name"], filename, isFile
}

// handleGetLogs handles GET /get-logs.
func (s *Server) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	s.writeLogs(w, r, storage.Filter{})
}

// handleGetLogsFiltered handles GET /get-logs-filtered.
func (s *Server) handleGetLogsFiltered(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	s.writeLogs(w, r, storage.Filter{
		Tab:       q.Get("tab"),
		Filename:  q.Get("filename"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	})
}

func (s *Server) writeLogs(w http.ResponseWriter, r *http.Request, filter storage.Filter) {
	logs, err := s.querier.Logs(r.Context(), filter)
	if err != nil {
		s.writeUsageError(w, "get logs", err)
		return
	}
	writeJSON(w, http.StatusOK, logsResponse{Logs: logs})
}

// handleGetPreferredEntities handles GET /get-preferred-entities.
func (s *Server) handleGetPreferredEntities(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	tab := r.URL.Query().Get("tab")
	if tab == "" {
		tab = s.opts.PreferredTab
	}

	preferred, err := s.engine.PreferredEntities(r.Context(), tab)
	if err != nil {
		s.writeUsageError(w, "get preferred entities", err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesResponse{PreferredEntities: preferred})
}

// writeUsageError maps a service error to a status. Only a missing file is
// the caller's fault; everything else is reported as a server error.
func (s *Server) writeUsageError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, usage.ErrValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Errorw(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}
