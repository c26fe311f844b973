package web

// handlers_common.go holds the request plumbing shared by all handlers:
// multipart and JSON decoding, language selection and file attachments.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/recon/internal/core"
)

// maxMemory is how much of a multipart form is buffered in memory; the
// rest spills to temporary files.
const maxMemory = 32 << 20

// maxJSONBody bounds download requests, which carry a full result back.
const maxJSONBody = 256 << 20

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// parseMultipart limits the body to limit bytes and parses the form.
func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		// The multipart reader does not always keep the MaxBytesError in
		// the chain.
		if strings.Contains(err.Error(), "request body too large") {
			return fmt.Errorf("%w: %v", errFileTooLarge, err)
		}
		return fmt.Errorf("%w: %v", errNoFile, err)
	}
	return nil
}

// formFile reads the single file posted under field.
func (s *Server) formFile(r *http.Request, field string) (core.Upload, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return core.Upload{}, fmt.Errorf("%w: %s", errNoFile, field)
	}
	return s.readPart(r.MultipartForm.File[field][0])
}

// formFiles reads every non-empty file posted under any of fields.
func (s *Server) formFiles(r *http.Request, fields ...string) ([]core.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	var uploads []core.Upload
	for _, field := range fields {
		for _, fh := range r.MultipartForm.File[field] {
			if fh.Filename == "" {
				continue
			}
			u, err := s.readPart(fh)
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, u)
		}
	}
	return uploads, nil
}

// readPart loads one uploaded file, enforcing the per-file size limit.
func (s *Server) readPart(fh *multipart.FileHeader) (core.Upload, error) {
	if fh.Filename == "" {
		return core.Upload{}, errNoFile
	}
	if limit := s.cfg.Upload.MaxFileSize; limit > 0 && fh.Size > limit {
		return core.Upload{}, fmt.Errorf("%w: %s is %d bytes, limit %d", errFileTooLarge, fh.Filename, fh.Size, limit)
	}

	f, err := fh.Open()
	if err != nil {
		return core.Upload{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return core.Upload{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return core.Upload{Name: filepath.Base(fh.Filename), Data: data}, nil
}

// formValue returns a form field and whether it was sent at all.
func formValue(r *http.Request, field string) (string, bool) {
	if r.MultipartForm != nil {
		if v, ok := r.MultipartForm.Value[field]; ok && len(v) > 0 {
			return v[0], true
		}
	}
	if v, ok := r.Form[field]; ok && len(v) > 0 {
		return v[0], true
	}
	return "", false
}

// decodeJSON reads a JSON request body into v. A malformed body counts as
// a request without data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: %v", core.ErrNoData, err)
	}
	return nil
}

// language resolves a request language, using fallback when none is sent.
func language(raw string, fallback core.Language) core.Language {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	return core.ParseLanguage(raw)
}

// writeAttachment sends body as a downloadable file.
func writeAttachment(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

type healthResponse struct {
	Status string                `json:"status"`
	Store  string                `json:"store"`
	Jobs   core.JobLimiterStatus `json:"jobs"`
}

// handleHealth reports store connectivity and job slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Store:  "ok",
		Jobs:   s.service.Limiter().Status(),
	}

	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Store = "unavailable"
			writeJSONStatus(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, resp)
}
