package rest

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

var downloadNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// DownloadHandler proxies a stored file URL back to the browser as an
// attachment so the download carries a usable filename.
type DownloadHandler struct {
	client       *http.Client
	maxBodyBytes int64
	logger       *slog.Logger
}

func NewDownloadHandler(timeout time.Duration, maxBodyBytes int64, logger *slog.Logger) *DownloadHandler {
	return &DownloadHandler{
		client:       &http.Client{Timeout: timeout},
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

func (h *DownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rawURL := r.URL.Query().Get("url")
	name := r.URL.Query().Get("name")
	if rawURL == "" || name == "" {
		http.Error(w, "url and name query parameters are required", http.StatusBadRequest)
		return
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		http.Error(w, "url must be an absolute http or https url", http.StatusBadRequest)
		return
	}

	filename := downloadNameSanitizer.ReplaceAllString(name, "")
	if filename == "" {
		filename = "download"
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		http.Error(w, "invalid url", http.StatusBadRequest)
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Error("download fetch failed", "error", err, "url", rawURL)
		http.Error(w, "failed to fetch file", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.logger.Warn("upstream returned non-200 for download", "status", resp.StatusCode, "url", rawURL)
		http.Error(w, "upstream error", resp.StatusCode)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if _, err := io.Copy(w, io.LimitReader(resp.Body, h.maxBodyBytes)); err != nil {
		h.logger.Error("download stream interrupted", "error", err, "url", rawURL)
	}
}
