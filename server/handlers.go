package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/c2fo/drivefm"
	"github.com/c2fo/drivefm/options"
	"github.com/c2fo/drivefm/options/scope"
	"github.com/c2fo/drivefm/options/upload"
	"github.com/c2fo/drivefm/utils"
)

// GatewayFactory builds a gateway for the bearer credential of one request.
type GatewayFactory func(token string) (drivefm.Gateway, error)

// multipartMemory is how much of an upload form is kept in memory before spilling to temp files.
const multipartMemory = 32 << 20

// FilesHandler serves the /api/files routes.
type FilesHandler struct {
	newGateway       GatewayFactory
	folderID         string
	maxUploadBytes   int64
	thumbMaxEdge     int
	thumbCacheMaxAge time.Duration
	logger           *slog.Logger
}

type filesResponse struct {
	Files []drivefm.FileRecord `json:"files"`
}

type fileResponse struct {
	File drivefm.FileRecord `json:"file"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type renameRequest struct {
	Name string `json:"name"`
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// gateway builds the gateway for the request's credential, or writes a 401 and returns false.
func (h *FilesHandler) gateway(w http.ResponseWriter, r *http.Request) (drivefm.Gateway, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	gw, err := h.newGateway(token)
	if err != nil {
		h.logger.Warn("gateway construction failed", slog.Any("error", err))
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return gw, true
}

func (h *FilesHandler) scope() []options.CallOption {
	if h.folderID == "" {
		return nil
	}
	return []options.CallOption{scope.WithContainer(h.folderID)}
}

// fail reports a gateway failure of op to the client, the log and the metrics.
func (h *FilesHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error, fallback string) {
	recordGatewayFailure(op, err)
	status := statusFor(err)
	h.logger.LogAttrs(r.Context(), slog.LevelWarn, "gateway call failed",
		slog.String("request_id", RequestIDFrom(r.Context())),
		slog.String("op", op),
		slog.Int("status", status),
		slog.Int("upstream_status", drivefm.StatusCode(err)),
		slog.Any("error", err),
	)
	writeError(w, status, messageFor(err, fallback))
}

// ListFiles handles GET /api/files.
func (h *FilesHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	gw, ok := h.gateway(w, r)
	if !ok {
		return
	}
	files, err := gw.List(r.Context(), h.scope()...)
	if err != nil {
		h.fail(w, r, "list", err, "Failed to fetch files")
		return
	}
	if files == nil {
		files = []drivefm.FileRecord{}
	}
	writeJSON(w, http.StatusOK, filesResponse{Files: files})
}

// UploadFile handles POST /api/files with a multipart form whose "file" field holds the payload.
func (h *FilesHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	gw, ok := h.gateway(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() { _ = file.Close() }()

	opts := append(h.scope(), upload.WithContentLength(header.Size))
	rec, err := gw.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file, opts...)
	if err != nil {
		h.fail(w, r, "upload", err, "Failed to upload file")
		return
	}
	writeJSON(w, http.StatusOK, fileResponse{File: rec})
}

// DownloadFile handles GET /api/files/{id}. The content is streamed through as an attachment.
func (h *FilesHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	gw, ok := h.gateway(w, r)
	if !ok {
		return
	}
	dl, err := gw.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "download", err, "Failed to download file")
		return
	}
	defer func() { _ = dl.Close() }()

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", "attachment")
	if n, known := dl.Size.Bytes(); known {
		w.Header().Set("Content-Length", strconv.FormatInt(n, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, dl.Body); err != nil {
		// headers are gone; all that is left is to record the broken stream
		h.logger.Warn("download stream interrupted",
			slog.String("request_id", RequestIDFrom(r.Context())),
			slog.Any("error", utils.WrapReadError(err)),
		)
	}
}

// RenameFile handles PATCH /api/files/{id} with a JSON body {"name": "..."}.
func (h *FilesHandler) RenameFile(w http.ResponseWriter, r *http.Request) {
	gw, ok := h.gateway(w, r)
	if !ok {
		return
	}

	var req renameRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	rec, err := gw.Rename(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		h.fail(w, r, "rename", err, "Failed to rename file: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, fileResponse{File: rec})
}

// DeleteFile handles DELETE /api/files/{id}.
func (h *FilesHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	gw, ok := h.gateway(w, r)
	if !ok {
		return
	}
	if err := gw.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete", err, "Failed to delete file")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Thumbnail handles GET /api/files/{id}/thumbnail.
func (h *FilesHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	gw, ok := h.gateway(w, r)
	if !ok {
		return
	}
	thumb, err := gw.ResolveThumbnail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "thumbnail", err, "Failed to fetch thumbnail")
		return
	}

	data, contentType := thumb.Data, thumb.ContentType
	if thumb.Source == drivefm.SourceOriginal && h.thumbMaxEdge > 0 {
		data, contentType = h.downscale(r, data, contentType)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(h.thumbCacheMaxAge/time.Second)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *FilesHandler) downscale(r *http.Request, data []byte, contentType string) ([]byte, string) {
	scaled, scaledType, err := Downscale(data, h.thumbMaxEdge)
	if err != nil {
		h.logger.Debug("thumbnail passed through unscaled",
			slog.String("request_id", RequestIDFrom(r.Context())),
			slog.Any("error", err),
		)
		return data, contentType
	}
	if scaled == nil {
		return data, contentType
	}
	return scaled, scaledType
}
