package handlers

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/horusauth/horus/internal/constants"
)

// UploadHandler turns user-supplied images into server-readable paths that
// the verification pipeline consumes. Files land in a configured directory
// under random names; callers receive the paths in upload order.
type UploadHandler struct {
	dir string
}

// NewUploadHandler creates a new upload handler writing into dir.
func NewUploadHandler(dir string) *UploadHandler {
	return &UploadHandler{dir: dir}
}

// Upload handles multipart file uploads and responds with the stored paths,
// preserving the order the files were sent in.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files provided")
		return
	}

	paths, err := h.saveUploadedFiles(files)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, paths)
}

// UploadEncoded handles camera captures sent as base64 data URIs.
func (h *UploadHandler) UploadEncoded(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		if err := r.ParseForm(); err != nil {
			respondError(w, http.StatusBadRequest, "failed to parse form")
			return
		}
	}

	encoded := r.FormValue("encoded")
	if encoded == "" {
		respondError(w, http.StatusBadRequest, "no encoded image provided")
		return
	}

	data, err := decodeDataURI(encoded)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to decode image data")
		return
	}

	path, err := h.saveImage(data, ".jpg")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	respondJSON(w, http.StatusOK, []string{path})
}

func (h *UploadHandler) saveUploadedFiles(files []*multipart.FileHeader) ([]string, error) {
	var paths []string
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open file %s", fileHeader.Filename)
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s", fileHeader.Filename)
		}

		ext := filepath.Ext(filepath.Base(fileHeader.Filename))
		if ext == "" {
			ext = ".jpg"
		}
		path, err := h.saveImage(data, ext)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (h *UploadHandler) saveImage(data []byte, ext string) (string, error) {
	path := filepath.Join(h.dir, uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to save uploaded file: %w", err)
	}
	return path, nil
}

// decodeDataURI decodes a "data:image/...;base64,..." URI into raw bytes.
// Bare base64 payloads without the prefix are accepted too.
func decodeDataURI(encoded string) ([]byte, error) {
	payload := encoded
	if strings.HasPrefix(encoded, "data:") {
		_, after, found := strings.Cut(encoded, ",")
		if !found {
			return nil, fmt.Errorf("malformed data URI")
		}
		payload = after
	}
	return base64.StdEncoding.DecodeString(payload)
}
