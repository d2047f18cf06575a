package handlers

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
)

func multipartUpload(t *testing.T, contents []string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for i, content := range contents {
		part, err := writer.CreateFormFile("files", "photo"+string(rune('a'+i))+".jpg")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadHandler_Upload(t *testing.T) {
	dir := t.TempDir()
	handler := NewUploadHandler(dir)

	recorder := httptest.NewRecorder()
	handler.Upload(recorder, multipartUpload(t, []string{"first", "second", "third"}))
	assertStatusCode(t, recorder, http.StatusOK)

	var paths []string
	parseJSONResponse(t, recorder, &paths)
	if len(paths) != 3 {
		t.Fatalf("expected 3 paths, got %d", len(paths))
	}

	// Returned order must match upload order: it encodes the combination.
	for i, content := range []string{"first", "second", "third"} {
		data, err := os.ReadFile(paths[i])
		if err != nil {
			t.Fatalf("failed to read uploaded file: %v", err)
		}
		if string(data) != content {
			t.Errorf("path %d: expected content %q, got %q", i, content, data)
		}
	}
}

func TestUploadHandler_Upload_NoFiles(t *testing.T) {
	handler := NewUploadHandler(t.TempDir())

	recorder := httptest.NewRecorder()
	handler.Upload(recorder, multipartUpload(t, nil))
	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "no files provided")
}

func TestUploadHandler_UploadEncoded(t *testing.T) {
	dir := t.TempDir()
	handler := NewUploadHandler(dir)

	payload := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("camera-frame"))
	form := url.Values{"encoded": {payload}}
	req := httptest.NewRequest(http.MethodPost, "/upload/encoded", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	recorder := httptest.NewRecorder()
	handler.UploadEncoded(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	var paths []string
	parseJSONResponse(t, recorder, &paths)
	if len(paths) != 1 {
		t.Fatalf("expected 1 path, got %d", len(paths))
	}
	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("failed to read decoded image: %v", err)
	}
	if string(data) != "camera-frame" {
		t.Errorf("expected decoded frame, got %q", data)
	}
}

func TestUploadHandler_UploadEncoded_Missing(t *testing.T) {
	handler := NewUploadHandler(t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/upload/encoded", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	recorder := httptest.NewRecorder()
	handler.UploadEncoded(recorder, req)
	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestDecodeDataURI(t *testing.T) {
	raw := []byte("hello")
	encoded := base64.StdEncoding.EncodeToString(raw)

	for _, input := range []string{
		"data:image/png;base64," + encoded,
		encoded,
	} {
		got, err := decodeDataURI(input)
		if err != nil {
			t.Fatalf("decodeDataURI(%q): %v", input, err)
		}
		if !bytes.Equal(got, raw) {
			t.Errorf("decodeDataURI(%q) = %q, want %q", input, got, raw)
		}
	}

	if _, err := decodeDataURI("data:image/png;base64"); err == nil {
		t.Error("expected an error for a data URI without a payload")
	}
}
