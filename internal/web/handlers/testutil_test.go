package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/horusauth/horus/internal/store"
	"github.com/horusauth/horus/internal/verify"
)

// fakeProvider answers recognition calls from canned results.
type fakeProvider struct {
	faceMatch bool
	faceErr   error
	gestures  []string // consumed in call order
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) MatchFace(ctx context.Context, reference, probe []byte) (bool, error) {
	return f.faceMatch, f.faceErr
}

func (f *fakeProvider) ClassifyGesture(ctx context.Context, img []byte) (string, error) {
	if len(f.gestures) == 0 {
		return "UNKNOWN", nil
	}
	name := f.gestures[0]
	f.gestures = f.gestures[1:]
	return name, nil
}

// newTestPipeline wires a pipeline around a fake provider and a fresh
// in-memory store.
func newTestPipeline(provider *fakeProvider) (*verify.Pipeline, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return verify.New(provider, st, time.Second), st
}

// seedAccount creates an account directly in the store.
func seedAccount(t *testing.T, st *store.MemoryStore, user string, lock, unlock []string) {
	t.Helper()
	acct := &store.Account{User: user, Face: []byte("face-bytes")}
	for _, g := range lock {
		acct.Lock = append(acct.Lock, store.GestureImage{Gesture: g, Data: []byte("img")})
	}
	for _, g := range unlock {
		acct.Unlock = append(acct.Unlock, store.GestureImage{Gesture: g, Data: []byte("img")})
	}
	if err := st.CreateAccount(context.Background(), acct); err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
}

// writeTestImage writes a decodable PNG and returns its path.
func writeTestImage(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}
	return path
}

// jsonRequest builds a JSON POST request
func jsonRequest(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}

// assertJSONErrorContains checks if the JSON error message contains a substring
func assertJSONErrorContains(t *testing.T, recorder *httptest.ResponseRecorder, substring string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if !strings.Contains(result["error"], substring) {
		t.Errorf("expected error containing '%s', got '%s'", substring, result["error"])
	}
}
