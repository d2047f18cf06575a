package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/horusauth/horus/internal/constants"
)

func TestUserHandler_Exists(t *testing.T) {
	pipeline, st := newTestPipeline(&fakeProvider{})
	seedAccount(t, st, "alice", nil, []string{"open_palm"})
	handler := NewUserHandler(st, pipeline)

	recorder := httptest.NewRecorder()
	handler.Exists(recorder, jsonRequest(t, "/user/exists", map[string]string{"user": "alice"}))
	assertStatusCode(t, recorder, http.StatusOK)

	var exists bool
	parseJSONResponse(t, recorder, &exists)
	if !exists {
		t.Error("expected alice to exist")
	}

	recorder = httptest.NewRecorder()
	handler.Exists(recorder, jsonRequest(t, "/user/exists", map[string]string{"user": "ghost"}))
	assertStatusCode(t, recorder, http.StatusOK)
	parseJSONResponse(t, recorder, &exists)
	if exists {
		t.Error("expected ghost not to exist")
	}
}

func TestUserHandler_Exists_MissingUser(t *testing.T) {
	pipeline, st := newTestPipeline(&fakeProvider{})
	handler := NewUserHandler(st, pipeline)

	recorder := httptest.NewRecorder()
	handler.Exists(recorder, jsonRequest(t, "/user/exists", map[string]string{}))
	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "user is required")
}

func TestUserHandler_Exists_FormBody(t *testing.T) {
	pipeline, st := newTestPipeline(&fakeProvider{})
	seedAccount(t, st, "alice", nil, []string{"open_palm"})
	handler := NewUserHandler(st, pipeline)

	form := url.Values{"user": {"alice"}}
	req := httptest.NewRequest(http.MethodPost, "/user/exists", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	recorder := httptest.NewRecorder()
	handler.Exists(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	var exists bool
	parseJSONResponse(t, recorder, &exists)
	if !exists {
		t.Error("expected alice to exist via form body")
	}
}

func TestUserHandler_HasLock(t *testing.T) {
	pipeline, st := newTestPipeline(&fakeProvider{})
	seedAccount(t, st, "alice", []string{"closed_fist"}, []string{"open_palm"})
	seedAccount(t, st, "bob", nil, []string{"victory"})
	handler := NewUserHandler(st, pipeline)

	for _, tt := range []struct {
		user string
		want bool
	}{
		{"alice", true},
		{"bob", false},
		{"ghost", false},
	} {
		recorder := httptest.NewRecorder()
		handler.HasLock(recorder, jsonRequest(t, "/user/hasLock", map[string]string{"user": tt.user}))
		assertStatusCode(t, recorder, http.StatusOK)

		var hasLock bool
		parseJSONResponse(t, recorder, &hasLock)
		if hasLock != tt.want {
			t.Errorf("hasLock(%s) = %v, want %v", tt.user, hasLock, tt.want)
		}
	}
}

func TestUserHandler_Create(t *testing.T) {
	dir := t.TempDir()
	pipeline, st := newTestPipeline(&fakeProvider{gestures: []string{"open_palm", "victory"}})
	handler := NewUserHandler(st, pipeline)

	recorder := httptest.NewRecorder()
	handler.Create(recorder, jsonRequest(t, "/user/create", map[string]string{
		"user":    "alice",
		"face":    writeTestImage(t, dir, "face.png"),
		"unlocks": writeTestImage(t, dir, "u1.png") + "," + writeTestImage(t, dir, "u2.png"),
	}))
	assertStatusCode(t, recorder, http.StatusCreated)

	var resp struct {
		Message  string `json:"message"`
		Gestures struct {
			Unlock []string `json:"unlock"`
		} `json:"gestures"`
	}
	parseJSONResponse(t, recorder, &resp)
	if len(resp.Gestures.Unlock) != 2 || resp.Gestures.Unlock[0] != "open_palm" {
		t.Errorf("unexpected classified combination: %v", resp.Gestures.Unlock)
	}
}

func TestUserHandler_Create_MissingFace(t *testing.T) {
	dir := t.TempDir()
	pipeline, st := newTestPipeline(&fakeProvider{})
	handler := NewUserHandler(st, pipeline)

	recorder := httptest.NewRecorder()
	handler.Create(recorder, jsonRequest(t, "/user/create", map[string]string{
		"user":    "alice",
		"unlocks": writeTestImage(t, dir, "u1.png"),
	}))
	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "a face image is required")
}

func TestUserHandler_Auth_Success(t *testing.T) {
	dir := t.TempDir()
	pipeline, st := newTestPipeline(&fakeProvider{faceMatch: true, gestures: []string{"open_palm"}})
	seedAccount(t, st, "alice", nil, []string{"open_palm"})
	handler := NewUserHandler(st, pipeline)

	recorder := httptest.NewRecorder()
	handler.Auth(recorder, jsonRequest(t, "/user/auth", map[string]string{
		"user":    "alice",
		"face":    writeTestImage(t, dir, "face.png"),
		"unlocks": writeTestImage(t, dir, "g1.png"),
	}))
	assertStatusCode(t, recorder, http.StatusOK)
}

func TestUserHandler_Auth_Mismatch(t *testing.T) {
	dir := t.TempDir()
	pipeline, st := newTestPipeline(&fakeProvider{faceMatch: false})
	seedAccount(t, st, "alice", nil, []string{"open_palm"})
	handler := NewUserHandler(st, pipeline)

	recorder := httptest.NewRecorder()
	handler.Auth(recorder, jsonRequest(t, "/user/auth", map[string]string{
		"user": "alice",
		"face": writeTestImage(t, dir, "face.png"),
	}))
	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, constants.MismatchMessage)
}

func TestUserHandler_Auth_UnknownUserLooksLikeMismatch(t *testing.T) {
	dir := t.TempDir()
	pipeline, st := newTestPipeline(&fakeProvider{faceMatch: true})
	handler := NewUserHandler(st, pipeline)

	recorder := httptest.NewRecorder()
	handler.Auth(recorder, jsonRequest(t, "/user/auth", map[string]string{
		"user": "ghost",
		"face": writeTestImage(t, dir, "face.png"),
	}))
	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, constants.MismatchMessage)
}

func TestUserHandler_Face(t *testing.T) {
	dir := t.TempDir()
	pipeline, st := newTestPipeline(&fakeProvider{faceMatch: true})
	seedAccount(t, st, "alice", nil, []string{"open_palm"})
	handler := NewUserHandler(st, pipeline)

	recorder := httptest.NewRecorder()
	handler.Face(recorder, jsonRequest(t, "/user/face", map[string]string{
		"user": "alice",
		"face": writeTestImage(t, dir, "face.png"),
	}))
	assertStatusCode(t, recorder, http.StatusOK)

	// Face is mandatory here, unlike auth.
	recorder = httptest.NewRecorder()
	handler.Face(recorder, jsonRequest(t, "/user/face", map[string]string{"user": "alice"}))
	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestUserHandler_Edit_DeleteLockDirective(t *testing.T) {
	pipeline, st := newTestPipeline(&fakeProvider{})
	seedAccount(t, st, "alice", []string{"closed_fist"}, []string{"open_palm"})
	handler := NewUserHandler(st, pipeline)

	recorder := httptest.NewRecorder()
	handler.Edit(recorder, jsonRequest(t, "/user/edit", map[string]string{
		"user":  "alice",
		"locks": "delete",
	}))
	assertStatusCode(t, recorder, http.StatusCreated)

	recorder = httptest.NewRecorder()
	handler.HasLock(recorder, jsonRequest(t, "/user/hasLock", map[string]string{"user": "alice"}))
	var hasLock bool
	parseJSONResponse(t, recorder, &hasLock)
	if hasLock {
		t.Error("expected the lock combination to be removed")
	}
}

func TestUserHandler_Edit_NothingToEdit(t *testing.T) {
	pipeline, st := newTestPipeline(&fakeProvider{})
	seedAccount(t, st, "alice", nil, []string{"open_palm"})
	handler := NewUserHandler(st, pipeline)

	recorder := httptest.NewRecorder()
	handler.Edit(recorder, jsonRequest(t, "/user/edit", map[string]string{"user": "alice"}))
	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "nothing to edit")
}

func TestUserHandler_Delete(t *testing.T) {
	pipeline, st := newTestPipeline(&fakeProvider{})
	seedAccount(t, st, "alice", nil, []string{"open_palm"})
	handler := NewUserHandler(st, pipeline)

	recorder := httptest.NewRecorder()
	handler.Delete(recorder, jsonRequest(t, "/user/delete", map[string]string{"user": "alice"}))
	assertStatusCode(t, recorder, http.StatusOK)

	recorder = httptest.NewRecorder()
	handler.Delete(recorder, jsonRequest(t, "/user/delete", map[string]string{"user": "alice"}))
	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONErrorContains(t, recorder, "does not exist")
}

func TestUserHandler_InvalidBody(t *testing.T) {
	pipeline, st := newTestPipeline(&fakeProvider{})
	handler := NewUserHandler(st, pipeline)

	req := httptest.NewRequest(http.MethodPost, "/user/auth", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	handler.Auth(recorder, req)
	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, errInvalidRequestBody)
}
