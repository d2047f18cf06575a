package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/horusauth/horus/internal/store"
	"github.com/horusauth/horus/internal/verify"
)

// lockDeleteDirective in the locks field of an edit request removes the lock
// combination instead of replacing it.
const lockDeleteDirective = "delete"

// UserHandler handles the account endpoints: existence checks, creation,
// verification, editing and deletion.
type UserHandler struct {
	store    store.Store
	pipeline *verify.Pipeline
}

// NewUserHandler creates a new user handler.
func NewUserHandler(st store.Store, pipeline *verify.Pipeline) *UserHandler {
	return &UserHandler{
		store:    st,
		pipeline: pipeline,
	}
}

// userRequest is the shared request shape of the account endpoints. Gesture
// path lists travel as comma-joined strings whose order encodes the
// combination sequence.
type userRequest struct {
	User    string `json:"user"`
	Face    string `json:"face"`
	Locks   string `json:"locks"`
	Unlocks string `json:"unlocks"`
}

// decodeUserRequest accepts either a JSON body or a form-encoded one; the
// original clients sent both depending on the flow.
func decodeUserRequest(r *http.Request) (userRequest, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var req userRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return userRequest{}, fmt.Errorf("decoding JSON body: %w", err)
		}
		return req, nil
	}

	if err := r.ParseMultipartForm(1 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			return userRequest{}, fmt.Errorf("parsing form body: %w", err)
		}
	}
	return userRequest{
		User:    r.FormValue("user"),
		Face:    r.FormValue("face"),
		Locks:   r.FormValue("locks"),
		Unlocks: r.FormValue("unlocks"),
	}, nil
}

// Exists reports whether an account exists for the username. An oracle
// transport failure is a hard error, never a false.
func (h *UserHandler) Exists(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUserRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.User == "" {
		respondError(w, http.StatusBadRequest, "user is required")
		return
	}

	exists, err := h.store.Exists(r.Context(), req.User)
	if err != nil {
		log.Printf("existence check failed for %s: %v", sanitizeForLog(req.User), err)
		respondError(w, http.StatusInternalServerError, "could not check whether the user exists")
		return
	}
	respondJSON(w, http.StatusOK, exists)
}

// HasLock reports whether the account has a lock combination, which decides
// the recovery branch offered to the user.
func (h *UserHandler) HasLock(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUserRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.User == "" {
		respondError(w, http.StatusBadRequest, "user is required")
		return
	}

	hasLock, err := h.store.HasLockCombination(r.Context(), req.User)
	if err != nil {
		log.Printf("lock combination check failed for %s: %v", sanitizeForLog(req.User), err)
		respondError(w, http.StatusInternalServerError, "could not check the user's lock combination")
		return
	}
	respondJSON(w, http.StatusOK, hasLock)
}

// createResponse confirms a created or edited bundle with the gesture names
// the classifier read from the supplied images.
type createResponse struct {
	Message  string               `json:"message"`
	Gestures *verify.EnrollResult `json:"gestures,omitempty"`
}

// Create registers a new account from a face image and gesture combinations.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUserRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	result, out := h.pipeline.Create(r.Context(), verify.EnrollRequest{
		User:    req.User,
		Face:    req.Face,
		Locks:   splitPaths(req.Locks),
		Unlocks: splitPaths(req.Unlocks),
	})
	respondOutcome(w, out, http.StatusCreated, createResponse{
		Message:  "user created",
		Gestures: result,
	})
}

// Auth runs the verification pipeline for login, logout and recovery calls.
func (h *UserHandler) Auth(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUserRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	out := h.pipeline.Verify(r.Context(), verify.Request{
		User:    req.User,
		Face:    req.Face,
		Locks:   splitPaths(req.Locks),
		Unlocks: splitPaths(req.Unlocks),
	})
	respondOutcome(w, out, http.StatusOK, map[string]string{"message": "authenticated"})
}

// Face runs a face-only check, used by combination recovery.
func (h *UserHandler) Face(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUserRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Face == "" {
		respondError(w, http.StatusBadRequest, "a face image is required")
		return
	}

	out := h.pipeline.Verify(r.Context(), verify.Request{
		User: req.User,
		Face: req.Face,
	})
	respondOutcome(w, out, http.StatusOK, map[string]string{"message": "face matched"})
}

// Edit replaces individual factors of the credential bundle. Sending the
// literal "delete" as the locks value removes the lock combination.
func (h *UserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUserRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	enroll := verify.EnrollRequest{
		User:    req.User,
		Face:    req.Face,
		Unlocks: splitPaths(req.Unlocks),
	}
	if strings.EqualFold(req.Locks, lockDeleteDirective) {
		enroll.DeleteLock = true
	} else {
		enroll.Locks = splitPaths(req.Locks)
	}

	result, out := h.pipeline.Edit(r.Context(), enroll)
	respondOutcome(w, out, http.StatusCreated, createResponse{
		Message:  "account updated",
		Gestures: result,
	})
}

// Delete destroys an account and all its stored factors.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	req, err := decodeUserRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	out := h.pipeline.Delete(r.Context(), req.User)
	respondOutcome(w, out, http.StatusOK, map[string]string{"message": "account deleted"})
}
