// Package client talks to the verification server and drives the session
// state machine through the registration, login, recovery and editing flows.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Client is a typed client for the server API. Verification calls for the
// same user are single-flight: concurrent duplicate submissions coalesce
// into one request instead of racing.
type Client struct {
	baseURL string
	http    *http.Client
	group   singleflight.Group
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// Result is the client-side view of one verification call.
type Result struct {
	OK          bool
	Retryable   bool // true for server-side worker failures, safe to resubmit
	Message     string
	LockNames   []string
	UnlockNames []string
}

// serverResponse covers both the success and error bodies of the account
// endpoints.
type serverResponse struct {
	Message  string `json:"message"`
	Error    string `json:"error"`
	Gestures *struct {
		Lock   []string `json:"lock"`
		Unlock []string `json:"unlock"`
	} `json:"gestures"`
}

// Exists asks the existence oracle about a username. A transport failure is
// an error, never treated as "does not exist".
func (c *Client) Exists(ctx context.Context, user string) (bool, error) {
	return c.boolCall(ctx, "/user/exists", user)
}

// HasLock reports whether the account has a lock combination.
func (c *Client) HasLock(ctx context.Context, user string) (bool, error) {
	return c.boolCall(ctx, "/user/hasLock", user)
}

func (c *Client) boolCall(ctx context.Context, path, user string) (bool, error) {
	body, err := json.Marshal(map[string]string{"user": user})
	if err != nil {
		return false, fmt.Errorf("could not marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("could not reach server: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("could not read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%s failed with status %d", path, resp.StatusCode)
	}

	var answer bool
	if err := json.Unmarshal(raw, &answer); err != nil {
		return false, fmt.Errorf("could not parse response: %w", err)
	}
	return answer, nil
}

// verifyRequest mirrors the server's account request shape; gesture lists are
// comma-joined, order preserved.
type verifyRequest struct {
	User    string `json:"user"`
	Face    string `json:"face,omitempty"`
	Locks   string `json:"locks,omitempty"`
	Unlocks string `json:"unlocks,omitempty"`
}

func joinPaths(paths []string) string {
	return strings.Join(paths, ",")
}

// Create registers a new account.
func (c *Client) Create(ctx context.Context, user, face string, locks, unlocks []string) (*Result, error) {
	return c.verifyCall(ctx, "/user/create", verifyRequest{
		User:    user,
		Face:    face,
		Locks:   joinPaths(locks),
		Unlocks: joinPaths(unlocks),
	})
}

// Auth runs a verification call: login (face+unlocks), logout (face+locks)
// or lock-combination recovery (locks only).
func (c *Client) Auth(ctx context.Context, user, face string, locks, unlocks []string) (*Result, error) {
	return c.verifyCall(ctx, "/user/auth", verifyRequest{
		User:    user,
		Face:    face,
		Locks:   joinPaths(locks),
		Unlocks: joinPaths(unlocks),
	})
}

// FaceCheck runs a face-only check, used by face recovery.
func (c *Client) FaceCheck(ctx context.Context, user, face string) (*Result, error) {
	return c.verifyCall(ctx, "/user/face", verifyRequest{User: user, Face: face})
}

// Edit replaces bundle factors. deleteLock sends the lock delete directive.
func (c *Client) Edit(ctx context.Context, user, face string, locks, unlocks []string, deleteLock bool) (*Result, error) {
	req := verifyRequest{
		User:    user,
		Face:    face,
		Locks:   joinPaths(locks),
		Unlocks: joinPaths(unlocks),
	}
	if deleteLock {
		req.Locks = "delete"
	}
	return c.verifyCall(ctx, "/user/edit", req)
}

// Delete destroys the account.
func (c *Client) Delete(ctx context.Context, user string) (*Result, error) {
	return c.verifyCall(ctx, "/user/delete", verifyRequest{User: user})
}

func (c *Client) verifyCall(ctx context.Context, path string, req verifyRequest) (*Result, error) {
	// One outstanding verification per user and endpoint; duplicates share
	// the first call's result.
	key := req.User + " " + path
	res, err, _ := c.group.Do(key, func() (any, error) {
		return c.postVerify(ctx, path, req)
	})
	if err != nil {
		return nil, err
	}
	return res.(*Result), nil
}

func (c *Client) postVerify(ctx context.Context, path string, req verifyRequest) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("could not reach server: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response: %w", err)
	}

	var parsed serverResponse
	if len(raw) > 0 {
		// A body that fails to parse is still a usable status-only result.
		_ = json.Unmarshal(raw, &parsed)
	}

	result := &Result{
		OK:        resp.StatusCode >= 200 && resp.StatusCode < 300,
		Retryable: resp.StatusCode >= 500,
		Message:   parsed.Message,
	}
	if !result.OK {
		result.Message = parsed.Error
	}
	if parsed.Gestures != nil {
		result.LockNames = parsed.Gestures.Lock
		result.UnlockNames = parsed.Gestures.Unlock
	}
	return result, nil
}

// Upload sends local files to the server and returns the storage paths in
// the same order. The order matters: it encodes the combination sequence.
func (c *Client) Upload(ctx context.Context, paths []string) ([]string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read %s: %w", path, err)
		}
		part, err := writer.CreateFormFile("files", filepath.Base(path))
		if err != nil {
			return nil, fmt.Errorf("could not build upload form: %w", err)
		}
		if _, err := part.Write(data); err != nil {
			return nil, fmt.Errorf("could not write upload form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("could not finish upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/", &buf)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach server: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}

	var uploaded []string
	if err := json.Unmarshal(raw, &uploaded); err != nil {
		return nil, fmt.Errorf("could not parse upload response: %w", err)
	}
	return uploaded, nil
}
