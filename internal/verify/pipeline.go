package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/horusauth/horus/internal/constants"
	"github.com/horusauth/horus/internal/recognition"
	"github.com/horusauth/horus/internal/store"
)

// Request is one transient verification request. Face, Locks and Unlocks are
// server-readable image paths produced by the upload channel; at least one
// factor must be present.
type Request struct {
	User    string
	Face    string
	Locks   []string
	Unlocks []string
}

// Pipeline runs at most two sequential recognition stages per request: the
// face stage first when a face is supplied, then exactly one gesture stage.
// It holds no state between runs, so concurrent runs need no locking; account
// mutations are serialized per username instead.
type Pipeline struct {
	provider recognition.Provider
	store    store.Store
	timeout  time.Duration
	locks    *store.AccountLocks
}

func New(provider recognition.Provider, st store.Store, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = constants.DefaultWorkerTimeout
	}
	return &Pipeline{
		provider: provider,
		store:    st,
		timeout:  timeout,
		locks:    store.NewAccountLocks(),
	}
}

// Verify produces exactly one Outcome for a request. The face stage runs
// first and short-circuits the gesture stage on anything but a match. When
// both lock and unlock images are supplied, only the lock check runs: the
// two are mutually exclusive per run, locks preferred.
func (p *Pipeline) Verify(ctx context.Context, req Request) Outcome {
	if req.User == "" {
		return Invalid("user is required")
	}
	if req.Face == "" && len(req.Locks) == 0 && len(req.Unlocks) == 0 {
		return Invalid("at least one of face, locks or unlocks is required")
	}

	if req.Face != "" {
		if out := p.faceStage(ctx, req.User, req.Face); out.Kind != Success {
			return out
		}
		if len(req.Locks) == 0 && len(req.Unlocks) == 0 {
			return Succeeded()
		}
	}

	role, paths := store.RoleUnlock, req.Unlocks
	if len(req.Locks) > 0 {
		role, paths = store.RoleLock, req.Locks
	}
	return p.gestureStage(ctx, req.User, role, paths)
}

func (p *Pipeline) faceStage(ctx context.Context, user, path string) Outcome {
	reference, err := p.store.LoadFace(ctx, user)
	if errors.Is(err, store.ErrNotFound) {
		// An unknown user reads the same as a wrong face.
		return Mismatched()
	}
	if err != nil {
		return Unavailable(err)
	}

	probe, out, ok := readImage(path)
	if !ok {
		return out
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	match, err := p.provider.MatchFace(callCtx, reference, probe)
	if err != nil {
		return Unavailable(err)
	}
	if !match {
		return Mismatched()
	}
	return Succeeded()
}

func (p *Pipeline) gestureStage(ctx context.Context, user string, role store.Role, paths []string) Outcome {
	bundle, err := p.store.LoadBundle(ctx, user)
	if errors.Is(err, store.ErrNotFound) {
		return Mismatched()
	}
	if err != nil {
		return Unavailable(err)
	}

	combination := bundle.Combination(role)
	if len(combination) == 0 || len(paths) != len(combination) {
		return Mismatched()
	}

	for i, path := range paths {
		data, out, ok := readImage(path)
		if !ok {
			return out
		}

		name, err := p.classify(ctx, data)
		if err != nil {
			return Unavailable(err)
		}
		// An unclassifiable image during authentication is just a wrong
		// gesture; naming it would leak combination structure.
		if name == constants.GestureUnknown || name != combination[i].Gesture {
			return Mismatched()
		}
	}
	return Succeeded()
}

func (p *Pipeline) classify(ctx context.Context, data []byte) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.provider.ClassifyGesture(callCtx, data)
}

// readImage loads an uploaded image path and verifies it decodes as an image
// before it is sent anywhere near a recognition backend.
func readImage(path string) ([]byte, Outcome, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Invalid(fmt.Sprintf("could not read file %s", path)), false
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, Invalid(fmt.Sprintf("file %s is not an image, only jpg and png files are valid", path)), false
	}
	return data, Outcome{}, true
}
