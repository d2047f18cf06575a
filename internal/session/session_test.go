package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveState(t *testing.T) {
	tests := []struct {
		name string
		data Data
		want State
	}{
		{"empty session", Data{}, Anonymous},
		{"username only", Data{Username: "alice"}, UsernameEntered},
		{"unknown account", Data{Username: "alice", Exists: Unknown}, UsernameEntered},
		{"new account", Data{Username: "alice", Exists: False}, Registering},
		{"known account", Data{Username: "alice", Exists: True}, LoggingIn},
		{"authenticated", Data{Username: "alice", Exists: True, Authenticated: true}, Authenticated},
		{"authenticated flag without username", Data{Authenticated: true}, Anonymous},
		{"authenticated flag without resolved existence", Data{Username: "alice", Authenticated: true}, UsernameEntered},
		{"authenticated flag on nonexistent account", Data{Username: "alice", Exists: False, Authenticated: true}, Registering},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveState(tt.data))
		})
	}
}

func TestTristateJSONRoundTrip(t *testing.T) {
	for _, v := range []Tristate{Unknown, False, True} {
		raw, err := json.Marshal(v)
		require.NoError(t, err)

		var got Tristate
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, v, got)
	}
}

func TestTristateRejectsGarbage(t *testing.T) {
	var v Tristate
	assert.Error(t, json.Unmarshal([]byte(`"maybe"`), &v))
	assert.Error(t, json.Unmarshal([]byte(`42`), &v))
}

func TestGate(t *testing.T) {
	tests := []struct {
		state State
		view  View
		want  View
	}{
		{Anonymous, ViewDashboard, ViewHome},
		{Anonymous, ViewHome, ViewHome},
		{UsernameEntered, ViewAuth, ViewHome},
		{Registering, ViewAuth, ViewAuth},
		{LoggingIn, ViewAuth, ViewAuth},
		{LoggingIn, ViewForgot, ViewForgot},
		{LoggingIn, ViewDashboard, ViewHome},
		{RecoveringViaLock, ViewForgot, ViewForgot},
		{RecoveringViaFace, ViewForgot, ViewForgot},
		{Authenticated, ViewDashboard, ViewDashboard},
		{Authenticated, ViewLogout, ViewLogout},
		{Authenticated, ViewEdit, ViewEdit},
		{Authenticated, ViewAuth, ViewHome},
		{Authenticated, ViewForgot, ViewHome},
	}

	for _, tt := range tests {
		got := Gate(tt.state, tt.view)
		assert.Equal(t, tt.want, got, "state %s requesting %s", tt.state, tt.view)
	}
}
