package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.Recognition.Provider)
	assert.Positive(t, cfg.Recognition.Timeout)
	assert.NotEmpty(t, cfg.Upload.Dir)
	assert.NotEmpty(t, cfg.Client.SessionFile)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HORUS_HOST", "127.0.0.1")
	t.Setenv("HORUS_PORT", "9000")
	t.Setenv("FACE_RECOG_BUCKET", "horus-test")
	t.Setenv("RECOGNITION_PROVIDER", "gemini")
	t.Setenv("RECOGNITION_TIMEOUT", "45s")

	cfg := Load()
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "horus-test", cfg.S3.Bucket)
	assert.Equal(t, "gemini", cfg.Recognition.Provider)
	assert.Equal(t, 45*time.Second, cfg.Recognition.Timeout)
}

func TestEnvHelpersIgnoreInvalidValues(t *testing.T) {
	t.Setenv("HORUS_PORT", "not-a-number")
	t.Setenv("RECOGNITION_TIMEOUT", "-5s")

	cfg := Load()
	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Positive(t, cfg.Recognition.Timeout)
}
