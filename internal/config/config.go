package config

import (
	"os"
	"strconv"
	"time"

	"github.com/horusauth/horus/internal/constants"
)

type Config struct {
	Server      ServerConfig
	S3          S3Config
	OpenAI      OpenAIConfig
	Gemini      GeminiConfig
	Recognition RecognitionConfig
	Upload      UploadConfig
	Client      ClientConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, for MinIO or other S3-compatible storage
	AccessKey string
	SecretKey string
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type RecognitionConfig struct {
	Provider string        // "openai" (default) or "gemini"
	Timeout  time.Duration // per recognition call
}

type UploadConfig struct {
	Dir string // directory where uploaded images are stored before verification
}

type ClientConfig struct {
	ServerURL   string
	SessionFile string // persisted session state, defaults next to the binary
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads an environment variable as a time.Duration string ("30s").
// Returns the default value if the env var is unset, empty, or invalid.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

// envDefault reads an environment variable with a fallback.
func envDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envDefault("HORUS_HOST", "0.0.0.0"),
			Port: envInt("HORUS_PORT", 3001),
		},
		S3: S3Config{
			Bucket:    os.Getenv("FACE_RECOG_BUCKET"),
			Region:    envDefault("FACE_RECOG_REGION", "eu-west-1"),
			Endpoint:  os.Getenv("FACE_RECOG_ENDPOINT"),
			AccessKey: os.Getenv("FACE_RECOG_ACCESS_KEY"),
			SecretKey: os.Getenv("FACE_RECOG_SECRET_KEY"),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Recognition: RecognitionConfig{
			Provider: envDefault("RECOGNITION_PROVIDER", "openai"),
			Timeout:  envDuration("RECOGNITION_TIMEOUT", constants.DefaultWorkerTimeout),
		},
		Upload: UploadConfig{
			Dir: envDefault("UPLOAD_DIR", os.TempDir()),
		},
		Client: ClientConfig{
			ServerURL:   envDefault("HORUS_SERVER_URL", "http://localhost:3001"),
			SessionFile: envDefault("HORUS_SESSION_FILE", defaultSessionFile()),
		},
	}
}

// defaultSessionFile places the persisted session in the user config dir,
// falling back to the working directory when it cannot be resolved.
func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".horus-session.json"
	}
	return dir + "/horus/session.json"
}
