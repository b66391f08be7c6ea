package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDotenv(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), ".env")
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	loaded, err := load(noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, ":8080", loaded.Server.Addr)
	assert.Equal(t, "vgsales.csv", loaded.Data.Source)
}

func TestEnvOverridesFileOverridesDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "gamesales.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  addr: ":9000"
  read_timeout: 5s
data:
  source: s3://datasets/vgsales.csv
  workers: 4
logging:
  level: debug
`), 0o600))

	t.Setenv(FileEnv, file)
	t.Setenv("GAMESALES_DATA_WORKERS", "8")
	t.Setenv("GAMESALES_SERVER_ALLOWED_ORIGINS", "http://a.example,http://b.example")

	cfg, err := load(noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "s3://datasets/vgsales.csv", cfg.Data.Source)
	assert.Equal(t, 8, cfg.Data.Workers)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestDotenvFileIsRead(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("GAMESALES_DATA_SOURCE=https://example.com/vgsales.csv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("GAMESALES_DATA_SOURCE") })

	cfg, err := load(dotenv)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/vgsales.csv", cfg.Data.Source)
}

func TestInvalidConfigIsRejected(t *testing.T) {
	tests := map[string]struct {
		env   string
		value string
		field string
	}{
		"log level":    {"GAMESALES_LOGGING_LEVEL", "verbose", "Level"},
		"addr":         {"GAMESALES_SERVER_ADDR", "not an addr", "Addr"},
		"sample ratio": {"GAMESALES_TRACING_SAMPLE_RATIO", "1.5", "SampleRatio"},
		"exporter":     {"GAMESALES_TRACING_EXPORTER", "otlp", "Exporter"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			_, err := load(noDotenv(t))
			require.Error(t, err)

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}
}

func TestMalformedEnvValue(t *testing.T) {
	t.Setenv("GAMESALES_DATA_WORKERS", "many")
	_, err := load(noDotenv(t))
	assert.ErrorContains(t, err, "failed to load config from env")
}

func TestMissingConfigFile(t *testing.T) {
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := load(noDotenv(t))
	assert.ErrorContains(t, err, "failed to load config from file")
}
