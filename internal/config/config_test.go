package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
api:
  environment: test
  port: "9090"
  jwt_signing_key: secret
  allowed_cors_domains:
    - http://localhost:3000
gin:
  mode: test
postgres:
  host: db
  port: "5432"
  user: stalls
  password: stalls
  db: stalls
checkin:
  signing_key: checkin-secret
  frontend_base_url: https://expo.example.com
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	conf, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "test", conf.API.Environment)
	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, conf.API.AllowedCORSDomains)
	assert.Equal(t, "test", conf.Gin.Mode)
	assert.Equal(t, "host=db port=5432 user=stalls password=stalls dbname=stalls sslmode=disable", conf.Postgres.DSN())
	assert.Equal(t, "stall-booking-api", conf.CheckIn.Issuer)
	assert.Equal(t, 30*time.Second, conf.Redis.CapacityTTL)
	assert.Equal(t, "stall.inventory", conf.RabbitMQ.Exchange)
	assert.Empty(t, conf.RabbitMQ.URL)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("API_PORT", "7070")
	t.Setenv("REDIS_ADDR", "cache:6379")

	conf, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "7070", conf.API.Port)
	assert.Equal(t, "cache:6379", conf.Redis.Addr)
}

func TestLoad_MissingSigningKey(t *testing.T) {
	_, err := Load(writeConfig(t, "api:\n  jwt_signing_key: secret\n"))
	assert.ErrorContains(t, err, "checkin.signing_key")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
