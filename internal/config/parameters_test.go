package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	Global, Zadarma, Webhook = global{}, zadarma{}, webhook{}
	Service, Lambda = service{}, lambda{}
	Archive, Forward, Dedup = archive{}, forward{}, dedup{}
}

func TestSetDefaults(t *testing.T) {
	reset()
	require.NoError(t, SetDefaults())

	assert.Equal(t, ModeService, Global.Mode)
	assert.Equal(t, "static", Zadarma.AuthMode)
	assert.Equal(t, "Signature", Webhook.SignatureHeader)
	assert.Equal(t, "8080", Service.Port)
	assert.Equal(t, 5*time.Second, Service.Timeout)
	assert.Equal(t, "api-gateway-v2", Lambda.PayloadType)
	assert.Equal(t, "zadarma", Archive.Prefix)
	assert.Equal(t, "none", Dedup.Backend)
	assert.Equal(t, time.Hour, Dedup.TTL)
	assert.Equal(t, "localhost:6379", Dedup.Redis.Address)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
global:
  mode: lambda-http
zadarma:
  authMode: ssm
  ssmKey: /zadarma/credentials
  sandbox: true
webhook:
  requireSignature: true
  events: [NOTIFY_START, NOTIFY_END]
dedup:
  backend: redis
  ttl: 30m
  redis:
    address: redis:6379
`), 0o600))

	reset()
	require.NoError(t, LoadFromFile(path))
	require.NoError(t, SetDefaults())

	assert.Equal(t, ModeLambdaHTTP, Global.Mode)
	assert.Equal(t, "ssm", Zadarma.AuthMode)
	assert.Equal(t, "/zadarma/credentials", Zadarma.SSMKey)
	assert.True(t, Zadarma.Sandbox)
	assert.True(t, Webhook.RequireSignature)
	assert.Equal(t, []string{"NOTIFY_START", "NOTIFY_END"}, Webhook.Events)
	assert.Equal(t, "Signature", Webhook.SignatureHeader)
	assert.Equal(t, "redis", Dedup.Backend)
	assert.Equal(t, 30*time.Minute, Dedup.TTL)
	assert.Equal(t, "redis:6379", Dedup.Redis.Address)
}

func TestLoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LoadFromFile(""))
	assert.NoError(t, LoadFromFile(filepath.Join(dir, "missing.yaml")))
	assert.Error(t, LoadFromFile(dir))

	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("global: ["), 0o600))
	assert.Error(t, LoadFromFile(path))
}
