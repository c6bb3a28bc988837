package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "HEALTH_PORT", "GRPC_PORT", "INCIDENT_STORE", "USE_CLASSIFIER", "AGENT_TIMEOUT", "SALESFORCE_API_VERSION"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "8081", cfg.HealthPort)
	assert.Equal(t, "50051", cfg.GRPCPort)
	assert.Equal(t, StoreSalesforce, cfg.IncidentStore)
	assert.Equal(t, "v58.0", cfg.SalesforceAPIVersion)
	assert.Equal(t, 30*time.Second, cfg.AgentTimeout)
	assert.False(t, cfg.UseClassifier)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("USE_CLASSIFIER", "true")
	t.Setenv("USE_AGENT", "1")
	t.Setenv("ENABLE_MOCK_MODE", "TRUE")
	t.Setenv("INCIDENT_STORE", "Redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("AGENT_TIMEOUT", "5s")

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.UseClassifier)
	assert.True(t, cfg.UseAgent)
	assert.True(t, cfg.EnableMockMode)
	assert.Equal(t, StoreRedis, cfg.IncidentStore)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 5*time.Second, cfg.AgentTimeout)
}

func TestValidate(t *testing.T) {
	base := Config{Port: "3000", HealthPort: "8081", GRPCPort: "50051", IncidentStore: StoreSalesforce}
	assert.NoError(t, base.Validate())

	redis := base
	redis.IncidentStore = StoreRedis
	assert.Error(t, redis.Validate())

	postgres := base
	postgres.IncidentStore = StorePostgres
	assert.Error(t, postgres.Validate())
	postgres.DatabaseURL = "postgres://localhost/compliance"
	assert.NoError(t, postgres.Validate())

	unknown := base
	unknown.IncidentStore = "mongo"
	assert.Error(t, unknown.Validate())

	noPort := base
	noPort.Port = ""
	assert.Error(t, noPort.Validate())
}

func TestRequireSlack(t *testing.T) {
	cfg := Config{}
	assert.Error(t, cfg.RequireSlack())

	cfg.SlackBotToken = "xoxb-1"
	assert.Error(t, cfg.RequireSlack())

	cfg.SlackSigningSecret = "secret"
	assert.NoError(t, cfg.RequireSlack())
}
