package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func TestHealthHandler_Healthy(t *testing.T) {
	s := NewServer("compliance-auditor", zap.NewNop())
	s.AddCheck("redis", func(context.Context) error { return nil })

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "compliance-auditor", resp.Service)
	assert.Equal(t, map[string]string{"redis": "connected"}, resp.Dependencies)
	assert.NotNil(t, resp.System)
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	s := NewServer("compliance-auditor", nil)
	s.AddCheck("nats", func(context.Context) error { return errors.New("not connected") })

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "disconnected: not connected")
}

func TestGRPCHealth_TracksChecks(t *testing.T) {
	s := NewServer("compliance-auditor", nil)
	healthy := true
	s.AddCheck("postgres", func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("down")
	})

	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.ServeGRPC(lis) }()
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	ctx := context.Background()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "compliance-auditor"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	healthy = false
	s.Evaluate(ctx)

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "compliance-auditor"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}
