package kaleidoscope_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/kaleidoscope/pkg/kaleidosdk"
)

/*
 * Common constants and helper functions for the end-to-end tests.
 * This includes container setup, account operations, and assertions.
 */

const (
	testImageName = "kaleidoscope-test:latest"

	testPassword = "correct horse battery"
)

// TestMain builds the Docker image once before all tests and removes it
// after they complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Kaleidoscope Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Kaleidoscope Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/kaleidoscope/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// relaxedLimits raises every class well above what a test sends.
func relaxedLimits() map[string]string {
	env := map[string]string{}
	for _, class := range []string{"REGISTER", "LOGIN", "REFRESH", "MUSIC"} {
		env["RATELIMIT_"+class+"_REQUESTS"] = "1000"
		env["RATELIMIT_"+class+"_WINDOW_SEC"] = "60"
	}
	return env
}

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_FILE":       "/data/kaleidoscope.db",
		"PEPPER_FILE":         "/data/pepper",
		"KALEIDOSCOPE_ISSUER": "kaleidoscope-e2e",
		"NUM_KEYS":            "1",
		"ENV":                 "test",
		"LOG_LEVEL":           "info",
		"LOG_FORMAT":          "json",
	}
}

type containerOptions struct {
	env      map[string]string
	networks []string
}

// startService starts the service container and returns its base URL.
func startService(t *testing.T, opts containerOptions) string {
	t.Helper()
	ctx := context.Background()

	env := baseEnv()
	for k, v := range opts.env {
		env[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		Networks:     opts.networks,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// setupContainer starts the service with relaxed rate limits. Most tests
// should use this one.
func setupContainer(t *testing.T) string {
	t.Helper()
	return startService(t, containerOptions{env: relaxedLimits()})
}

// setupContainerWithDefaultRateLimits starts the service with the production
// limits, for tests that exercise rate limiting itself.
func setupContainerWithDefaultRateLimits(t *testing.T) string {
	t.Helper()
	return startService(t, containerOptions{})
}

// setupContainerWithRedis starts Redis and the service on a shared network,
// with sessions and rate limits kept in Redis.
func setupContainerWithRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	nw, err := network.New(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = nw.Remove(ctx) })

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          "redis:7-alpine",
			ExposedPorts:   []string{"6379/tcp"},
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {"redis"}},
			WaitingFor:     wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := redisC.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis: %v", err)
		}
	})

	env := relaxedLimits()
	env["REDIS_URL"] = "redis://redis:6379/0"

	return startService(t, containerOptions{env: env, networks: []string{nw.Name}})
}

// uniqueAccount returns an email and handle no other test uses.
func uniqueAccount(t *testing.T) (email, handle string) {
	t.Helper()
	suffix := time.Now().UnixNano()
	return fmt.Sprintf("user%d@example.com", suffix), fmt.Sprintf("user_%d", suffix)
}

// registerUser creates a fresh account and returns its session.
func registerUser(t *testing.T, client *kaleidosdk.SDKClient) (*kaleidosdk.Session, string) {
	t.Helper()

	email, handle := uniqueAccount(t)
	session, err := client.Register(t.Context(), kaleidosdk.RegisterRequest{
		Email:    email,
		Password: testPassword,
		Handle:   handle,
	})
	require.NoError(t, err, "Register should succeed")
	require.NotNil(t, session)

	return session, email
}

// assertTokenResponse verifies a token response has all required fields.
func assertTokenResponse(t *testing.T, resp *kaleidosdk.TokenResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "Access token should not be empty")
	require.NotEmpty(t, resp.RefreshToken, "Refresh token should not be empty")
	require.Equal(t, "bearer", resp.TokenType, "Token type should be bearer")
	require.Positive(t, resp.ExpiresIn)
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *kaleidosdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
