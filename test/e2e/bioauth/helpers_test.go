package bioauth_test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/bioauth/pkg/authsdk"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and assertions shared by the bioauth end-to-end tests.
 */

const (
	testImageName = "bioauth-test:latest"
	testPassword  = "correct-horse-battery"
)

// relaxedLimits keeps the login endpoints from throttling tests that make
// many rapid requests.
var relaxedLimits = map[string]string{
	"BIOAUTH_RATELIMIT_STRICT_REQUESTS":   "1000",
	"BIOAUTH_RATELIMIT_STRICT_WINDOW_SEC": "60",
	"BIOAUTH_RATELIMIT_STRICT_BURST":      "1000",
	"BIOAUTH_RATELIMIT_MODERATE_REQUESTS": "1000",
	"BIOAUTH_RATELIMIT_MODERATE_BURST":    "1000",
}

// TestMain builds the Docker image once before all tests and removes it
// afterwards. With -short nothing is built and every test skips.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	fmt.Fprintf(os.Stdout, "Building bioauth Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up bioauth Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/bioauth/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

// setupContainer starts the service and returns its base URL. extraEnv is
// merged over the defaults.
func setupContainer(t *testing.T, extraEnv map[string]string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("e2e tests need Docker")
	}
	ctx := context.Background()

	env := map[string]string{
		"BIOAUTH_ISSUER":   "bioauth-e2e",
		"BIOAUTH_NUM_KEYS": "1",
		"ENV":              "test",
		"LOG_LEVEL":        "info",
		"LOG_FORMAT":       "json",
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
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
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// template returns a DefaultBits template with the given positions set.
func template(positions ...int) string {
	return biohash.Encode(biohash.New(biohash.DefaultBits).Flip(positions...))
}

// registerIdentity registers username with tpl and returns its session.
func registerIdentity(t *testing.T, client *authsdk.Client, username, tpl string) (*authsdk.Session, *authsdk.RegisterResponse) {
	t.Helper()

	session, resp, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: testPassword,
		Template: tpl,
	})
	require.NoError(t, err, "register %s", username)
	require.NotEmpty(t, resp.AccessToken)
	return session, resp
}

func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

// assertStatus checks err is an *authsdk.APIError with the given status.
func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode, apiErr.Error())
}
