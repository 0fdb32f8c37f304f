package backoffice_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/escritorio/pkg/officesdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testImageName = "escritorio-backoffice-test:latest"

	adminUsername = "admin"
	adminPassword = "Admin123!"
)

// TestMain builds the service image once for the whole package.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building backoffice Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up backoffice Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/backoffice/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run()
}

// setupContainer starts the service with a bootstrapped admin and relaxed
// rate limits and returns its base URL.
func setupContainer(t *testing.T) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"BOOTSTRAP_ADMIN_USERNAME":    adminUsername,
			"BOOTSTRAP_ADMIN_PASSWORD":    adminPassword,
			"BACKOFFICE_ISSUER":           "escritorio-e2e",
			"ENV":                         "test",
			"LOG_LEVEL":                   "info",
			"LOG_FORMAT":                  "json",
			"RATELIMIT_STRICT_REQUESTS":   "1000",
			"RATELIMIT_STRICT_WINDOW_SEC": "60",
			"RATELIMIT_STRICT_BURST":      "1000",
			"RATELIMIT_MODERATE_REQUESTS": "1000",
			"RATELIMIT_MODERATE_BURST":    "1000",
		},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return baseURL, cleanup
}

// adminSession logs in as the bootstrapped admin.
func adminSession(t *testing.T, baseURL string) *officesdk.Session {
	t.Helper()
	s, err := officesdk.NewSDKClient(baseURL).Login(t.Context(), adminUsername, adminPassword, "")
	require.NoError(t, err)
	require.True(t, s.HasScope(officesdk.ScopeAdmin))
	return s
}

func assertHealthy(t *testing.T, h *officesdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, h)
	require.Equal(t, "ok", h.Status)
}
