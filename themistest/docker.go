package themistest

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/ory/dockertest"
)

// DockerServiceConfig describes a throwaway container and how to build a
// client for it once its port is reachable.
type DockerServiceConfig[T any] struct {
	DockerImage    string
	DockerImageTag string
	InternalPort   int
	Environment    map[string]string
	Cmd            []string
	MaxWait        time.Duration
	Builder        func(host string, port int) (T, error)
}

func (d DockerServiceConfig[T]) Env() []string {
	env := []string{}
	for k, v := range d.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	return env
}

// GetDockerService starts the container, retries Builder until it succeeds
// and purges the container when the test ends. Skipped with -short.
func GetDockerService[T any](
	t *testing.T,
	config DockerServiceConfig[T],
) T {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping long-running test in short mode.")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Could not construct pool: %s", err)
	}

	if config.MaxWait > 0 {
		pool.MaxWait = config.MaxWait
	}

	if err := pool.Client.Ping(); err != nil {
		t.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: config.DockerImage,
		Tag:        config.DockerImageTag,
		Env:        config.Env(),
		Cmd:        config.Cmd,
	})
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	})

	dockerURL := os.Getenv("DOCKER_HOST")
	if dockerURL == "" {
		dockerURL = "tcp://" + resource.GetHostPort(fmt.Sprintf("%d/tcp", config.InternalPort))
	}

	u, err := url.Parse(dockerURL)
	if err != nil {
		t.Fatalf("Error parsing docker URL: %s", err)
	}

	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("Error parsing docker port: %s", err)
	}

	var service T
	if err := pool.Retry(func() error {
		var err error
		service, err = config.Builder(u.Hostname(), port)

		return err
	}); err != nil {
		t.Fatalf("Could not connect to service: %s", err)
	}

	return service
}
