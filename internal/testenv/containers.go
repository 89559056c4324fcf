//go:build integration

// Package testenv starts the external services integration tests run against
package testenv

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Services holds the running containers and their connection details
type Services struct {
	ctx      context.Context
	postgres testcontainers.Container
	memgraph testcontainers.Container

	PostgresHost string
	PostgresPort string
	MemgraphURL  string
}

// Postgres credentials used by the container
const (
	PostgresUser     = "user"
	PostgresPassword = "password"
	PostgresDB       = "bramble"
)

func New(ctx context.Context) *Services {
	return &Services{ctx: ctx}
}

// StartPostgres starts a PostgreSQL container
func (s *Services) StartPostgres() error {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     PostgresUser,
			"POSTGRES_PASSWORD": PostgresPassword,
			"POSTGRES_DB":       PostgresDB,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return fmt.Errorf("failed to start postgres: %w", err)
	}
	s.postgres = container

	host, err := container.Host(s.ctx)
	if err != nil {
		return err
	}
	port, err := container.MappedPort(s.ctx, "5432")
	if err != nil {
		return err
	}

	s.PostgresHost = host
	s.PostgresPort = port.Port()
	return nil
}

// StartMemgraph starts a Memgraph container without auth
func (s *Services) StartMemgraph() error {
	req := testcontainers.ContainerRequest{
		Image:        "memgraph/memgraph:latest",
		ExposedPorts: []string{"7687/tcp"},
		WaitingFor: wait.ForLog("Server is fully armed and operational").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return fmt.Errorf("failed to start memgraph: %w", err)
	}
	s.memgraph = container

	host, err := container.Host(s.ctx)
	if err != nil {
		return err
	}
	port, err := container.MappedPort(s.ctx, "7687")
	if err != nil {
		return err
	}

	s.MemgraphURL = fmt.Sprintf("bolt://%s:%s", host, port.Port())
	return nil
}

// Stop terminates every started container
func (s *Services) Stop() {
	for _, c := range []testcontainers.Container{s.postgres, s.memgraph} {
		if c != nil {
			_ = c.Terminate(s.ctx)
		}
	}
}
