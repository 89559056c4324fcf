// Package graph projects resolved customers into Memgraph over the Bolt protocol
package graph

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/bramble/pkg/tracing"
)

// Statement is one parameterized Cypher query
type Statement struct {
	Cypher string
	Params map[string]any
	// AutoCommit runs the statement outside an explicit transaction. Memgraph requires it
	// for schema changes such as CREATE INDEX.
	AutoCommit bool
}

// Client wraps the Neo4j driver for Memgraph compatibility
type Client struct {
	driver neo4j.DriverWithContext
	logger ectologger.Logger
}

// Config holds graph database configuration
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

// URI returns the bolt address
func (c Config) URI() string {
	return fmt.Sprintf("bolt://%s:%d", c.Host, c.Port)
}

// NewClient creates a new graph database client
func NewClient(cfg Config, logger ectologger.Logger) (*Client, error) {
	return NewClientWithURI(cfg.URI(), cfg.Username, cfg.Password, logger)
}

// NewClientWithURI creates a client for a full bolt URI
func NewClientWithURI(uri, username, password string, logger ectologger.Logger) (*Client, error) {
	auth := neo4j.NoAuth()
	if username != "" {
		auth = neo4j.BasicAuth(username, password, "")
	}

	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph driver: %w", err)
	}

	return &Client{
		driver: driver,
		logger: logger,
	}, nil
}

// Close closes the driver connection
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// VerifyConnectivity checks if the database is reachable
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// Execute runs each statement in its own write transaction, stopping at the first error
func (c *Client) Execute(ctx context.Context, statements ...Statement) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Client.Execute")
	defer span.End()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for i, st := range statements {
		var err error
		if st.AutoCommit {
			var result neo4j.ResultWithContext
			if result, err = session.Run(ctx, st.Cypher, st.Params); err == nil {
				_, err = result.Consume(ctx)
			}
		} else {
			_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
				result, err := tx.Run(ctx, st.Cypher, st.Params)
				if err != nil {
					return nil, err
				}
				return result.Consume(ctx)
			})
		}
		if err != nil {
			c.logger.WithContext(ctx).WithError(err).WithField("statement", i).Error("Graph statement failed")
			return fmt.Errorf("graph statement %d failed: %w", i, err)
		}
	}
	return nil
}

// Count runs a read query returning a single integer column named n
func (c *Client) Count(ctx context.Context, cypher string, params map[string]any) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Client.Count")
	defer span.End()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	n, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		v, _ := record.Get("n")
		return v, nil
	})
	if err != nil {
		return 0, err
	}
	count, ok := n.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected count type %T", n)
	}
	return count, nil
}
