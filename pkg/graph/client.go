// Package graph provides access to the metadata knowledge graph: a Neo4j
// catalog holding business concepts, physical tables, columns, and join
// relationships.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/config"
	"github.com/metaquery-ai/metaquery-engine/pkg/logging"
)

// Client wraps the Neo4j driver. The driver pools connections internally and
// is shared across questions; nothing in this package mutates it after
// construction.
type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
	logger   *zap.Logger
}

// NewClient connects to the graph store and verifies connectivity.
func NewClient(cfg *config.GraphConfig, logger *zap.Logger) (*Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("graph URI is required")
	}

	timeout := time.Duration(cfg.ConnectTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		if cfg.MaxPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxPoolSize
		}
		c.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, fmt.Errorf("init graph driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify graph connectivity to %s: %w", logging.SanitizeURI(cfg.URI), err)
	}

	logger.Info("connected to graph store", zap.String("uri", logging.SanitizeURI(cfg.URI)))

	return &Client{
		Driver:   driver,
		Database: cfg.Database,
		logger:   logger.Named("graph"),
	}, nil
}

// Session opens a session with the given access mode on the configured
// database.
func (c *Client) Session(ctx context.Context, accessMode neo4j.AccessMode) neo4j.SessionWithContext {
	return c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   accessMode,
		DatabaseName: c.Database,
	})
}

// ExecuteWrite runs a write transaction.
func (c *Client) ExecuteWrite(ctx context.Context, work func(tx neo4j.ManagedTransaction) (any, error)) (any, error) {
	session := c.Session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	return session.ExecuteWrite(ctx, work)
}

// Close releases the driver and its connection pool.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}
