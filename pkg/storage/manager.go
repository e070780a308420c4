package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Manager produces Clients for one endpoint. It satisfies pool.Manager[*Client].
//
// S3 clients hold no socket of their own (the SDK's HTTP transport does),
// so a pooled Client never breaks and needs no validation on checkout;
// reachability is judged by the health probe instead.
type Manager struct {
	optFns []func(*s3.Options)
	cfg    Config
}

// NewManager validates cfg up front so a bad endpoint fails pool construction
// rather than every later checkout.
func NewManager(cfg Config, optFns ...func(*s3.Options)) (*Manager, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg, optFns: optFns}, nil
}

// Endpoint returns the normalized endpoint URL the manager connects to.
func (m *Manager) Endpoint() string {
	return m.cfg.Endpoint
}

// Connect builds a new Client.
func (m *Manager) Connect(ctx context.Context) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return New(m.cfg, m.optFns...)
}

// IsValid always succeeds.
func (m *Manager) IsValid(context.Context, *Client) error { return nil }

// HasBroken always reports false.
func (m *Manager) HasBroken(*Client) bool { return false }

// Close is a no-op.
func (m *Manager) Close(*Client) error { return nil }

// Probe is the health probe for storage pools.
func Probe(ctx context.Context, c *Client) error {
	return c.Ping(ctx)
}
