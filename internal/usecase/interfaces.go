package usecase

import (
	"context"
	"errors"

	"odoo-mcp/internal/domain"
)

// Standard errors returned by use cases and adapters.
var (
	// ErrNotConnected is returned by gateway wrappers invoked without an
	// authenticated session, and by the service when lazy connection fails.
	ErrNotConnected = errors.New("not connected to Odoo")

	// ErrAuthFailed is returned when the remote server rejects the
	// configured credentials (authenticate returned false).
	ErrAuthFailed = errors.New("odoo authentication rejected")
)

// OdooGateway is the outbound port to the remote Odoo server. Every method
// is a single RPC round-trip; arguments and results are passed through
// without local interpretation. All data methods require a prior successful
// Authenticate and return ErrNotConnected otherwise.
type OdooGateway interface {
	// Authenticate exchanges the configured credential tuple for a session
	// identifier. It returns ErrAuthFailed on remote rejection.
	Authenticate(ctx context.Context) error

	// Connected reports whether a session identifier is currently held.
	Connected() bool

	// Version fetches the remote server version. It does not require a
	// session.
	Version(ctx context.Context) (domain.ServerVersion, error)

	Search(ctx context.Context, model string, filter domain.Filter, limit int) ([]int64, error)
	Read(ctx context.Context, model string, ids []int64, fields []string) ([]domain.Record, error)
	SearchRead(ctx context.Context, model string, filter domain.Filter, fields []string, limit int) ([]domain.Record, error)
	Create(ctx context.Context, model string, values domain.Record) (int64, error)
	Write(ctx context.Context, model string, ids []int64, values domain.Record) error
	Unlink(ctx context.Context, model string, ids []int64) error
	FieldsGet(ctx context.Context, model string) (map[string]domain.Field, error)
}
