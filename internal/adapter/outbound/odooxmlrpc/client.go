// Package odooxmlrpc implements the usecase.OdooGateway against the two
// XML-RPC endpoints of an Odoo server: /xmlrpc/2/common for authentication
// and version probes, /xmlrpc/2/object for execute_kw data calls.
package odooxmlrpc

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kolo/xmlrpc"

	"odoo-mcp/internal/domain"
	"odoo-mcp/internal/usecase"
)

// Config holds the connection parameters for one Odoo server.
type Config struct {
	URL      string
	Database string
	Username string
	Password string
	// Timeout bounds the wait for response headers on each call. The
	// XML-RPC layer offers no per-call cancellation, so this is the only
	// deadline applied.
	Timeout time.Duration
}

// Client is a session-holding XML-RPC client for Odoo. A single numeric
// session identifier (uid) is established by Authenticate and shared by all
// subsequent data calls. The uid is guarded by a mutex: MCP tool handlers
// may run concurrently and whichever call connects first sets it.
type Client struct {
	common *xmlrpc.Client
	object *xmlrpc.Client

	db       string
	username string
	password string

	logger *slog.Logger

	mu  sync.Mutex
	uid int64
}

var _ usecase.OdooGateway = (*Client)(nil)

// New creates a client for the given server. No network traffic happens
// until Authenticate or Version is called.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	base := strings.TrimRight(cfg.URL, "/")
	transport := &http.Transport{ResponseHeaderTimeout: cfg.Timeout}

	common, err := xmlrpc.NewClient(base+"/xmlrpc/2/common", transport)
	if err != nil {
		return nil, fmt.Errorf("invalid odoo URL %s: %w", cfg.URL, err)
	}
	object, err := xmlrpc.NewClient(base+"/xmlrpc/2/object", transport)
	if err != nil {
		return nil, fmt.Errorf("invalid odoo URL %s: %w", cfg.URL, err)
	}

	return &Client{
		common:   common,
		object:   object,
		db:       cfg.Database,
		username: cfg.Username,
		password: cfg.Password,
		logger:   logger.With("component", "odoo_xmlrpc"),
	}, nil
}

// Authenticate exchanges the credential tuple for a session identifier.
// Odoo answers a numeric uid on success and boolean false on rejection.
func (c *Client) Authenticate(_ context.Context) error {
	var reply interface{}
	err := c.common.Call("authenticate", []interface{}{c.db, c.username, c.password, map[string]interface{}{}}, &reply)
	if err != nil {
		c.logger.Error("Authentication call failed.", slog.Any("error", err))
		return fmt.Errorf("authenticate call failed: %w", err)
	}

	uid, ok := asInt64(reply)
	if !ok || uid == 0 {
		c.logger.Warn("Authentication rejected by server.", slog.String("database", c.db), slog.String("username", c.username))
		return usecase.ErrAuthFailed
	}

	c.mu.Lock()
	c.uid = uid
	c.mu.Unlock()
	c.logger.Info("Authenticated with Odoo.", slog.Int64("uid", uid), slog.String("database", c.db))
	return nil
}

// Connected reports whether a session identifier is held.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uid != 0
}

// Version fetches the server version from the common endpoint. It works
// without a session.
func (c *Client) Version(_ context.Context) (domain.ServerVersion, error) {
	var reply interface{}
	if err := c.common.Call("version", nil, &reply); err != nil {
		return domain.ServerVersion{}, fmt.Errorf("version call failed: %w", err)
	}

	var v domain.ServerVersion
	if m, ok := reply.(map[string]interface{}); ok {
		v.Server, _ = m["server_version"].(string)
		v.Series, _ = m["server_serie"].(string)
		if p, ok := asInt64(m["protocol_version"]); ok {
			v.ProtocolVersion = p
		}
	}
	return v, nil
}

// Search returns at most limit record identifiers matching the filter.
func (c *Client) Search(ctx context.Context, model string, filter domain.Filter, limit int) ([]int64, error) {
	reply, err := c.executeKw(ctx, model, "search",
		[]interface{}{normalizeFilter(filter)},
		map[string]interface{}{"limit": limit})
	if err != nil {
		return nil, err
	}
	return asInt64Slice(reply)
}

// Read fetches the given records. An empty fields list means all fields.
func (c *Client) Read(ctx context.Context, model string, ids []int64, fields []string) ([]domain.Record, error) {
	kwargs := map[string]interface{}{}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}
	reply, err := c.executeKw(ctx, model, "read", []interface{}{ids}, kwargs)
	if err != nil {
		return nil, err
	}
	return asRecords(reply)
}

// SearchRead combines Search and Read in a single round-trip.
func (c *Client) SearchRead(ctx context.Context, model string, filter domain.Filter, fields []string, limit int) ([]domain.Record, error) {
	kwargs := map[string]interface{}{"limit": limit}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}
	reply, err := c.executeKw(ctx, model, "search_read",
		[]interface{}{normalizeFilter(filter)}, kwargs)
	if err != nil {
		return nil, err
	}
	return asRecords(reply)
}

// Create inserts a new record and returns its identifier.
func (c *Client) Create(ctx context.Context, model string, values domain.Record) (int64, error) {
	reply, err := c.executeKw(ctx, model, "create",
		[]interface{}{map[string]interface{}(values)}, nil)
	if err != nil {
		return 0, err
	}
	id, ok := asInt64(reply)
	if !ok {
		return 0, fmt.Errorf("create on %s returned unexpected result %v", model, reply)
	}
	return id, nil
}

// Write updates existing records. A false result from the server is
// reported as an error so update failures have a single taxonomy.
func (c *Client) Write(ctx context.Context, model string, ids []int64, values domain.Record) error {
	reply, err := c.executeKw(ctx, model, "write",
		[]interface{}{ids, map[string]interface{}(values)}, nil)
	if err != nil {
		return err
	}
	if ok, _ := reply.(bool); !ok {
		return fmt.Errorf("write on %s %v was refused by the server", model, ids)
	}
	return nil
}

// Unlink deletes existing records. Like Write, a false result is an error.
func (c *Client) Unlink(ctx context.Context, model string, ids []int64) error {
	reply, err := c.executeKw(ctx, model, "unlink", []interface{}{ids}, nil)
	if err != nil {
		return err
	}
	if ok, _ := reply.(bool); !ok {
		return fmt.Errorf("unlink on %s %v was refused by the server", model, ids)
	}
	return nil
}

// FieldsGet returns the field metadata of a model, restricted to the
// attributes the dispatcher renders.
func (c *Client) FieldsGet(ctx context.Context, model string) (map[string]domain.Field, error) {
	reply, err := c.executeKw(ctx, model, "fields_get", []interface{}{},
		map[string]interface{}{"attributes": []string{"string", "help", "type", "required"}})
	if err != nil {
		return nil, err
	}

	raw, ok := reply.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("fields_get on %s returned unexpected result", model)
	}
	fields := make(map[string]domain.Field, len(raw))
	for name, v := range raw {
		attrs, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		f := domain.Field{}
		f.Label, _ = attrs["string"].(string)
		f.Help, _ = attrs["help"].(string)
		f.Type, _ = attrs["type"].(string)
		f.Required, _ = attrs["required"].(bool)
		fields[name] = f
	}
	return fields, nil
}

// executeKw performs one execute_kw call on the object endpoint. It fails
// immediately with ErrNotConnected when no session identifier is held; any
// remote fault is surfaced verbatim.
func (c *Client) executeKw(_ context.Context, model, method string, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	c.mu.Lock()
	uid := c.uid
	c.mu.Unlock()
	if uid == 0 {
		return nil, usecase.ErrNotConnected
	}

	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}

	log := c.logger.With(slog.String("model", model), slog.String("method", method))
	log.Debug("Executing remote call.")

	var reply interface{}
	err := c.object.Call("execute_kw",
		[]interface{}{c.db, uid, c.password, model, method, args, kwargs}, &reply)
	if err != nil {
		log.Error("Remote call failed.", slog.Any("error", err))
		return nil, fmt.Errorf("%s on %s failed: %w", method, model, err)
	}
	return reply, nil
}

// normalizeFilter turns a nil filter into the empty domain expected by the
// server.
func normalizeFilter(f domain.Filter) []interface{} {
	if f == nil {
		return []interface{}{}
	}
	return []interface{}(f)
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func asInt64Slice(v interface{}) ([]int64, error) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected an id list, got %T", v)
	}
	ids := make([]int64, 0, len(raw))
	for _, e := range raw {
		id, ok := asInt64(e)
		if !ok {
			return nil, fmt.Errorf("expected a numeric id, got %T", e)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func asRecords(v interface{}) ([]domain.Record, error) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a record list, got %T", v)
	}
	records := make([]domain.Record, 0, len(raw))
	for _, e := range raw {
		m, ok := e.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("expected a record struct, got %T", e)
		}
		records = append(records, domain.Record(m))
	}
	return records, nil
}
