package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"odoo-mcp/internal/domain"
)

// OdooService routes tool operations to the gateway. It owns the lazy
// session establishment: any data operation invoked without a session first
// attempts to authenticate, and a failure there is reported as
// ErrNotConnected rather than the raw transport error.
type OdooService struct {
	gateway OdooGateway
	logger  *slog.Logger

	// connectMu serializes lazy authentication so that concurrent tool
	// calls trigger at most one authenticate round-trip.
	connectMu sync.Mutex
}

// NewOdooService creates a new OdooService.
func NewOdooService(gateway OdooGateway, logger *slog.Logger) *OdooService {
	return &OdooService{
		gateway: gateway,
		logger:  logger.With("usecase", "Odoo"),
	}
}

// Connect authenticates with the server and probes its version. Used by the
// explicit connect tool and by the best-effort connection attempt at boot.
func (s *OdooService) Connect(ctx context.Context) (domain.ServerVersion, error) {
	s.connectMu.Lock()
	defer s.connectMu.Unlock()

	if err := s.gateway.Authenticate(ctx); err != nil {
		s.logger.Error("Connection to Odoo failed.", slog.Any("error", err))
		return domain.ServerVersion{}, err
	}

	version, err := s.gateway.Version(ctx)
	if err != nil {
		// The session is live, the probe is informational only.
		s.logger.Warn("Connected, but version probe failed.", slog.Any("error", err))
		return domain.ServerVersion{}, nil
	}
	s.logger.Info("Connected to Odoo.", slog.String("server_serie", version.Series))
	return version, nil
}

// Connected reports whether a session is currently held.
func (s *OdooService) Connected() bool {
	return s.gateway.Connected()
}

// ensureSession lazily establishes the session before a data operation.
func (s *OdooService) ensureSession(ctx context.Context) error {
	if s.gateway.Connected() {
		return nil
	}
	s.connectMu.Lock()
	defer s.connectMu.Unlock()
	if s.gateway.Connected() {
		return nil
	}
	s.logger.Info("No session, connecting to Odoo.")
	if err := s.gateway.Authenticate(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return nil
}

// ListModels returns the available models from the ir.model registry.
func (s *OdooService) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	if err := s.ensureSession(ctx); err != nil {
		return nil, err
	}
	records, err := s.gateway.SearchRead(ctx, "ir.model", nil, []string{"model", "name"}, domain.ModelRegistryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	models := make([]domain.ModelInfo, 0, len(records))
	for _, r := range records {
		info := domain.ModelInfo{}
		info.Model, _ = r["model"].(string)
		info.Name, _ = r["name"].(string)
		models = append(models, info)
	}
	return models, nil
}

// SearchRecords searches a model and reads the matches in one remote call.
// A zero limit falls back to the default.
func (s *OdooService) SearchRecords(ctx context.Context, model string, filter domain.Filter, fields []string, limit int) ([]domain.Record, error) {
	if err := s.ensureSession(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	records, err := s.gateway.SearchRead(ctx, model, filter, fields, limit)
	if err != nil {
		return nil, fmt.Errorf("search on %s failed: %w", model, err)
	}
	return records, nil
}

// ReadRecord reads a single record by identifier. A nil record with a nil
// error means the identifier does not exist.
func (s *OdooService) ReadRecord(ctx context.Context, model string, id int64, fields []string) (domain.Record, error) {
	if err := s.ensureSession(ctx); err != nil {
		return nil, err
	}
	records, err := s.gateway.Read(ctx, model, []int64{id}, fields)
	if err != nil {
		return nil, fmt.Errorf("read of %s/%d failed: %w", model, id, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// CreateRecord creates a record and returns its new identifier.
func (s *OdooService) CreateRecord(ctx context.Context, model string, values domain.Record) (int64, error) {
	if err := s.ensureSession(ctx); err != nil {
		return 0, err
	}
	id, err := s.gateway.Create(ctx, model, values)
	if err != nil {
		return 0, fmt.Errorf("create on %s failed: %w", model, err)
	}
	s.logger.Info("Record created.", slog.String("model", model), slog.Int64("id", id))
	return id, nil
}

// UpdateRecord writes new values to an existing record. A refused or
// nonexistent identifier surfaces as an error, never a boolean.
func (s *OdooService) UpdateRecord(ctx context.Context, model string, id int64, values domain.Record) error {
	if err := s.ensureSession(ctx); err != nil {
		return err
	}
	if err := s.gateway.Write(ctx, model, []int64{id}, values); err != nil {
		return fmt.Errorf("update of %s/%d failed: %w", model, id, err)
	}
	s.logger.Info("Record updated.", slog.String("model", model), slog.Int64("id", id))
	return nil
}

// DeleteRecord removes an existing record.
func (s *OdooService) DeleteRecord(ctx context.Context, model string, id int64) error {
	if err := s.ensureSession(ctx); err != nil {
		return err
	}
	if err := s.gateway.Unlink(ctx, model, []int64{id}); err != nil {
		return fmt.Errorf("delete of %s/%d failed: %w", model, id, err)
	}
	s.logger.Info("Record deleted.", slog.String("model", model), slog.Int64("id", id))
	return nil
}

// ModelFields returns the field metadata of a model.
func (s *OdooService) ModelFields(ctx context.Context, model string) (map[string]domain.Field, error) {
	if err := s.ensureSession(ctx); err != nil {
		return nil, err
	}
	fields, err := s.gateway.FieldsGet(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("fields_get on %s failed: %w", model, err)
	}
	return fields, nil
}
