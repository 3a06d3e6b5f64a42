package mcptool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"odoo-mcp/internal/domain"
	"odoo-mcp/internal/usecase"
)

// Display caps keep tool output readable for the assistant.
const (
	modelListDisplayLimit = 20
	fieldDisplayLimit     = 15
	fieldHelpDisplayLimit = 50
)

const notConnectedText = "No connection to Odoo. Use 'connect_odoo' first."

func (h *Handlers) handleConnect(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	version, err := h.service.Connect(ctx)
	if err != nil {
		h.logger.Error("Connect tool failed.", slog.Any("error", err))
		return mcp.NewToolResultError("Failed to connect to Odoo. Check the configured credentials."), nil
	}
	if version.Series != "" {
		return mcp.NewToolResultText(fmt.Sprintf("Connected to Odoo %s", version.Series)), nil
	}
	return mcp.NewToolResultText("Connected to Odoo"), nil
}

func (h *Handlers) handleListModels(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	models, err := h.service.ListModels(ctx)
	if err != nil {
		return h.errorResult("list_models", err), nil
	}

	shown := len(models)
	if shown > modelListDisplayLimit {
		shown = modelListDisplayLimit
	}
	var b strings.Builder
	b.WriteString("Available models:\n")
	for _, m := range models[:shown] {
		fmt.Fprintf(&b, "  - %s: %s\n", m.Model, m.Name)
	}
	fmt.Fprintf(&b, "\n(showing %d of %d models)", shown, len(models))
	return mcp.NewToolResultText(b.String()), nil
}

func (h *Handlers) handleSearchRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	model, err := req.RequireString("model")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := req.GetArguments()
	filter := toFilter(args["domain"])
	fields := toStringSlice(args["fields"])
	limit := req.GetInt("limit", domain.DefaultSearchLimit)

	records, err := h.service.SearchRecords(ctx, model, filter, fields, limit)
	if err != nil {
		return h.errorResult("search_records", err), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText("No records found"), nil
	}

	body, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return h.errorResult("search_records", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Found %d records in %s:\n%s", len(records), model, body)), nil
}

func (h *Handlers) handleReadRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	model, err := req.RequireString("model")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireInt("record_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields := toStringSlice(req.GetArguments()["fields"])

	record, err := h.service.ReadRecord(ctx, model, int64(id), fields)
	if err != nil {
		return h.errorResult("read_record", err), nil
	}
	if record == nil {
		return mcp.NewToolResultText(fmt.Sprintf("No record with ID %d in %s", id, model)), nil
	}

	body, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return h.errorResult("read_record", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Record %s/%d:\n%s", model, id, body)), nil
}

func (h *Handlers) handleCreateRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	model, err := req.RequireString("model")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	values, ok := req.GetArguments()["values"].(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("values must be an object"), nil
	}

	id, err := h.service.CreateRecord(ctx, model, domain.Record(values))
	if err != nil {
		return h.errorResult("create_record", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Record created in %s with ID %d", model, id)), nil
}

func (h *Handlers) handleUpdateRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	model, err := req.RequireString("model")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireInt("record_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	values, ok := req.GetArguments()["values"].(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("values must be an object"), nil
	}

	if err := h.service.UpdateRecord(ctx, model, int64(id), domain.Record(values)); err != nil {
		return h.errorResult("update_record", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Record %s/%d updated", model, id)), nil
}

func (h *Handlers) handleDeleteRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	model, err := req.RequireString("model")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireInt("record_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.service.DeleteRecord(ctx, model, int64(id)); err != nil {
		return h.errorResult("delete_record", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Record %s/%d deleted", model, id)), nil
}

func (h *Handlers) handleModelFields(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	model, err := req.RequireString("model")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fields, err := h.service.ModelFields(ctx, model)
	if err != nil {
		return h.errorResult("get_model_fields", err), nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	shown := len(names)
	if shown > fieldDisplayLimit {
		shown = fieldDisplayLimit
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Fields of %s:\n", model)
	for _, name := range names[:shown] {
		f := fields[name]
		required := ""
		if f.Required {
			required = " (required)"
		}
		fmt.Fprintf(&b, "  - %s (%s)%s\n", name, f.Type, required)
		if f.Help != "" {
			help := f.Help
			if len(help) > fieldHelpDisplayLimit {
				help = help[:fieldHelpDisplayLimit] + "..."
			}
			fmt.Fprintf(&b, "    %s\n", help)
		}
	}
	fmt.Fprintf(&b, "\n(showing %d of %d fields)", shown, len(names))
	return mcp.NewToolResultText(b.String()), nil
}

// errorResult converts any failure into a textual tool result. A missing
// session gets the fixed not-connected message instead of the raw error.
func (h *Handlers) errorResult(tool string, err error) *mcp.CallToolResult {
	h.logger.Error("Tool invocation failed.", slog.String("tool", tool), slog.Any("error", err))
	if errors.Is(err, usecase.ErrNotConnected) {
		return mcp.NewToolResultError(notConnectedText)
	}
	return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err))
}

func toFilter(v interface{}) domain.Filter {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	return domain.Filter(raw)
}

func toStringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
