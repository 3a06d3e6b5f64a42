// Package mcptool exposes the Odoo operations as MCP tools. The catalog is
// static: eight tools with fixed input schemas, registered once at startup.
package mcptool

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"odoo-mcp/internal/usecase"
)

// Handlers holds the dependencies of the tool handlers.
type Handlers struct {
	service *usecase.OdooService
	logger  *slog.Logger
}

// NewHandlers creates the tool handler set.
func NewHandlers(service *usecase.OdooService, logger *slog.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger.With("component", "mcptool"),
	}
}

// Register adds the full tool catalog to the MCP server.
func (h *Handlers) Register(s *server.MCPServer) {
	s.AddTools(h.Tools()...)
}

// Dispatch returns the handler for a tool name. Unknown names get a handler
// producing an error result, mirroring how the MCP server reports them.
func (h *Handlers) Dispatch(name string) server.ToolHandlerFunc {
	for _, t := range h.Tools() {
		if t.Tool.Name == name {
			return t.Handler
		}
	}
	return func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown tool: %s", name)), nil
	}
}

// Tools returns the static tool catalog with handlers attached.
func (h *Handlers) Tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("connect_odoo",
				mcp.WithDescription("Connect to the Odoo server using the configured credentials"),
			),
			Handler: h.handleConnect,
		},
		{
			Tool: mcp.NewTool("list_models",
				mcp.WithDescription("List the models available on the Odoo server"),
			),
			Handler: h.handleListModels,
		},
		{
			Tool: mcp.NewTool("search_records",
				mcp.WithDescription("Search records of an Odoo model"),
				mcp.WithString("model",
					mcp.Required(),
					mcp.Description("Model name, e.g. res.partner"),
				),
				mcp.WithArray("domain",
					mcp.Description("Odoo domain filter, e.g. [[\"name\", \"ilike\", \"acme\"]]"),
				),
				mcp.WithArray("fields",
					mcp.Description("Fields to return; all fields when omitted"),
				),
				mcp.WithNumber("limit",
					mcp.Description("Maximum number of records to return"),
					mcp.DefaultNumber(10),
				),
			),
			Handler: h.handleSearchRecords,
		},
		{
			Tool: mcp.NewTool("read_record",
				mcp.WithDescription("Read a single record by ID"),
				mcp.WithString("model",
					mcp.Required(),
					mcp.Description("Model name"),
				),
				mcp.WithNumber("record_id",
					mcp.Required(),
					mcp.Description("Record ID"),
				),
				mcp.WithArray("fields",
					mcp.Description("Fields to return; all fields when omitted"),
				),
			),
			Handler: h.handleReadRecord,
		},
		{
			Tool: mcp.NewTool("create_record",
				mcp.WithDescription("Create a new record"),
				mcp.WithString("model",
					mcp.Required(),
					mcp.Description("Model name"),
				),
				mcp.WithObject("values",
					mcp.Required(),
					mcp.Description("Field values of the new record"),
				),
			),
			Handler: h.handleCreateRecord,
		},
		{
			Tool: mcp.NewTool("update_record",
				mcp.WithDescription("Update an existing record"),
				mcp.WithString("model",
					mcp.Required(),
					mcp.Description("Model name"),
				),
				mcp.WithNumber("record_id",
					mcp.Required(),
					mcp.Description("Record ID"),
				),
				mcp.WithObject("values",
					mcp.Required(),
					mcp.Description("Field values to update"),
				),
			),
			Handler: h.handleUpdateRecord,
		},
		{
			Tool: mcp.NewTool("delete_record",
				mcp.WithDescription("Delete a record"),
				mcp.WithString("model",
					mcp.Required(),
					mcp.Description("Model name"),
				),
				mcp.WithNumber("record_id",
					mcp.Required(),
					mcp.Description("ID of the record to delete"),
				),
			),
			Handler: h.handleDeleteRecord,
		},
		{
			Tool: mcp.NewTool("get_model_fields",
				mcp.WithDescription("Describe the fields of an Odoo model"),
				mcp.WithString("model",
					mcp.Required(),
					mcp.Description("Model name"),
				),
			),
			Handler: h.handleModelFields,
		},
	}
}
