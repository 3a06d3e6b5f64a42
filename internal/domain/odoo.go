package domain

// Record is a single Odoo record as returned by read/search_read, or the
// value map submitted to create/write. The shape is defined entirely by the
// remote model; nothing is interpreted locally.
type Record map[string]interface{}

// Filter is an Odoo domain expression, e.g.
// [["name", "ilike", "acme"], ["active", "=", true]].
// It is passed through to the server verbatim and never evaluated locally.
type Filter []interface{}

// ModelInfo describes one entry of the ir.model registry.
type ModelInfo struct {
	Model string `json:"model"`
	Name  string `json:"name"`
}

// Field describes a single field of an Odoo model, as reported by fields_get
// with the attributes string/help/type/required.
type Field struct {
	Label    string `json:"string"`
	Help     string `json:"help,omitempty"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// ServerVersion is the result of the common.version probe.
type ServerVersion struct {
	Server          string `json:"server_version"`
	Series          string `json:"server_serie"`
	ProtocolVersion int64  `json:"protocol_version"`
}

// DefaultSearchLimit bounds search_records when the caller gives no limit.
const DefaultSearchLimit = 10

// ModelRegistryLimit bounds the ir.model listing fetched by list_models.
const ModelRegistryLimit = 500
