package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/logger"
	"github.com/hpungsan/pocket/internal/store"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"capsule", "progress"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"capsule_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"capsule_load": {
		def:     loadToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLoad },
	},
	"capsule_save": {
		def:     saveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSave },
	},
	"capsule_author": {
		def:     authorToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAuthor },
	},
	"capsule_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"capsule_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"capsule_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"capsule_validate": {
		def:     validateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleValidate },
	},
	"capsule_search_notes": {
		def:     searchNotesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearchNotes },
	},
	"progress_get": {
		def:     progressGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProgressGet },
	},
	"progress_save": {
		def:     progressSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProgressSave },
	},
	"progress_toggle_known": {
		def:     toggleKnownToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleToggleKnown },
	},
	"progress_grade_quiz": {
		def:     gradeQuizToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGradeQuiz },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name ("progress_get" → "progress").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// EnabledTools returns the registry names left after cfg's disabled tools and types.
func EnabledTools(cfg *config.Config) []string {
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	enabled := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		if !disabled[name] {
			enabled = append(enabled, name)
		}
	}
	return enabled
}

// NewServer creates an MCP server with the Pocket tools registered, minus those
// disabled by name or type in cfg.
func NewServer(st *store.Store, cfg *config.Config, log *logger.Logger, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"pocket",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(st, cfg, log)
	for _, name := range EnabledTools(cfg) {
		entry := toolRegistry[name]
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(st *store.Store, cfg *config.Config, log *logger.Logger, version string) error {
	if unknown := ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Warn("ignoring unknown disabled_tools", "tools", unknown)
	}
	if unknown := ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		log.Warn("ignoring unknown disabled_types", "types", unknown)
	}
	return server.ServeStdio(NewServer(st, cfg, log, version))
}
