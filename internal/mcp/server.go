package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/hpungsan/mapjournal/internal/config"
	"github.com/hpungsan/mapjournal/internal/dao"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"trip_create": {
		def:     tripCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTripCreate },
	},
	"trip_get": {
		def:     tripGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTripGet },
	},
	"trip_list": {
		def:     tripListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTripList },
	},
	"trip_update": {
		def:     tripUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTripUpdate },
	},
	"trip_delete": {
		def:     tripDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTripDelete },
	},
	"point_create": {
		def:     pointCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePointCreate },
	},
	"point_get": {
		def:     pointGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePointGet },
	},
	"point_list": {
		def:     pointListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePointList },
	},
	"point_update": {
		def:     pointUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePointUpdate },
	},
	"point_delete": {
		def:     pointDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePointDelete },
	},
	"media_create": {
		def:     mediaCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMediaCreate },
	},
	"media_get": {
		def:     mediaGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMediaGet },
	},
	"media_list": {
		def:     mediaListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMediaList },
	},
	"media_update": {
		def:     mediaUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMediaUpdate },
	},
	"media_delete": {
		def:     mediaDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMediaDelete },
	},
	"journal_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"journal_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns the names in the list that are not tools.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server with the journal tools registered,
// skipping any listed in cfg.DisabledTools.
func NewServer(d *dao.DAO, cfg *config.Config, log zerolog.Logger, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"mapjournal",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(d, cfg, log)

	disabled := make(map[string]bool)
	if cfg != nil {
		for _, name := range cfg.DisabledTools {
			disabled[name] = true
		}
	}

	for _, name := range AllToolNames() {
		if disabled[name] {
			log.Debug().Str("tool", name).Msg("tool disabled")
			continue
		}
		entry := toolRegistry[name]
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves the journal tools over stdio until stdin closes.
func Run(d *dao.DAO, cfg *config.Config, log zerolog.Logger, version string) error {
	return server.ServeStdio(NewServer(d, cfg, log, version))
}
