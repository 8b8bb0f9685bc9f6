package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/mapjournal/internal/errors"
)

// decode unmarshals MCP request arguments into a typed struct.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// decodeID decodes T and requires the identifier returned by id to be positive.
// Failures are INVALID_REQUEST errors.
func decodeID[T any](req mcp.CallToolRequest, id func(T) int64) (T, error) {
	result, err := decode[T](req)
	if err != nil {
		return result, errors.NewInvalidRequest(err.Error())
	}
	if id(result) <= 0 {
		return result, errors.NewInvalidRequest("a positive id is required")
	}
	return result, nil
}
