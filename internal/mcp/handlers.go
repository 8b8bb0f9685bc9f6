package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/hpungsan/mapjournal/internal/config"
	"github.com/hpungsan/mapjournal/internal/dao"
	"github.com/hpungsan/mapjournal/internal/errors"
	"github.com/hpungsan/mapjournal/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	dao *dao.DAO
	cfg *config.Config
	log zerolog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(d *dao.DAO, cfg *config.Config, log zerolog.Logger) *Handlers {
	return &Handlers{dao: d, cfg: cfg, log: log}
}

// Request types for each tool

// IDRequest addresses a single record.
type IDRequest struct {
	ID            int64 `json:"id"`
	IncludePoints bool  `json:"include_points,omitempty"`
	IncludeMedia  bool  `json:"include_media,omitempty"`
}

// DeleteRequest represents the arguments for the delete tools.
type DeleteRequest struct {
	ID      int64 `json:"id"`
	Cascade bool  `json:"cascade,omitempty"`
}

// TripCreateRequest represents the arguments for trip_create.
type TripCreateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// TripUpdateRequest represents the arguments for trip_update.
type TripUpdateRequest struct {
	ID          int64   `json:"id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// PointCreateRequest represents the arguments for point_create.
type PointCreateRequest struct {
	TripID    int64   `json:"trip_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude,omitempty"`
	Time      int32   `json:"time,omitempty"`
	Title     *string `json:"title,omitempty"`
	Address   *string `json:"address,omitempty"`
	Journal   *string `json:"journal,omitempty"`
}

// PointUpdateRequest represents the arguments for point_update.
type PointUpdateRequest struct {
	ID        int64    `json:"id"`
	TripID    *int64   `json:"trip_id,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Altitude  *float64 `json:"altitude,omitempty"`
	Time      *int32   `json:"time,omitempty"`
	Title     *string  `json:"title,omitempty"`
	Address   *string  `json:"address,omitempty"`
	Journal   *string  `json:"journal,omitempty"`
}

// ParentRequest lists the children of a trip or point.
type ParentRequest struct {
	TripID  int64 `json:"trip_id,omitempty"`
	PointID int64 `json:"point_id,omitempty"`
}

// MediaCreateRequest represents the arguments for media_create.
type MediaCreateRequest struct {
	PointID int64   `json:"point_id"`
	Path    string  `json:"path"`
	Caption *string `json:"caption,omitempty"`
}

// MediaUpdateRequest represents the arguments for media_update.
type MediaUpdateRequest struct {
	ID      int64   `json:"id"`
	PointID *int64  `json:"point_id,omitempty"`
	Path    *string `json:"path,omitempty"`
	Caption *string `json:"caption,omitempty"`
}

// ExportRequest represents the arguments for journal_export.
type ExportRequest struct {
	Path   string `json:"path,omitempty"`
	TripID *int64 `json:"trip_id,omitempty"`
}

// ImportRequest represents the arguments for journal_import.
type ImportRequest struct {
	Path string `json:"path"`
}

// Handler implementations

// HandleTripCreate handles the trip_create tool call.
func (h *Handlers) HandleTripCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TripCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	trip, err := ops.CreateTrip(ctx, h.dao, ops.CreateTripInput{Name: input.Name, Description: input.Description})
	if err != nil {
		return h.fail("trip_create", err), nil
	}
	return successResult(trip)
}

// HandleTripGet handles the trip_get tool call.
func (h *Handlers) HandleTripGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeID[IDRequest](req, func(r IDRequest) int64 { return r.ID })
	if err != nil {
		return errorResult(err), nil
	}
	if input.IncludePoints {
		trip, err := ops.LoadTrip(ctx, h.dao, input.ID)
		if err != nil {
			return h.fail("trip_get", err), nil
		}
		return successResult(trip)
	}
	trip, err := h.dao.GetTrip(ctx, input.ID)
	if err != nil {
		return h.fail("trip_get", err), nil
	}
	return successResult(trip)
}

// HandleTripList handles the trip_list tool call.
func (h *Handlers) HandleTripList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	trips, err := h.dao.GetAllTrips(ctx)
	if err != nil {
		return h.fail("trip_list", err), nil
	}
	return successResult(map[string]any{"trips": trips})
}

// HandleTripUpdate handles the trip_update tool call.
func (h *Handlers) HandleTripUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeID[TripUpdateRequest](req, func(r TripUpdateRequest) int64 { return r.ID })
	if err != nil {
		return errorResult(err), nil
	}
	trip, err := ops.UpdateTrip(ctx, h.dao, ops.UpdateTripInput{
		ID:          input.ID,
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		return h.fail("trip_update", err), nil
	}
	return successResult(trip)
}

// HandleTripDelete handles the trip_delete tool call.
func (h *Handlers) HandleTripDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeID[DeleteRequest](req, func(r DeleteRequest) int64 { return r.ID })
	if err != nil {
		return errorResult(err), nil
	}
	out, err := ops.DeleteTrip(ctx, h.dao, ops.DeleteInput{ID: input.ID, Cascade: input.Cascade})
	if err != nil {
		return h.fail("trip_delete", err), nil
	}
	return successResult(out)
}

// HandlePointCreate handles the point_create tool call.
func (h *Handlers) HandlePointCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PointCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	p, err := ops.CreatePoint(ctx, h.dao, ops.CreatePointInput{
		TripID:    input.TripID,
		Title:     input.Title,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Altitude:  input.Altitude,
		Time:      input.Time,
		Address:   input.Address,
		Journal:   input.Journal,
	})
	if err != nil {
		return h.fail("point_create", err), nil
	}
	return successResult(p)
}

// HandlePointGet handles the point_get tool call.
func (h *Handlers) HandlePointGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeID[IDRequest](req, func(r IDRequest) int64 { return r.ID })
	if err != nil {
		return errorResult(err), nil
	}
	if input.IncludeMedia {
		p, err := ops.LoadPoint(ctx, h.dao, input.ID)
		if err != nil {
			return h.fail("point_get", err), nil
		}
		return successResult(p)
	}
	p, err := h.dao.GetPoint(ctx, input.ID)
	if err != nil {
		return h.fail("point_get", err), nil
	}
	return successResult(p)
}

// HandlePointList handles the point_list tool call.
func (h *Handlers) HandlePointList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeID[ParentRequest](req, func(r ParentRequest) int64 { return r.TripID })
	if err != nil {
		return errorResult(err), nil
	}
	points, err := h.dao.GetPointsByTrip(ctx, input.TripID)
	if err != nil {
		return h.fail("point_list", err), nil
	}
	return successResult(map[string]any{"points": points})
}

// HandlePointUpdate handles the point_update tool call.
func (h *Handlers) HandlePointUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeID[PointUpdateRequest](req, func(r PointUpdateRequest) int64 { return r.ID })
	if err != nil {
		return errorResult(err), nil
	}
	p, err := ops.UpdatePoint(ctx, h.dao, ops.UpdatePointInput{
		ID:        input.ID,
		TripID:    input.TripID,
		Title:     input.Title,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Altitude:  input.Altitude,
		Time:      input.Time,
		Address:   input.Address,
		Journal:   input.Journal,
	})
	if err != nil {
		return h.fail("point_update", err), nil
	}
	return successResult(p)
}

// HandlePointDelete handles the point_delete tool call.
func (h *Handlers) HandlePointDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeID[DeleteRequest](req, func(r DeleteRequest) int64 { return r.ID })
	if err != nil {
		return errorResult(err), nil
	}
	out, err := ops.DeletePoint(ctx, h.dao, ops.DeleteInput{ID: input.ID, Cascade: input.Cascade})
	if err != nil {
		return h.fail("point_delete", err), nil
	}
	return successResult(out)
}

// HandleMediaCreate handles the media_create tool call.
func (h *Handlers) HandleMediaCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MediaCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	m, err := ops.CreateMedia(ctx, h.dao, ops.CreateMediaInput{
		PointID: input.PointID,
		Path:    input.Path,
		Caption: input.Caption,
	})
	if err != nil {
		return h.fail("media_create", err), nil
	}
	return successResult(m)
}

// HandleMediaGet handles the media_get tool call.
func (h *Handlers) HandleMediaGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeID[IDRequest](req, func(r IDRequest) int64 { return r.ID })
	if err != nil {
		return errorResult(err), nil
	}
	m, err := h.dao.GetMedia(ctx, input.ID)
	if err != nil {
		return h.fail("media_get", err), nil
	}
	return successResult(m)
}

// HandleMediaList handles the media_list tool call.
func (h *Handlers) HandleMediaList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeID[ParentRequest](req, func(r ParentRequest) int64 { return r.PointID })
	if err != nil {
		return errorResult(err), nil
	}
	media, err := h.dao.GetMediaByPoint(ctx, input.PointID)
	if err != nil {
		return h.fail("media_list", err), nil
	}
	return successResult(map[string]any{"media": media})
}

// HandleMediaUpdate handles the media_update tool call.
func (h *Handlers) HandleMediaUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeID[MediaUpdateRequest](req, func(r MediaUpdateRequest) int64 { return r.ID })
	if err != nil {
		return errorResult(err), nil
	}
	m, err := ops.UpdateMedia(ctx, h.dao, ops.UpdateMediaInput{
		ID:      input.ID,
		PointID: input.PointID,
		Path:    input.Path,
		Caption: input.Caption,
	})
	if err != nil {
		return h.fail("media_update", err), nil
	}
	return successResult(m)
}

// HandleMediaDelete handles the media_delete tool call.
func (h *Handlers) HandleMediaDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeID[IDRequest](req, func(r IDRequest) int64 { return r.ID })
	if err != nil {
		return errorResult(err), nil
	}
	out, err := ops.DeleteMedia(ctx, h.dao, input.ID)
	if err != nil {
		return h.fail("media_delete", err), nil
	}
	return successResult(out)
}

// HandleExport handles the journal_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.Export(ctx, h.dao, h.cfg, ops.ExportInput{Path: input.Path, TripID: input.TripID})
	if err != nil {
		return h.fail("journal_export", err), nil
	}
	return successResult(out)
}

// HandleImport handles the journal_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.Import(ctx, h.dao, h.cfg, ops.ImportInput{Path: input.Path})
	if err != nil {
		return h.fail("journal_import", err), nil
	}
	return successResult(out)
}

// fail logs unexpected errors and converts err to an error result.
func (h *Handlers) fail(tool string, err error) *mcp.CallToolResult {
	if !isClientError(err) {
		h.log.Error().Err(err).Str("tool", tool).Msg("tool call failed")
	}
	return errorResult(err)
}

func isClientError(err error) bool {
	var jErr *errors.JournalError
	return stderrors.As(err, &jErr) && jErr.Status < 500
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var jErr *errors.JournalError
	if stderrors.As(err, &jErr) {
		errorObj := map[string]any{
			"code":    jErr.Code,
			"message": jErr.Message,
			"status":  jErr.Status,
		}
		// Internal details can carry file paths or SQL text.
		if jErr.Code != errors.ErrInternal && jErr.Details != nil {
			errorObj["details"] = jErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
