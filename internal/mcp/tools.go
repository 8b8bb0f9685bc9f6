package mcp

import "github.com/mark3labs/mcp-go/mcp"

var tripCreateToolDef = mcp.NewTool("trip_create",
	mcp.WithDescription("Create a trip. Returns the stored trip with its id."),
	mcp.WithString("name", mcp.Description("Trip name")),
	mcp.WithString("description", mcp.Description("Free-text description")),
)

var tripGetToolDef = mcp.NewTool("trip_get",
	mcp.WithDescription("Get a trip by id. Points are omitted unless include_points is true."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Trip id")),
	mcp.WithBoolean("include_points", mcp.Description("Also load points and their media")),
)

var tripListToolDef = mcp.NewTool("trip_list",
	mcp.WithDescription("List all trips ordered by id, without points."),
)

var tripUpdateToolDef = mcp.NewTool("trip_update",
	mcp.WithDescription("Update a trip. Omitted fields are unchanged; an empty string clears a field."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Trip id")),
	mcp.WithString("name", mcp.Description("New name")),
	mcp.WithString("description", mcp.Description("New description")),
)

var tripDeleteToolDef = mcp.NewTool("trip_delete",
	mcp.WithDescription("Delete a trip. Its points are kept unless cascade is true."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Trip id")),
	mcp.WithBoolean("cascade", mcp.Description("Also delete the trip's points and their media")),
)

var pointCreateToolDef = mcp.NewTool("point_create",
	mcp.WithDescription("Create a point on a trip. Latitude and longitude must be within [-180, 180]; time is POSIX seconds, not negative."),
	mcp.WithNumber("trip_id", mcp.Required(), mcp.Description("Trip the point belongs to")),
	mcp.WithNumber("latitude", mcp.Required(), mcp.Description("Latitude in degrees")),
	mcp.WithNumber("longitude", mcp.Required(), mcp.Description("Longitude in degrees")),
	mcp.WithNumber("altitude", mcp.Description("Altitude in meters")),
	mcp.WithNumber("time", mcp.Description("Visit time, POSIX seconds")),
	mcp.WithString("title", mcp.Description("Point title")),
	mcp.WithString("address", mcp.Description("Street address")),
	mcp.WithString("journal", mcp.Description("Journal entry (Markdown)")),
)

var pointGetToolDef = mcp.NewTool("point_get",
	mcp.WithDescription("Get a point by id. Media are omitted unless include_media is true."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Point id")),
	mcp.WithBoolean("include_media", mcp.Description("Also load the point's media")),
)

var pointListToolDef = mcp.NewTool("point_list",
	mcp.WithDescription("List the points of a trip ordered by time."),
	mcp.WithNumber("trip_id", mcp.Required(), mcp.Description("Trip id")),
)

var pointUpdateToolDef = mcp.NewTool("point_update",
	mcp.WithDescription("Update a point. Omitted fields are unchanged; an empty string clears a text field."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Point id")),
	mcp.WithNumber("trip_id", mcp.Description("Move the point to another trip")),
	mcp.WithNumber("latitude", mcp.Description("Latitude in degrees")),
	mcp.WithNumber("longitude", mcp.Description("Longitude in degrees")),
	mcp.WithNumber("altitude", mcp.Description("Altitude in meters")),
	mcp.WithNumber("time", mcp.Description("Visit time, POSIX seconds")),
	mcp.WithString("title", mcp.Description("Point title")),
	mcp.WithString("address", mcp.Description("Street address")),
	mcp.WithString("journal", mcp.Description("Journal entry (Markdown)")),
)

var pointDeleteToolDef = mcp.NewTool("point_delete",
	mcp.WithDescription("Delete a point and its media metadata. Media files on disk are not removed."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Point id")),
	mcp.WithBoolean("cascade", mcp.Description("Delete media rows by point id in one statement")),
)

var mediaCreateToolDef = mcp.NewTool("media_create",
	mcp.WithDescription("Record a photo or video file on a point. The path is stored as given."),
	mcp.WithNumber("point_id", mcp.Required(), mcp.Description("Point id")),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path of the media file")),
	mcp.WithString("caption", mcp.Description("Caption")),
)

var mediaGetToolDef = mcp.NewTool("media_get",
	mcp.WithDescription("Get a media item by id."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Media id")),
)

var mediaListToolDef = mcp.NewTool("media_list",
	mcp.WithDescription("List the media stored for a point."),
	mcp.WithNumber("point_id", mcp.Required(), mcp.Description("Point id")),
)

var mediaUpdateToolDef = mcp.NewTool("media_update",
	mcp.WithDescription("Update a media item. Omitted fields are unchanged."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Media id")),
	mcp.WithNumber("point_id", mcp.Description("Move the item to another point")),
	mcp.WithString("path", mcp.Description("New file path")),
	mcp.WithString("caption", mcp.Description("New caption; empty clears it")),
)

var mediaDeleteToolDef = mcp.NewTool("media_delete",
	mcp.WithDescription("Delete a media item's metadata. The file is not removed."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Media id")),
)

var exportToolDef = mcp.NewTool("journal_export",
	mcp.WithDescription("Export trips, points and media to a JSONL file in the exports directory or an allowed path."),
	mcp.WithString("path", mcp.Description("Destination .jsonl path (default: exports directory)")),
	mcp.WithNumber("trip_id", mcp.Description("Export only this trip")),
)

var importToolDef = mcp.NewTool("journal_import",
	mcp.WithDescription("Import a JSONL export. Records get new ids; any bad line aborts the whole import."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .jsonl path")),
)
