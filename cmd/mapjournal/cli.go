package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/mapjournal/internal/config"
	"github.com/hpungsan/mapjournal/internal/dao"
	"github.com/hpungsan/mapjournal/internal/errors"
	"github.com/hpungsan/mapjournal/internal/mcp"
	"github.com/hpungsan/mapjournal/internal/ops"
	"github.com/hpungsan/mapjournal/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(d *dao.DAO, cfg *config.Config, log zerolog.Logger) *cli.App {
	app := &cli.App{
		Name:    "mapjournal",
		Usage:   "Local travel journal: trips, points and media",
		Version: Version,
		Commands: []*cli.Command{
			tripCmd(d),
			pointCmd(d),
			mediaCmd(d, cfg),
			exportCmd(d, cfg),
			importCmd(d, cfg),
			purgeCmd(d),
			serveCmd(d, cfg, log),
			mcpCmd(d, cfg, log),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

var cascadeFlag = &cli.BoolFlag{Name: "cascade", Usage: "Also delete dependent rows found in storage"}

// tripCmd creates the trip command group.
func tripCmd(d *dao.DAO) *cli.Command {
	return &cli.Command{
		Name:  "trip",
		Usage: "Manage trips",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a trip",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Trip name"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Trip description"},
				},
				Action: func(c *cli.Context) error {
					trip, err := ops.CreateTrip(c.Context, d, ops.CreateTripInput{
						Name:        optString(c, "name"),
						Description: optString(c, "description"),
					})
					return respond(c, trip, err)
				},
			},
			{
				Name:      "get",
				Usage:     "Show a trip",
				ArgsUsage: idArgsUsage,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "include-points", Usage: "Load the trip's points and their media"},
				},
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return outputError(err)
					}
					if c.Bool("include-points") {
						trip, err := ops.LoadTrip(c.Context, d, id)
						return respond(c, trip, err)
					}
					trip, err := d.GetTrip(c.Context, id)
					return respond(c, trip, err)
				},
			},
			{
				Name:  "list",
				Usage: "List all trips",
				Action: func(c *cli.Context) error {
					trips, err := d.GetAllTrips(c.Context)
					return respond(c, trips, err)
				},
			},
			{
				Name:      "update",
				Usage:     "Update a trip (an empty value clears the field)",
				ArgsUsage: idArgsUsage,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "New name"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New description"},
				},
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return outputError(err)
					}
					trip, err := ops.UpdateTrip(c.Context, d, ops.UpdateTripInput{
						ID:          id,
						Name:        optString(c, "name"),
						Description: optString(c, "description"),
					})
					return respond(c, trip, err)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a trip (points are kept unless --cascade)",
				ArgsUsage: idArgsUsage,
				Flags:     []cli.Flag{cascadeFlag},
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return outputError(err)
					}
					out, err := ops.DeleteTrip(c.Context, d, ops.DeleteInput{ID: id, Cascade: c.Bool("cascade")})
					return respond(c, out, err)
				},
			},
		},
	}
}

// pointFlags are shared by point create and point update.
func pointFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{Name: "trip", Usage: "Trip ID"},
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Point title"},
		&cli.Float64Flag{Name: "lat", Usage: "Latitude in degrees"},
		&cli.Float64Flag{Name: "lon", Usage: "Longitude in degrees"},
		&cli.Float64Flag{Name: "alt", Usage: "Altitude in meters"},
		&cli.Int64Flag{Name: "time", Usage: "Unix time in seconds"},
		&cli.StringFlag{Name: "address", Usage: "Street address"},
		&cli.StringFlag{Name: "journal", Aliases: []string{"j"}, Usage: "Journal text (Markdown), or - to read stdin"},
	}
}

// pointCmd creates the point command group.
func pointCmd(d *dao.DAO) *cli.Command {
	return &cli.Command{
		Name:  "point",
		Usage: "Manage points on a trip",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a point on a trip",
				Flags: pointFlags(),
				Action: func(c *cli.Context) error {
					if !c.IsSet("trip") || !c.IsSet("lat") || !c.IsSet("lon") {
						return outputError(errors.NewInvalidRequest("--trip, --lat and --lon are required"))
					}
					t, err := timeFlag(c)
					if err != nil {
						return outputError(err)
					}
					journal, err := journalFlag(c)
					if err != nil {
						return outputError(err)
					}
					input := ops.CreatePointInput{
						TripID:    c.Int64("trip"),
						Title:     optString(c, "title"),
						Latitude:  c.Float64("lat"),
						Longitude: c.Float64("lon"),
						Altitude:  c.Float64("alt"),
						Address:   optString(c, "address"),
						Journal:   journal,
					}
					if t != nil {
						input.Time = *t
					}
					point, err := ops.CreatePoint(c.Context, d, input)
					return respond(c, point, err)
				},
			},
			{
				Name:      "get",
				Usage:     "Show a point",
				ArgsUsage: idArgsUsage,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "include-media", Usage: "Load the point's media"},
				},
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return outputError(err)
					}
					if c.Bool("include-media") {
						point, err := ops.LoadPoint(c.Context, d, id)
						return respond(c, point, err)
					}
					point, err := d.GetPoint(c.Context, id)
					return respond(c, point, err)
				},
			},
			{
				Name:  "list",
				Usage: "List the points of a trip in time order",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "trip", Required: true, Usage: "Trip ID"},
				},
				Action: func(c *cli.Context) error {
					points, err := d.GetPointsByTrip(c.Context, c.Int64("trip"))
					return respond(c, points, err)
				},
			},
			{
				Name:      "update",
				Usage:     "Update a point (an empty text value clears the field)",
				ArgsUsage: idArgsUsage,
				Flags:     pointFlags(),
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return outputError(err)
					}
					t, err := timeFlag(c)
					if err != nil {
						return outputError(err)
					}
					journal, err := journalFlag(c)
					if err != nil {
						return outputError(err)
					}
					point, err := ops.UpdatePoint(c.Context, d, ops.UpdatePointInput{
						ID:        id,
						TripID:    optInt64(c, "trip"),
						Title:     optString(c, "title"),
						Latitude:  optFloat(c, "lat"),
						Longitude: optFloat(c, "lon"),
						Altitude:  optFloat(c, "alt"),
						Time:      t,
						Address:   optString(c, "address"),
						Journal:   journal,
					})
					return respond(c, point, err)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a point and its media records",
				ArgsUsage: idArgsUsage,
				Flags:     []cli.Flag{cascadeFlag},
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return outputError(err)
					}
					out, err := ops.DeletePoint(c.Context, d, ops.DeleteInput{ID: id, Cascade: c.Bool("cascade")})
					return respond(c, out, err)
				},
			},
		},
	}
}

// mediaCmd creates the media command group.
func mediaCmd(d *dao.DAO, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "media",
		Usage: "Manage media attached to points",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Record an existing media file on a point",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "point", Required: true, Usage: "Point ID"},
					&cli.StringFlag{Name: "path", Required: true, Usage: "Media file path"},
					&cli.StringFlag{Name: "caption", Aliases: []string{"c"}, Usage: "Caption"},
				},
				Action: func(c *cli.Context) error {
					m, err := ops.CreateMedia(c.Context, d, ops.CreateMediaInput{
						PointID: c.Int64("point"),
						Path:    c.String("path"),
						Caption: optString(c, "caption"),
					})
					return respond(c, m, err)
				},
			},
			{
				Name:      "attach",
				Usage:     "Copy a file into the media directory and record it on a point",
				ArgsUsage: "<file>  (options must come before the file)",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "point", Required: true, Usage: "Point ID"},
					&cli.StringFlag{Name: "caption", Aliases: []string{"c"}, Usage: "Caption"},
				},
				Action: func(c *cli.Context) error {
					source, err := singleArg(c, "file")
					if err != nil {
						return outputError(err)
					}
					m, err := ops.AttachMedia(c.Context, d, cfg, ops.AttachMediaInput{
						PointID: c.Int64("point"),
						Source:  source,
						Caption: optString(c, "caption"),
					})
					return respond(c, m, err)
				},
			},
			{
				Name:      "get",
				Usage:     "Show a media item",
				ArgsUsage: idArgsUsage,
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return outputError(err)
					}
					m, err := d.GetMedia(c.Context, id)
					return respond(c, m, err)
				},
			},
			{
				Name:  "list",
				Usage: "List the media of a point",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "point", Required: true, Usage: "Point ID"},
				},
				Action: func(c *cli.Context) error {
					media, err := d.GetMediaByPoint(c.Context, c.Int64("point"))
					return respond(c, media, err)
				},
			},
			{
				Name:      "update",
				Usage:     "Update a media item",
				ArgsUsage: idArgsUsage,
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "point", Usage: "Move to this point"},
					&cli.StringFlag{Name: "path", Usage: "New file path"},
					&cli.StringFlag{Name: "caption", Aliases: []string{"c"}, Usage: "New caption (empty clears)"},
				},
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return outputError(err)
					}
					m, err := ops.UpdateMedia(c.Context, d, ops.UpdateMediaInput{
						ID:      id,
						PointID: optInt64(c, "point"),
						Path:    optString(c, "path"),
						Caption: optString(c, "caption"),
					})
					return respond(c, m, err)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a media record (the file is kept)",
				ArgsUsage: idArgsUsage,
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return outputError(err)
					}
					out, err := ops.DeleteMedia(c.Context, d, id)
					return respond(c, out, err)
				},
			},
		},
	}
}

// exportCmd creates the export command.
func exportCmd(d *dao.DAO, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export trips, points and media to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file path (default: exports directory)"},
			&cli.Int64Flag{Name: "trip", Usage: "Export only this trip"},
		},
		Action: func(c *cli.Context) error {
			out, err := ops.Export(c.Context, d, cfg, ops.ExportInput{
				Path:   c.String("path"),
				TripID: optInt64(c, "trip"),
			})
			return respond(c, out, err)
		},
	}
}

// importCmd creates the import command.
func importCmd(d *dao.DAO, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import a JSONL export (all records or none)",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			path, err := singleArg(c, "path")
			if err != nil {
				return outputError(err)
			}
			out, err := ops.Import(c.Context, d, cfg, ops.ImportInput{Path: path})
			if err != nil {
				return outputError(err)
			}
			if err := outputJSON(c.App.Writer, out); err != nil {
				return err
			}
			if len(out.Errors) > 0 {
				return cli.Exit(fmt.Sprintf("[%s] import rejected: %d invalid records", errors.ErrValidation, len(out.Errors)), 1)
			}
			return nil
		},
	}
}

// purgeCmd creates the purge-orphans command.
func purgeCmd(d *dao.DAO) *cli.Command {
	return &cli.Command{
		Name:  "purge-orphans",
		Usage: "Delete points whose trip and media whose point no longer exist",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Only count what would be deleted"},
		},
		Action: func(c *cli.Context) error {
			out, err := ops.PurgeOrphans(c.Context, d, ops.PurgeInput{DryRun: c.Bool("dry-run")})
			return respond(c, out, err)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(d *dao.DAO, cfg *config.Config, log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the read-only journal viewer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Port (default from config)"},
		},
		Action: func(c *cli.Context) error {
			serveCfg := *cfg
			if c.IsSet("bind") {
				serveCfg.WebBind = c.String("bind")
			}
			if c.IsSet("port") {
				serveCfg.WebPort = c.Int("port")
			}
			srv, err := web.NewServer(d, &serveCfg, log, Version)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv, log)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(d *dao.DAO, cfg *config.Config, log zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve journal tools over MCP stdio",
		Action: func(c *cli.Context) error {
			return mcp.Run(d, cfg, log, Version)
		},
	}
}

// Helper functions

// respond writes v as JSON, or turns err into a CLI exit error.
func respond(c *cli.Context, v any, err error) error {
	if err != nil {
		return outputError(err)
	}
	return outputJSON(c.App.Writer, v)
}

// outputJSON marshals result to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var jErr *errors.JournalError
	if stderrors.As(err, &jErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", jErr.Code, jErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// idArgsUsage documents that options go before the positional id: flag
// parsing stops at the first positional argument.
const idArgsUsage = "<id>  (options must come before the id)"

// singleArg returns the only positional argument. Anything after it is
// rejected, since flags given there would not be parsed.
func singleArg(c *cli.Context, name string) (string, error) {
	switch c.NArg() {
	case 0:
		return "", errors.NewInvalidRequest(name + " argument is required")
	case 1:
		return c.Args().First(), nil
	default:
		return "", errors.NewInvalidRequest(fmt.Sprintf(
			"unexpected arguments after <%s>: %s (options must precede <%s>)",
			name, strings.Join(c.Args().Tail(), " "), name))
	}
}

// argID parses the only positional argument as a row id.
func argID(c *cli.Context) (int64, error) {
	raw, err := singleArg(c, "id")
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("id must be a positive integer, got %q", raw))
	}
	return id, nil
}

// optString returns the flag value if it was given, nil otherwise.
func optString(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}

func optInt64(c *cli.Context, name string) *int64 {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Int64(name)
	return &v
}

func optFloat(c *cli.Context, name string) *float64 {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Float64(name)
	return &v
}

// timeFlag reads --time, which must fit a 32-bit Unix timestamp.
func timeFlag(c *cli.Context) (*int32, error) {
	if !c.IsSet("time") {
		return nil, nil
	}
	v := c.Int64("time")
	if v < math.MinInt32 || v > math.MaxInt32 {
		return nil, errors.NewValidation("time", fmt.Sprintf("time %d does not fit in 32 bits", v))
	}
	t := int32(v)
	return &t, nil
}

// journalFlag reads --journal; "-" takes the text from stdin.
func journalFlag(c *cli.Context) (*string, error) {
	j := optString(c, "journal")
	if j == nil || *j != "-" {
		return j, nil
	}
	text, err := readStdin(c.App.Reader)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &text, nil
}

// maxStdinBytes caps journal text read from stdin.
const maxStdinBytes = 1 << 20

// readStdin reads at most maxStdinBytes from r.
func readStdin(r io.Reader) (string, error) {
	if r == nil {
		r = os.Stdin
	}
	data, err := io.ReadAll(io.LimitReader(r, maxStdinBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxStdinBytes {
		return "", fmt.Errorf("stdin exceeds %d bytes", maxStdinBytes)
	}
	return strings.TrimSpace(string(data)), nil
}
