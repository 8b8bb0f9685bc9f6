package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/hpungsan/mapjournal/internal/config"
	"github.com/hpungsan/mapjournal/internal/dao"
	"github.com/hpungsan/mapjournal/internal/logger"
	"github.com/hpungsan/mapjournal/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"trip": true, "point": true, "media": true,
	"export": true, "import": true, "purge-orphans": true,
	"serve": true, "mcp": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode(args []string) bool {
	if len(args) < 2 {
		return false // No args → MCP server
	}
	arg := args[1]
	if cliCommands[arg] {
		return true
	}
	return isHelpOrVersion(args)
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion(args []string) bool {
	if len(args) < 2 {
		return false
	}
	switch args[1] {
	case "--help", "-h", "--version", "-v", "help":
		return true
	}
	return false
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
  mapjournal

  Local travel journal: trips, points and media

  Usage: mapjournal <command> [options]
         mapjournal --help

  MCP server mode requires piped input.`)
}

// commandLogLevel keeps data commands quiet on stderr unless a level other
// than the default was configured. The servers log at the configured level.
func commandLogLevel(args []string, configured string) string {
	if !isCLIMode(args) || args[1] == "serve" || args[1] == "mcp" {
		return configured
	}
	if configured == "" || configured == config.DefaultConfig().LogLevel {
		return "warn"
	}
	return configured
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before opening storage
	if isHelpOrVersion(os.Args) {
		app := newCLIApp(nil, config.DefaultConfig(), zerolog.Nop())
		if err := app.Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if !isCLIMode(os.Args) && len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fatal("run 'mapjournal --help' for usage")
	}

	baseDir, err := config.BaseDir()
	if err != nil {
		fatal("%v", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fatal("could not determine working directory: %v", err)
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fatal("failed to load config: %v", err)
	}

	log := logger.New("mapjournal", commandLogLevel(os.Args, cfg.LogLevel), os.Stderr)
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Warn().Strs("tools", unknown).Msg("ignoring unknown disabled_tools entries")
	}

	d := dao.New(baseDir, cfg, log)
	if err := d.Open(context.Background()); err != nil {
		fatal("failed to open journal: %v", err)
	}
	defer d.Close()

	if isCLIMode(os.Args) {
		app := newCLIApp(d, cfg, log)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			d.Close()
			os.Exit(1)
		}
		return
	}

	// MCP server mode (default)
	if err := mcp.Run(d, cfg, log, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		d.Close()
		os.Exit(1)
	}
}
