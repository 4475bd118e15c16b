package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/db"
	"github.com/hpungsan/pocket/internal/kv"
	"github.com/hpungsan/pocket/internal/logger"
	"github.com/hpungsan/pocket/internal/mcp"
	"github.com/hpungsan/pocket/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"list": true, "show": true, "save": true, "author": true, "delete": true,
	"progress": true, "known": true, "quiz": true, "notes": true,
	"export": true, "import": true, "validate": true, "reindex": true,
	"serve": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___           _        _
  | _ \___  __ _| |_____| |_
  |  _/ _ \/ _| | / / -_)  _|
  |_| \___/\__|_|_\_\___|\__|

  Notes, flashcards and quizzes in your pocket

  Usage: pocket <command> [options]
         pocket serve          open the study UI
         pocket --help

  MCP server mode requires piped input.`)
}

// openStore opens the configured backend under baseDir. The returned func
// releases it.
func openStore(baseDir string, cfg *config.Config, log *logger.Logger) (*store.Store, func(), error) {
	if cfg.Backend == config.BackendMemory {
		log.Warn("using in-memory backend; nothing will be kept after exit")
		return store.New(kv.NewMemory(), store.WithLogger(log)), func() {}, nil
	}
	if cfg.Backend != config.BackendSQLite {
		return nil, nil, fmt.Errorf("unknown backend %q (want %q or %q)", cfg.Backend, config.BackendSQLite, config.BackendMemory)
	}

	database, err := db.Init(baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db.ConfigurePool(database, cfg)

	return store.New(db.NewKV(database), store.WithLogger(log)), func() { database.Close() }, nil
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before opening the store
	if isHelpOrVersion() {
		app := newCLIApp(nil, config.DefaultConfig(), logger.Nop())
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}
	baseDir := filepath.Join(homeDir, config.DirName)

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	st, closeStore, err := openStore(baseDir, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(st, cfg, log)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			closeStore()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'pocket --help' for usage.\n")
		closeStore()
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(st, cfg, log, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		closeStore()
		os.Exit(1)
	}
}
