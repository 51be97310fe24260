package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/cruciblehq/echod/internal"
	"github.com/cruciblehq/echod/internal/paths"
)

// Represents the root command for the echod daemon.
var RootCmd struct {
	Quiet   bool       `short:"q" help:"Suppress informational output."`
	Verbose bool       `short:"v" help:"Enable verbose output."`
	Debug   bool       `short:"d" help:"Enable debug output."`
	Address string     `short:"a" help:"TCP address to listen on or connect to." default:"localhost:8080" placeholder:"HOST:PORT"`
	Start   StartCmd   `cmd:"" help:"Start the daemon."`
	Echo    EchoCmd    `cmd:"" help:"Send an echo request to a running daemon."`
	Add     AddCmd     `cmd:"" help:"Ask a running daemon to add two integers."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("The Crucible echo daemon.\n\nAnswers echo and add requests over TCP for a bounded number of clients."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, paths.ConfigFile()),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	logger, ok := slog.Default().Handler().(*log.Logger)
	if !ok {
		return // Not a charmbracelet logger, nothing to configure
	}

	if RootCmd.Debug {
		internal.SetDebug(true)
	}
	if RootCmd.Quiet {
		internal.SetQuiet(true)
	}
	if RootCmd.Verbose {
		internal.SetVerbose(true)
	}

	// Configure formatter
	if !isatty(os.Stderr) {
		logger.SetFormatter(log.LogfmtFormatter)
	}
	logger.SetReportTimestamp(internal.IsVerbose())
	logger.SetReportCaller(internal.IsDebug() && internal.IsVerbose())

	// Commit
	logger.SetLevel(log.Level(internal.LogLevel()))
	logger.SetOutput(os.Stderr)
}

// Whether the given file is an interactive terminal.
func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
