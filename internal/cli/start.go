package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cruciblehq/echod/internal/paths"
	"github.com/cruciblehq/echod/internal/server"
	"golang.org/x/sync/errgroup"
)

// Represents the 'echod start' command.
type StartCmd struct {
	MaxClients   int           `help:"Maximum number of concurrent clients. Zero refuses every client." default:"100"`
	BufferSize   int           `help:"Read buffer size per connection in bytes." default:"512"`
	MaxMalformed int           `help:"Consecutive malformed messages tolerated before disconnecting a client." default:"3"`
	PollInterval time.Duration `help:"Interval at which the accept loop checks for shutdown." default:"10ms"`
	ReusePort    bool          `help:"Set SO_REUSEPORT on the listening socket."`
}

// Executes the start command.
//
// Binds the TCP listener and serves clients until the context is cancelled
// (e.g. via SIGINT or SIGTERM), then waits for every connection handler to
// finish.
func (c *StartCmd) Run(ctx context.Context) error {
	srv, err := server.New(server.Config{
		Address:      RootCmd.Address,
		MaxClients:   c.MaxClients,
		BufferSize:   c.BufferSize,
		MaxMalformed: c.MaxMalformed,
		PollInterval: c.PollInterval,
		ReusePort:    c.ReusePort,
	})
	if err != nil {
		return err
	}

	if err := writePID(); err != nil {
		slog.Warn("failed to write PID file", "error", err)
	}
	defer os.Remove(paths.PIDFile())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group

	g.Go(func() error {
		defer cancel()
		err := srv.Run()
		if errors.Is(err, server.ErrServerClosed) && ctx.Err() != nil {
			return nil // Signalled before the server started
		}
		return err
	})

	g.Go(func() error {
		<-runCtx.Done()
		if ctx.Err() != nil {
			slog.Info("shutting down")
			srv.Stop()
		}
		return nil
	})

	return g.Wait()
}

// Writes the daemon PID so that scripts can find and signal it.
func writePID() error {
	if err := os.MkdirAll(paths.Runtime(), paths.DefaultDirMode); err != nil {
		return err
	}
	return os.WriteFile(paths.PIDFile(), []byte(fmt.Sprintf("%d", os.Getpid())), paths.DefaultFileMode)
}
