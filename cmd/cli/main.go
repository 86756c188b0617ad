package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/conveyorgo/internal/app"
	"github.com/vk/conveyorgo/internal/cli"
	"github.com/vk/conveyorgo/internal/run"
)

// main is the entrypoint for the conveyorgo application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := runMain(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runMain encapsulates the main application logic for easier testing and
// error handling.
func runMain(outW io.Writer, args []string) error {
	appConfig, ev, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	loader, err := app.LoaderForPath(appConfig.PipelinePath)
	if err != nil {
		return &cli.ExitError{Code: 2, Message: err.Error()}
	}

	conveyorApp, err := app.NewApp(outW, appConfig, loader)
	if err != nil {
		return err
	}

	// A termination signal cancels the run; the scheduler then drains
	// in-flight steps within the grace timeout.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := conveyorApp.Run(ctx, ev)
	if err != nil {
		return err
	}

	app.WriteSummary(outW, res)
	switch res.Status {
	case run.StatusFailed:
		return &cli.ExitError{Code: 1, Message: "run failed"}
	case run.StatusCancelled:
		return &cli.ExitError{Code: 130, Message: "run cancelled"}
	}
	return nil
}
