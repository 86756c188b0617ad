package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/vk/conveyorgo/internal/app"
	"github.com/vk/conveyorgo/internal/event"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app config
// and the trigger event, a boolean indicating if the program should exit
// cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, event.Event, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("conveyorgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
ConveyorGo - A declarative pipeline execution engine.

Usage:
  conveyorgo [options] [PIPELINE_PATH]

Arguments:
  PIPELINE_PATH
    Path to a pipeline declaration file (.hcl, .yml or .yaml).

Options:
`)
		flagSet.PrintDefaults()
	}

	pipelineFlag := flagSet.String("pipeline", "", "Path to the pipeline declaration file.")
	pFlag := flagSet.String("p", "", "Path to the pipeline declaration file (shorthand).")
	eventFlag := flagSet.String("event", "manual", "Trigger event kind. Options: 'push', 'release', 'manual'.")
	refFlag := flagSet.String("ref", "", "Git ref the event carries, e.g. 'refs/heads/master'.")
	messageFlag := flagSet.String("message", "", "Commit message the event carries.")
	tagFlag := flagSet.Bool("tag", false, "Whether the event's ref is a tag.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 10, "Number of concurrent workers for the scheduler.")
	graceFlag := flagSet.Duration("grace-timeout", 10*time.Second, "How long a cancelled run waits for in-flight steps.")
	storeFlag := flagSet.String("artifact-store", "memory", "Artifact store backend. Options: 'memory' or 's3'.")
	s3EndpointFlag := flagSet.String("s3-endpoint", "", "S3-compatible endpoint for the artifact store.")
	s3BucketFlag := flagSet.String("s3-bucket", "", "Bucket name for the S3 artifact store.")
	s3TLSFlag := flagSet.Bool("s3-tls", true, "Use TLS when talking to the S3 endpoint.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, event.Event{}, true, nil
		}
		return nil, event.Event{}, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *pipelineFlag != "" {
		path = *pipelineFlag
	} else if *pFlag != "" {
		path = *pFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Pipeline path determined.", "path", path)

	if path == "" {
		slog.Debug("No pipeline path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, event.Event{}, true, nil
	}

	kind, err := event.ParseKind(strings.ToLower(*eventFlag))
	if err != nil {
		return nil, event.Event{}, false, &ExitError{Code: 2, Message: err.Error()}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, event.Event{}, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, event.Event{}, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *workersFlag < 1 {
		return nil, event.Event{}, false, &ExitError{Code: 2, Message: "invalid workers: must be at least 1"}
	}
	if *storeFlag == "s3" && (*s3EndpointFlag == "" || *s3BucketFlag == "") {
		return nil, event.Event{}, false, &ExitError{Code: 2, Message: "artifact-store 's3' requires -s3-endpoint and -s3-bucket"}
	}
	slog.Debug("CLI parameter validation complete.")

	cfg := &app.Config{
		PipelinePath:  path,
		Workers:       *workersFlag,
		GraceTimeout:  *graceFlag,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
		ArtifactStore: *storeFlag,
		S3Endpoint:    *s3EndpointFlag,
		S3Bucket:      *s3BucketFlag,
		S3UseTLS:      *s3TLSFlag,
	}
	ev := event.Event{
		Kind:          kind,
		Ref:           *refFlag,
		CommitMessage: *messageFlag,
		IsTag:         *tagFlag,
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, ev, false, nil
}
