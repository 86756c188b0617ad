package app

import "time"

// Config holds everything an App instance needs to run one pipeline.
type Config struct {
	// PipelinePath points at the declaration file (.hcl, .yml or .yaml).
	PipelinePath string
	// Workers bounds the number of concurrently running job instances.
	Workers int
	// GraceTimeout bounds how long a cancelled run waits for running steps.
	GraceTimeout time.Duration
	LogFormat    string
	LogLevel     string

	// ArtifactStore selects the backend: "memory" (default) or "s3".
	ArtifactStore string
	// S3 settings, used when ArtifactStore is "s3". Credentials come from
	// CONVEYOR_S3_ACCESS_KEY / CONVEYOR_S3_SECRET_KEY in the environment.
	S3Endpoint string
	S3Bucket   string
	S3UseTLS   bool
}
