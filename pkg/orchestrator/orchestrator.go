// Package orchestrator runs a file-to-file transcoding job.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/user/avtranscoder/pkg/config"
	"github.com/user/avtranscoder/pkg/pipeline"
	"github.com/user/avtranscoder/pkg/ports"
)

// Config contains all configuration for a job.
type Config struct {
	// Input and output paths. "-" selects stdin or stdout.
	InputPath  string
	OutputPath string

	// Options are the transcoding options; nil fails with BadArguments.
	Options *config.Options

	// ChunkSize is the input read size (default: pipeline.DefaultChunkSize).
	ChunkSize int

	// KeepPartial keeps the output file when the session fails.
	KeepPartial bool
}

// Orchestrator opens the job's files and runs the transcode stage.
type Orchestrator struct {
	transcodeStage pipeline.Stage[pipeline.TranscodeInput, pipeline.TranscodeResult]
	fs             ports.FileSystem
	logger         ports.Logger
}

// New creates a new Orchestrator.
func New(
	transcodeStage pipeline.Stage[pipeline.TranscodeInput, pipeline.TranscodeResult],
	fs ports.FileSystem,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		transcodeStage: transcodeStage,
		fs:             fs,
		logger:         logger,
	}
}

// Run executes the job. On failure the partial output is removed unless
// KeepPartial is set.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) (RunResult, error) {
	o.logger.Info("Transcoding %s to %s", cfg.InputPath, cfg.OutputPath)

	src, err := o.fs.Open(cfg.InputPath)
	if err != nil {
		o.logger.Error("Failed to open input: %s", err)
		return RunResult{}, fmt.Errorf("open input: %w", err)
	}
	defer src.Close()

	dst, err := o.fs.Create(cfg.OutputPath)
	if err != nil {
		o.logger.Error("Failed to create output: %s", err)
		return RunResult{}, fmt.Errorf("create output: %w", err)
	}

	transcoded, err := o.transcodeStage.Execute(ctx, pipeline.TranscodeInput{
		Source:    src,
		Target:    dst,
		Options:   cfg.Options,
		ChunkSize: cfg.ChunkSize,
	})
	closeErr := dst.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("close output: %w", closeErr)
	}

	result := RunResult{
		InputPath:  cfg.InputPath,
		OutputPath: cfg.OutputPath,
		Transcode:  transcoded,
	}

	if err != nil {
		o.logger.Error("Transcoding failed: %s", err)
		if !cfg.KeepPartial {
			if rerr := o.fs.Remove(cfg.OutputPath); rerr != nil {
				o.logger.Warn("Failed to remove partial output %s: %s", cfg.OutputPath, rerr)
			}
		}
		return result, err
	}

	o.logger.Info("Output saved to %s (%d bytes)", cfg.OutputPath, transcoded.BytesOut)
	return result, nil
}

// RunResult contains the results of a job for summary generation.
type RunResult struct {
	InputPath  string
	OutputPath string
	Transcode  pipeline.TranscodeResult
}
