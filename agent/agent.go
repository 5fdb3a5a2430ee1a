// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/mholt/archiver"

	"github.com/hashicorp/censoredpi/hcl"
	"github.com/hashicorp/censoredpi/op"
	"github.com/hashicorp/censoredpi/runner"
	"github.com/hashicorp/censoredpi/runner/host"
	"github.com/hashicorp/censoredpi/util"
	"github.com/hashicorp/censoredpi/version"
)

// Agent holds the runners that compare the censorship strategies, and their results.
type Agent struct {
	l          hclog.Logger
	ctx        context.Context
	runners    []runner.Runner
	results    map[string]op.Op
	tmpDir     string
	RunID      string          `json:"run_id"`
	Start      time.Time       `json:"started_at"`
	End        time.Time       `json:"ended_at"`
	Duration   string          `json:"duration"`
	NumErrors  int             `json:"num_errors"`
	NumRunners int             `json:"num_runners"`
	Config     Config          `json:"configuration"`
	Version    version.Version `json:"version"`
	Ops        []ManifestOp    `json:"ops"`
}

func NewAgent(config Config, logger hclog.Logger) (*Agent, error) {
	return NewAgentWithContext(context.Background(), config, logger)
}

// NewAgentWithContext initializes an Agent whose runs stop early once ctx is done. The results gathered so far are
// still written, and the temp directory is still cleaned up.
func NewAgentWithContext(ctx context.Context, config Config, logger hclog.Logger) (*Agent, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = hclog.L()
	}
	if config.Destination == "" {
		config.Destination = "."
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return &Agent{
		l:       logger,
		ctx:     ctx,
		results: make(map[string]op.Op),
		RunID:   id.String(),
		Config:  config,
		Version: version.GetVersion(),
	}, nil
}

// Run manages the Agent's lifecycle. We create our temp directory, build and filter the runners, run them one at a
// time, write the results, and finally cleanup after ourselves. Errors are collected and returned together, and the
// run only ends early if nothing useful could come of continuing.
func (a *Agent) Run() error {
	var errs *multierror.Error

	a.Start = time.Now()

	if errTemp := a.CreateTemp(); errTemp != nil {
		a.l.Error("Failed to create temp directory", "error", errTemp)
		return multierror.Append(errs, errTemp)
	}

	a.l.Debug("Building runners")
	if errSetup := a.Setup(); errSetup != nil {
		a.l.Error("Failed to build runners", "error", errSetup)
		errs = multierror.Append(errs, errSetup)
		if errCleanup := a.Cleanup(); errCleanup != nil {
			errs = multierror.Append(errs, errCleanup)
		}
		return errs
	}

	a.l.Info("Comparing strategies", "runners", a.NumRunners, "input_length", len(a.Config.Digits))
	if errRun := a.RunRunners(); errRun != nil {
		a.l.Error("Failed running strategies", "error", errRun)
		errs = multierror.Append(errs, errRun)
	}

	a.recordEnd()

	if errWrite := a.WriteOutput(); errWrite != nil {
		a.l.Error("Failed running output", "error", errWrite)
		errs = multierror.Append(errs, errWrite)
	}
	if errCleanup := a.Cleanup(); errCleanup != nil {
		a.l.Error("Failed to cleanup after the run", "error", errCleanup)
		errs = multierror.Append(errs, errCleanup)
	}
	return errs.ErrorOrNil()
}

func (a *Agent) recordEnd() {
	// Record the end timestamps so we can write it out.
	a.End = time.Now()
	a.Duration = fmt.Sprintf("%v seconds", a.End.Sub(a.Start).Seconds())
}

// CreateTemp creates a temporary directory so that we may gather results before compressing the final artifact.
func (a *Agent) CreateTemp() error {
	if a.Config.Dryrun {
		return nil
	}

	parent, err := os.MkdirTemp("", "censoredpi")
	if err != nil {
		a.l.Error("Error creating temp directory", "message", err)
		return err
	}
	// The bundle directory is named so that it unpacks to something recognisable.
	a.tmpDir = filepath.Join(parent, a.BundleName())
	if err := os.Mkdir(a.tmpDir, 0755); err != nil {
		return err
	}
	a.l.Debug("Created temp directory", "name", hclog.Fmt("%s", a.tmpDir))

	return nil
}

// Cleanup attempts to delete the temp directory when the run is done.
func (a *Agent) Cleanup() error {
	if a.Config.Dryrun || a.tmpDir == "" {
		return nil
	}

	a.l.Debug("Cleaning up temporary files")

	err := os.RemoveAll(filepath.Dir(a.tmpDir))
	if err != nil {
		a.l.Warn("Failed to clean up temp dir", "message", err)
	}
	return err
}

// Setup builds a runner sequence for every strategy variant, then applies the bench's select and exclude filters.
func (a *Agent) Setup() error {
	if a.Config.Digits == "" {
		return fmt.Errorf("no digits to censor, input=%s", a.Config.InputPath)
	}

	runners, err := hcl.BuildRunners(a.ctx, a.Config.Bench, a.Config.Timeout, a.Config.Digits, nil, a.l)
	if err != nil {
		return err
	}

	if b := a.Config.Bench; b != nil {
		if len(b.Selects) > 0 {
			if runners, err = runner.Select(b.Selects, runners); err != nil {
				return err
			}
		}
		if runners, err = runner.Exclude(b.Excludes, runners); err != nil {
			return err
		}
	}

	a.runners = runners
	a.NumRunners = len(runners)
	return nil
}

// RunRunners records the host, then executes each runner in turn. Runners are never run concurrently, since
// allocation measurements cover the whole process.
func (a *Agent) RunRunners() error {
	if !a.Config.Dryrun {
		a.recordHost()
	}

	for i, r := range a.runners {
		if err := a.ctx.Err(); err != nil {
			a.l.Warn("stopping early", "skipped", len(a.runners)-i, "error", err)
			return fmt.Errorf("stopped after %d of %d strategies: %w", i, a.NumRunners, err)
		}
		if a.Config.Dryrun {
			a.l.Info("would run", "runner", r.ID())
			continue
		}

		a.l.Info("running", "runner", r.ID())
		o := r.Run()
		a.results[r.ID()] = o
		if o.Status != op.Success {
			a.NumErrors++
			a.l.Warn("result",
				"runner", r.ID(),
				"status", o.Status,
				"error", o.Error,
			)
		}
	}

	if a.NumErrors > 0 {
		return fmt.Errorf("%d of %d strategies did not complete", a.NumErrors, a.NumRunners)
	}
	return nil
}

// recordHost adds the host info to the results. A host that cannot be read is logged, but does not fail the run.
func (a *Agent) recordHost() {
	h := host.NewInfo(a.Config.Redactions, a.l)
	o := h.Run()
	a.results[h.ID()] = o
	if o.Status != op.Success {
		a.l.Warn("unable to record host info", "error", o.Error)
	}
}

// Results returns the op of every runner that has run, keyed by runner ID.
func (a *Agent) Results() map[string]op.Op {
	return a.results
}

// WriteOutput renders the manifest and results of the run and writes the compressed archive.
func (a *Agent) WriteOutput() (err error) {
	if a.Config.Dryrun {
		return nil
	}

	if err = os.MkdirAll(a.Config.Destination, 0755); err != nil {
		return err
	}

	a.l.Debug("Writing results and manifest, and creating tar.gz archive")

	rFile := filepath.Join(a.tmpDir, "Results.json")
	if err = util.WriteJSON(a.results, rFile); err != nil {
		a.l.Error("util.WriteJSON", "error", err)
		return err
	}
	a.l.Info("Created Results.json file", "dest", rFile)

	a.Ops = WalkResultsForManifest(a.results)
	mFile := filepath.Join(a.tmpDir, "Manifest.json")
	if err = util.WriteJSON(a, mFile); err != nil {
		a.l.Error("util.WriteJSON", "error", err)
		return err
	}
	a.l.Info("Created Manifest.json file", "dest", mFile)

	dest := a.DestinationFile()
	if err = archiver.NewTarGz().Archive([]string{a.tmpDir}, dest); err != nil {
		a.l.Error("archiver.Archive", "error", err)
		return err
	}
	a.l.Info("Compressed and archived output file", "dest", dest)

	return nil
}

// BundleName is the name of the results directory inside the archive.
func (a *Agent) BundleName() string {
	return "censoredpi-" + a.RunID
}

// DestinationFile is the path of the archive written by WriteOutput.
func (a *Agent) DestinationFile() string {
	return filepath.Join(a.Config.Destination, a.BundleName()+".tar.gz")
}
