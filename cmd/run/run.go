// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package run

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp/censoredpi/censor"
	"github.com/hashicorp/censoredpi/cmd/help"
	"github.com/hashicorp/censoredpi/cmd/returns"
	"github.com/hashicorp/censoredpi/hcl"
	"github.com/hashicorp/censoredpi/op"
	"github.com/hashicorp/censoredpi/runner"
	"github.com/hashicorp/censoredpi/sink"
)

// helpText is the short usage guidance shown under --help.
const helpText = `Usage: censoredpi run [options]

Censors a decimal expansion of pi: every digit smaller than the digit before it is replaced with '*'. The censored
digits are written to the output, and the number of censored digits is reported.
`

// synopsis is provided in the help output of the enclosing scope, for example `censoredpi --help`.
const synopsis = `Censor the digits of pi`

var _ cli.Command = &cmd{}

type cmd struct {
	ui    cli.Ui
	flags *flag.FlagSet

	// HCL file location
	config string

	input     string
	synthetic int

	output     string
	async      bool
	queueDepth int

	strategy  string
	chunkSize int
	timeout   string
}

func (c *cmd) init() {
	// flag.ContinueOnError allows flag.Parse to return an error if one comes up, rather than doing an `os.Exit(2)`
	// on its own.
	c.flags = flag.NewFlagSet("run", flag.ContinueOnError)

	c.flags.StringVar(&c.config, "config", "", configUsageText)
	c.flags.StringVar(&c.input, "input", "", inputUsageText)
	c.flags.IntVar(&c.synthetic, "synthetic", 0, syntheticUsageText)
	c.flags.StringVar(&c.output, "output", sink.Stdout, outputUsageText)
	c.flags.BoolVar(&c.async, "async", false, asyncUsageText)
	c.flags.IntVar(&c.queueDepth, "queue-depth", 0, queueDepthUsageText)
	c.flags.StringVar(&c.strategy, "strategy", string(censor.InPlace), strategyUsageText)
	c.flags.IntVar(&c.chunkSize, "chunk-size", 0, chunkSizeUsageText)
	c.flags.StringVar(&c.timeout, "timeout", "", timeoutUsageText)

	// When invalid flags are provided, Go will output a usage message of its own. If we direct our flag set to
	// io.Discard, it will effectively be hidden, allowing us to print our own Help message upon failure.
	c.flags.SetOutput(io.Discard)
}

// New produces a new *cmd pointer, initialized for use in a CLI application.
func New(ui cli.Ui) *cmd {
	c := &cmd{ui: ui}
	c.init()
	return c
}

// CommandFactory provides a cli.CommandFactory that will produce an appropriately-initiated *cmd.
func CommandFactory(ui cli.Ui) cli.CommandFactory {
	return func() (cli.Command, error) {
		return New(ui), nil
	}
}

// Help provides help text to users who pass in the --help flag or who enter invalid options.
func (c *cmd) Help() string {
	return help.Usage(helpText, c.flags)
}

// Synopsis provides a brief description of the command, for inclusion in the application's primary --help.
func (c *cmd) Synopsis() string {
	return synopsis
}

// Run executes the command. On successful execution, it returns 0. On unsuccessful execution, a non-zero integer
// is returned instead.
func (c *cmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		// Output the specific error to help the user understand what went wrong.
		c.ui.Warn(err.Error())
		// Since there was an issue in input, let's show our Help to try and assist the user.
		c.ui.Warn(c.Help())
		return returns.FlagParseError
	}

	l := hclog.L().Named("run")

	var cfg hcl.HCL
	if c.config != "" {
		var err error
		if cfg, err = hcl.Parse(c.config); err != nil {
			c.ui.Error(fmt.Sprintf("Failed to load configuration: %s", err))
			return returns.ConfigError
		}
		l.Debug("HCL config is", "hcl", cfg)
	}
	cfg = c.mergeConfig(cfg)

	opts, timeout, err := hcl.Options(cfg.Censor)
	if err != nil {
		c.ui.Error(fmt.Sprintf("Invalid censor configuration: %s", err))
		return returns.ConfigError
	}
	newSink, err := hcl.Sink(cfg.Output)
	if err != nil {
		c.ui.Error(fmt.Sprintf("Invalid output configuration: %s", err))
		return returns.ConfigError
	}

	pi, err := hcl.Digits(cfg.Input)
	if err != nil {
		c.ui.Error(fmt.Sprintf("Failed to load digits: %s", err))
		return returns.InputError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := runner.NewCensorWithContext(ctx, runner.CensorConfig{
		Digits:  pi,
		Options: opts,
		Sink:    newSink,
		Timeout: timeout,
		Logger:  l,
	})
	l.Debug("running", "runner", r.ID(), "input_length", len(pi), "chunk_size", opts.ChunkSize)
	o := r.Run()

	return c.report(o, cfg.Output.Path, l)
}

// report tells the user how the run went and picks the return code.
func (c *cmd) report(o op.Op, output string, l hclog.Logger) int {
	if o.Status != op.Success {
		var sinkErr runner.SinkError
		if errors.As(o.Error, &sinkErr) && sinkErr.Action == "open" {
			c.ui.Error(fmt.Sprintf("Failed to open output: %s", o.Error))
			return returns.OutputError
		}
		c.ui.Error(fmt.Sprintf("Censoring did not complete: %s", o.Error))
		return returns.CensorError
	}

	censored, _ := o.Result["censored"].(int)
	written, _ := o.Result["bytes_written"].(int64)
	if output == sink.Stdout {
		// Terminate the digits line, and keep the report off standard output so the digits can be piped.
		c.ui.Output("")
		l.Info("censored digits", "censored", censored, "bytes_written", written, "duration", o.Duration())
		return returns.Success
	}
	c.ui.Output(fmt.Sprintf("Censored %d digits, wrote %d bytes to %s", censored, written, output))
	return returns.Success
}

// mergeConfig applies the flags the user set on top of the HCL config, so that flags take priority.
func (c *cmd) mergeConfig(cfg hcl.HCL) hcl.HCL {
	if cfg.Input == nil {
		cfg.Input = &hcl.Input{}
	}
	if cfg.Censor == nil {
		cfg.Censor = &hcl.Censor{}
	}
	if cfg.Output == nil {
		cfg.Output = &hcl.Output{}
	}

	set := make(map[string]bool)
	c.flags.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	if set["input"] {
		cfg.Input.Path = c.input
	}
	if set["synthetic"] {
		cfg.Input.Synthetic = c.synthetic
		if !set["input"] {
			cfg.Input.Path = ""
		}
	}
	if set["output"] || cfg.Output.Path == "" {
		cfg.Output.Path = c.output
	}
	if set["async"] {
		cfg.Output.Async = c.async
	}
	if set["queue-depth"] {
		cfg.Output.QueueDepth = c.queueDepth
	}
	if set["strategy"] || cfg.Censor.Strategy == "" {
		cfg.Censor.Strategy = c.strategy
	}
	if set["chunk-size"] {
		cfg.Censor.ChunkSize = c.chunkSize
	}
	if set["timeout"] {
		cfg.Censor.Timeout = c.timeout
	}
	return cfg
}
