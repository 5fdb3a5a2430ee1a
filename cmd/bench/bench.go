// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package bench

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp/censoredpi/agent"
	"github.com/hashicorp/censoredpi/cmd/help"
	"github.com/hashicorp/censoredpi/cmd/returns"
	"github.com/hashicorp/censoredpi/hcl"
)

// helpText is the short usage guidance shown under --help.
const helpText = `Usage: censoredpi bench [options]

Compares the censoring strategies. Each strategy censors the same digits several times while the bytes it allocates
are measured. The results, along with a description of the host, are bundled into a tar.gz archive, and a summary
table is printed.
`

// synopsis is provided in the help output of the enclosing scope, for example `censoredpi --help`.
const synopsis = `Compare the allocations of the censoring strategies`

var _ cli.Command = &cmd{}

type cmd struct {
	ui    cli.Ui
	flags *flag.FlagSet

	// HCL file location
	config string

	input     string
	synthetic int

	iterations int
	chunkSizes []int
	selects    []string
	excludes   []string
	timeout    string

	// Bundle write location
	destination string
	dryrun      bool
}

func (c *cmd) init() {
	// flag.ContinueOnError allows flag.Parse to return an error if one comes up, rather than doing an `os.Exit(2)`
	// on its own.
	c.flags = flag.NewFlagSet("bench", flag.ContinueOnError)

	c.flags.StringVar(&c.config, "config", "", configUsageText)
	c.flags.StringVar(&c.input, "input", "", inputUsageText)
	c.flags.IntVar(&c.synthetic, "synthetic", 0, syntheticUsageText)
	c.flags.IntVar(&c.iterations, "iterations", 0, iterationsUsageText)
	c.flags.Var(&IntsFlag{&c.chunkSizes}, "chunk-sizes", chunkSizesUsageText)
	c.flags.Var(&CSVFlag{&c.selects}, "select", selectUsageText)
	c.flags.Var(&CSVFlag{&c.excludes}, "exclude", excludeUsageText)
	c.flags.StringVar(&c.timeout, "timeout", "", timeoutUsageText)
	c.flags.StringVar(&c.destination, "destination", ".", destinationUsageText)
	c.flags.StringVar(&c.destination, "dest", ".", destUsageText)
	c.flags.BoolVar(&c.dryrun, "dryrun", false, dryrunUsageText)

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
	return help.Usage(helpText+"\nExample configuration:\n\n"+agent.ExampleConfig, c.flags)
}

// Synopsis provides a brief description of the command, for inclusion in the application's primary --help.
func (c *cmd) Synopsis() string {
	return synopsis
}

// Run executes the command. On successful execution, it returns 0. On unsuccessful execution, a non-zero integer
// is returned instead.
func (c *cmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		c.ui.Warn(err.Error())
		c.ui.Warn(c.Help())
		return returns.FlagParseError
	}

	l := hclog.L().Named("bench")

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

	// The strategies come from the bench block; only the timeout is taken from the censor block.
	_, timeout, err := hcl.Options(cfg.Censor)
	if err != nil {
		c.ui.Error(fmt.Sprintf("Invalid censor configuration: %s", err))
		return returns.ConfigError
	}

	redactions, err := hcl.MapRedacts(cfg.Redactions)
	if err != nil {
		c.ui.Error(fmt.Sprintf("Invalid redact configuration: %s", err))
		return returns.ConfigError
	}

	pi, err := hcl.Digits(cfg.Input)
	if err != nil {
		c.ui.Error(fmt.Sprintf("Failed to load digits: %s", err))
		return returns.InputError
	}

	// An interrupt stops the remaining strategies, but the agent still writes what it has and cleans up.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := agent.NewAgentWithContext(ctx, agent.Config{
		Digits:      pi,
		InputPath:   cfg.Input.Path,
		Bench:       cfg.Bench,
		Timeout:     timeout,
		Dryrun:      c.dryrun,
		Destination: c.destination,
		Redactions:  redactions,
	}, l)
	if err != nil {
		c.ui.Error(fmt.Sprintf("Problem creating agent: %s", err))
		return returns.AgentSetupError
	}

	runErr := a.Run()

	if c.dryrun {
		c.ui.Output(fmt.Sprintf("Dry run complete, %d strategies would run", a.NumRunners))
	} else if a.NumRunners > 0 {
		var buf bytes.Buffer
		if err := a.WriteSummary(&buf); err != nil {
			l.Warn("failed to generate report summary; please review output files to ensure everything expected is present", "err", err)
		} else {
			c.ui.Output(buf.String())
		}
		if runErr == nil {
			c.ui.Output(fmt.Sprintf("Wrote results to %s", a.DestinationFile()))
		}
	}

	if runErr != nil {
		c.ui.Error(fmt.Sprintf("Bench did not complete: %s", runErr))
		return returns.AgentExecutionError
	}
	return returns.Success
}

// mergeConfig applies the flags the user set on top of the HCL config, so that flags take priority.
func (c *cmd) mergeConfig(cfg hcl.HCL) hcl.HCL {
	if cfg.Input == nil {
		cfg.Input = &hcl.Input{}
	}
	if cfg.Bench == nil {
		cfg.Bench = &hcl.Bench{}
	}
	if cfg.Censor == nil {
		cfg.Censor = &hcl.Censor{}
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
	if set["iterations"] {
		cfg.Bench.Iterations = c.iterations
	}
	if set["chunk-sizes"] {
		cfg.Bench.ChunkSizes = c.chunkSizes
	}
	if set["select"] {
		cfg.Bench.Selects = c.selects
	}
	if set["exclude"] {
		cfg.Bench.Excludes = c.excludes
	}
	if set["timeout"] {
		cfg.Censor.Timeout = c.timeout
	}
	return cfg
}
