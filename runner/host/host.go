// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package host records the machine a bench runs on, since allocation and timing results are only comparable between
// runs on similar hosts.
package host

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/go-ps"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/hashicorp/censoredpi/op"
	"github.com/hashicorp/censoredpi/redact"
	"github.com/hashicorp/censoredpi/runner"
)

// InfoStat includes general information about the Host and the Go runtime. It serves as the basis for the results
// produced by the Info runner.
type InfoStat struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platformVersion"`
	KernelVersion   string `json:"kernelVersion"`
	KernelArch      string `json:"kernelArch"`
	HostID          string `json:"hostId"`

	MemoryTotal     uint64 `json:"memoryTotal"`
	MemoryAvailable uint64 `json:"memoryAvailable"`

	GoVersion  string `json:"goVersion"`
	NumCPU     int    `json:"numCPU"`
	GOMAXPROCS int    `json:"gomaxprocs"`

	Process Proc `json:"process"`
}

// Proc represents the process that ran the bench.
type Proc struct {
	Name string `json:"name"`
	PID  int    `json:"pid"`
	PPID int    `json:"ppid"`
}

var _ runner.Runner = Info{}

type Info struct {
	Redactions []*redact.Redact `json:"redactions"`
	log        hclog.Logger
}

func NewInfo(redactions []*redact.Redact, l hclog.Logger) *Info {
	if l == nil {
		l = hclog.L()
	}
	return &Info{
		Redactions: redactions,
		log:        l,
	}
}

func (i Info) ID() string {
	return "host"
}

// Run gathers what it can. Any piece that cannot be read fails the op, but the pieces that were read are still
// returned.
func (i Info) Run() op.Op {
	startTime := time.Now()

	var errs *multierror.Error
	hi, err := host.Info()
	if err != nil {
		i.log.Trace("runner/host.Info.Run()", "error", err)
		errs = multierror.Append(errs, fmt.Errorf("unable to read host info, err=%w", err))
		hi = &host.InfoStat{}
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		i.log.Trace("runner/host.Info.Run()", "error", err)
		errs = multierror.Append(errs, fmt.Errorf("unable to read memory info, err=%w", err))
		vm = &mem.VirtualMemoryStat{}
	}
	var proc Proc
	p, err := ps.FindProcess(os.Getpid())
	switch {
	case err != nil:
		errs = multierror.Append(errs, fmt.Errorf("unable to read process info, err=%w", err))
	case p != nil:
		proc = Proc{Name: p.Executable(), PID: p.Pid(), PPID: p.PPid()}
	}

	info, err := i.infoStat(hi, vm, proc)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("error converting host information err=%w", err))
	}
	result := map[string]any{"hostInfo": info}

	if err := errs.ErrorOrNil(); err != nil {
		return op.New(i.ID(), result, op.Fail, err, runner.Params(i), startTime, time.Now())
	}
	return op.New(i.ID(), result, op.Success, nil, runner.Params(i), startTime, time.Now())
}

func (i Info) infoStat(hi *host.InfoStat, vm *mem.VirtualMemoryStat, proc Proc) (InfoStat, error) {
	// start from the non-string values, which won't need redaction
	is := InfoStat{
		MemoryTotal:     vm.Total,
		MemoryAvailable: vm.Available,
		GoVersion:       runtime.Version(),
		NumCPU:          runtime.NumCPU(),
		GOMAXPROCS:      runtime.GOMAXPROCS(0),
		Process:         Proc{PID: proc.PID, PPID: proc.PPID},
	}

	fields := []struct {
		in  string
		out *string
	}{
		{hi.Hostname, &is.Hostname},
		{hi.OS, &is.OS},
		{hi.Platform, &is.Platform},
		{hi.PlatformVersion, &is.PlatformVersion},
		{hi.KernelVersion, &is.KernelVersion},
		{hi.KernelArch, &is.KernelArch},
		{hi.HostID, &is.HostID},
		{proc.Name, &is.Process.Name},
	}
	for _, f := range fields {
		redacted, err := redact.String(f.in, i.Redactions)
		if err != nil {
			return InfoStat{}, err
		}
		*f.out = redacted
	}
	return is, nil
}
