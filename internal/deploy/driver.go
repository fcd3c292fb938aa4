// Package deploy runs each build VM through its release lifecycle in order
// and collects one outcome per VM.
package deploy

import (
	"context"
	"errors"

	"github.com/flarebyte/vmrelease/internal/logging"
	"github.com/flarebyte/vmrelease/internal/vm"
)

// Handle is one build target as seen by the driver.
type Handle interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Compile(ctx context.Context, revision, version string) error
	UploadRelease(ctx context.Context, version string) error
	ReleaseAsset(version string) (vm.Asset, bool)
}

// Options toggle lifecycle phases.
type Options struct {
	// SkipBuild skips Compile; packaging runs against the previous build.
	SkipBuild bool
	// KeepRunning skips Start and Stop; the VMs are expected to be up.
	KeepRunning bool
}

// Outcome is the result of one VM's lifecycle.
type Outcome struct {
	Name          string
	Succeeded     bool
	UploadSkipped bool
	Err           error
}

// Driver sequences VMs one at a time.
type Driver struct {
	Log  *logging.Logger
	Opts Options
}

// Run processes handles in order. A failing VM is logged and the driver
// moves on; the returned slice has one outcome per handle, in order.
func (d *Driver) Run(ctx context.Context, handles []Handle, revision, version string) []Outcome {
	outcomes := make([]Outcome, 0, len(handles))
	for _, h := range handles {
		outcomes = append(outcomes, d.process(ctx, h, revision, version))
	}
	return outcomes
}

func (d *Driver) process(ctx context.Context, h Handle, revision, version string) Outcome {
	out := Outcome{Name: h.Name()}
	if err := ctx.Err(); err != nil {
		out.Err = err
		d.Log.Printf("skipped %s: %v", out.Name, err)
		return out
	}

	started := false
	fail := func(err error) Outcome {
		out.Err = err
		d.Log.Printf("failed in %s: %v", out.Name, err)
		if started {
			// Halt so the next VM never overlaps this one.
			if stopErr := h.Stop(context.WithoutCancel(ctx)); stopErr != nil {
				d.Log.Printf("halt after failure in %s: %v", out.Name, stopErr)
			}
		}
		return out
	}

	if !d.Opts.KeepRunning {
		d.Log.Printf("starting VM %s", out.Name)
		started = true
		if err := h.Start(ctx); err != nil {
			return fail(err)
		}
	}

	if !d.Opts.SkipBuild {
		d.Log.Printf("building in VM %s", out.Name)
		if err := h.Compile(ctx, revision, version); err != nil {
			return fail(err)
		}
	}

	d.Log.Printf("packaging and deploying in VM %s", out.Name)
	if err := h.UploadRelease(ctx, version); err != nil {
		if !errors.Is(err, vm.ErrNotSupported) {
			return fail(err)
		}
		out.UploadSkipped = true
		d.Log.Printf("upload not supported for %s, skipping", out.Name)
	}

	if !d.Opts.KeepRunning {
		d.Log.Printf("stopping VM %s", out.Name)
		started = false
		if err := h.Stop(ctx); err != nil {
			return fail(err)
		}
	}

	out.Succeeded = true
	return out
}

// Succeeded returns the success flags in handle order.
func Succeeded(outcomes []Outcome) []bool {
	flags := make([]bool, len(outcomes))
	for i, o := range outcomes {
		flags[i] = o.Succeeded
	}
	return flags
}
