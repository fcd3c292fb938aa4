package deploy

import (
	"context"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/flarebyte/vmrelease/internal/buildinfo"
	"github.com/flarebyte/vmrelease/internal/command"
	"github.com/flarebyte/vmrelease/internal/config"
	drv "github.com/flarebyte/vmrelease/internal/deploy"
	"github.com/flarebyte/vmrelease/internal/gitref"
	"github.com/flarebyte/vmrelease/internal/logging"
	"github.com/flarebyte/vmrelease/internal/notes"
	"github.com/flarebyte/vmrelease/internal/platform"
	"github.com/flarebyte/vmrelease/internal/vm"
)

// Product is the released product name used in archive names and notes.
const Product = "cmag"

type flags struct {
	config        string
	repo          string
	outputDir     string
	logFile       string
	vagrant       string
	scriptsDir    string
	workspaceRoot string
	skipBuild     bool
	keepRunning   bool
}

// runDeps are the parts of a run tests replace.
type runDeps struct {
	detector *platform.Detector
	stdout   io.Writer
	stderr   io.Writer
}

// NewCmd creates `vmrelease deploy <version>`.
func NewCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "deploy <version>",
		Short:         "Build, package and publish <version> on every build VM",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				_ = cmd.Usage()
				return usageError("expected exactly one argument: the version label")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, cmd, f, args[0], runDeps{
				detector: platform.NewDetector(),
				stdout:   cmd.OutOrStdout(),
				stderr:   cmd.ErrOrStderr(),
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "Path to deploy config (.cue)")
	fl.StringVar(&f.repo, "repo", "", "Repository holding the version tags")
	fl.StringVar(&f.outputDir, "output-dir", "", "Directory for archives, notes and manifest")
	fl.StringVar(&f.logFile, "log-file", "", "Also append progress lines to this file")
	fl.StringVar(&f.vagrant, "vagrant", "", "VM manager binary")
	fl.StringVar(&f.scriptsDir, "scripts-dir", "", "Directory holding the guest scripts")
	fl.StringVar(&f.workspaceRoot, "workspace-root", "", "Directory holding the VM workspaces")
	fl.BoolVar(&f.skipBuild, "skip-build", false, "Skip compiling; package the previous build")
	fl.BoolVar(&f.keepRunning, "keep-running", false, "Do not start or stop the VMs")
	return cmd
}

// settings merges flags over the environment and config file.
func settings(cmd *cobra.Command, f flags) (config.Deploy, error) {
	d, err := config.Resolve(f.config)
	if err != nil {
		return config.Deploy{}, err
	}
	changed := cmd.Flags().Changed
	var o config.Overrides
	if changed("repo") {
		o.RepoDir = &f.repo
	}
	if changed("output-dir") {
		o.OutputDir = &f.outputDir
	}
	if changed("vagrant") {
		o.Vagrant = &f.vagrant
	}
	if changed("scripts-dir") {
		o.GuestScriptsDir = &f.scriptsDir
	}
	if changed("workspace-root") {
		o.WorkspaceRoot = &f.workspaceRoot
	}
	if changed("skip-build") {
		o.SkipBuild = &f.skipBuild
	}
	if changed("keep-running") {
		o.KeepRunning = &f.keepRunning
	}
	d.ApplyOverrides(o)
	return d, nil
}

func run(ctx context.Context, cmd *cobra.Command, f flags, version string, deps runDeps) error {
	if err := gitref.ValidateVersion(version); err != nil {
		return fatal(err)
	}
	d, err := settings(cmd, f)
	if err != nil {
		return fatal(err)
	}
	host, err := deps.detector.Current()
	if err != nil {
		return fatal(err)
	}
	revision, err := gitref.ResolveTag(d.RepoDir, version)
	if err != nil {
		return fatal(err)
	}
	profiles, err := d.Profiles()
	if err != nil {
		return fatal(err)
	}

	log, err := logging.Open(deps.stderr, f.logFile)
	if err != nil {
		return fatal(err)
	}
	defer func() { _ = log.Close() }()

	runner := command.NewRunner(host)
	runner.ConsoleOut = deps.stdout
	runner.ConsoleErr = deps.stderr
	handles := make([]drv.Handle, 0, len(profiles))
	for _, p := range profiles {
		m, err := vm.New(p, runner, vm.Options{Vagrant: d.Vagrant, ScriptsDir: d.GuestScriptsDir})
		if err != nil {
			return fatal(err)
		}
		handles = append(handles, m)
	}

	runID := uuid.NewString()
	log.Printf("run %s: releasing %s %s at %s on %s", runID, Product, version, shortRev(revision), host)

	driver := &drv.Driver{Log: log, Opts: drv.Options{SkipBuild: d.SkipBuild, KeepRunning: d.KeepRunning}}
	outcomes := driver.Run(ctx, handles, revision, version)

	pub := &drv.Publisher{
		Log:         log,
		OutputDir:   d.OutputDir,
		Product:     Product,
		NotesScript: d.Notes.Inline,
		Sandbox:     notes.Sandbox{Timeout: time.Duration(d.Notes.TimeoutMs) * time.Millisecond},
		NewRunID:    func() string { return runID },
		Tool:        "vmrelease " + buildinfo.Label(),
	}
	rep, err := pub.Publish(ctx, deps.stdout, handles, outcomes, revision, version)
	if err != nil {
		return fatal(err)
	}
	log.Printf("wrote %s and %s", rep.NotesPath, rep.ManifestPath)
	return nil
}

func shortRev(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
