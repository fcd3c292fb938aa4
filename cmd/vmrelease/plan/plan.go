package plan

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/flarebyte/vmrelease/internal/config"
	"github.com/flarebyte/vmrelease/internal/gitref"
	"github.com/flarebyte/vmrelease/internal/vm"
)

type flags struct {
	config     string
	repo       string
	revision   string
	vagrant    string
	scriptsDir string
}

// NewCmd creates `vmrelease plan <version>`, which prints the commands each
// VM would run as JSON without running any of them.
func NewCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "plan <version>",
		Short:         "Print the per-VM command plan for <version>",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var o config.Overrides
			if cmd.Flags().Changed("repo") {
				o.RepoDir = &f.repo
			}
			if cmd.Flags().Changed("vagrant") {
				o.Vagrant = &f.vagrant
			}
			if cmd.Flags().Changed("scripts-dir") {
				o.GuestScriptsDir = &f.scriptsDir
			}
			return run(cmd.OutOrStdout(), f, o, args[0])
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "Path to deploy config (.cue)")
	fl.StringVar(&f.repo, "repo", "", "Repository holding the version tags")
	fl.StringVar(&f.revision, "revision", "", "Use this revision instead of resolving the version tag")
	fl.StringVar(&f.vagrant, "vagrant", "", "VM manager binary")
	fl.StringVar(&f.scriptsDir, "scripts-dir", "", "Directory holding the guest scripts")
	return cmd
}

func run(w io.Writer, f flags, o config.Overrides, version string) error {
	if err := gitref.ValidateVersion(version); err != nil {
		return err
	}
	d, err := config.Resolve(f.config)
	if err != nil {
		return err
	}
	d.ApplyOverrides(o)

	revision := f.revision
	if revision == "" {
		revision, err = gitref.ResolveTag(d.RepoDir, version)
		if err != nil {
			return err
		}
	}
	profiles, err := d.Profiles()
	if err != nil {
		return err
	}
	plans := make([]vm.Plan, 0, len(profiles))
	for _, p := range profiles {
		// Plan never executes, so no executor is needed.
		m, err := vm.New(p, nil, vm.Options{Vagrant: d.Vagrant, ScriptsDir: d.GuestScriptsDir})
		if err != nil {
			return err
		}
		plans = append(plans, m.Plan(revision, version))
	}
	return encodeJSON(w, map[string]any{
		"version":  version,
		"revision": revision,
		"machines": plans,
	})
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
