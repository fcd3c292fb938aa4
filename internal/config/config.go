// Package config reads the optional CUE deploy configuration and layers
// environment overrides on top of it.
package config

import (
	"fmt"
	"path/filepath"

	"cuelang.org/go/cue"
)

// Deploy is the resolved deploy configuration.
type Deploy struct {
	ConfigVersion   string
	RepoDir         string
	WorkspaceRoot   string
	GuestScriptsDir string
	OutputDir       string
	Vagrant         string
	SkipBuild       bool
	KeepRunning     bool
	// GPGKeyID and ChocolateyKeyPath apply to machines that set none.
	GPGKeyID          string
	ChocolateyKeyPath string
	Notes             Notes
	Machines          []Machine
}

// Notes configures the release-notes renderer.
type Notes struct {
	Inline    string
	TimeoutMs int
}

// Machine is one entry of the machines list.
type Machine struct {
	Kind              string
	Name              string
	Workspace         string
	ArchiveSuffix     string
	Distros           []string
	GPGKeyID          string
	ChocolateyKeyPath string
	Binaries          []string
}

// Default returns the configuration used when no file is given.
func Default() Deploy {
	return Deploy{
		ConfigVersion:   CurrentConfigVersion,
		RepoDir:         ".",
		WorkspaceRoot:   ".",
		GuestScriptsDir: "guest_scripts",
		OutputDir:       ".",
		Vagrant:         "vagrant",
	}
}

// Load reads the CUE file at path over the defaults. An empty path returns
// Default().
func Load(path string) (Deploy, error) {
	d := Default()
	if path == "" {
		return d, nil
	}
	v, err := compileCUE(path)
	if err != nil {
		return Deploy{}, err
	}
	if err := requireStringField(v, "configVersion"); err != nil {
		return Deploy{}, err
	}
	if err := v.LookupPath(cue.ParsePath("configVersion")).Decode(&d.ConfigVersion); err != nil {
		return Deploy{}, fmt.Errorf("invalid value for configVersion: %v", err)
	}
	if !IsSupportedConfigVersion(d.ConfigVersion) {
		return Deploy{}, fmt.Errorf("unsupported configVersion: %q (supported: %s)", d.ConfigVersion, SupportedConfigVersionsCSV())
	}

	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"repoDir", &d.RepoDir},
		{"workspaceRoot", &d.WorkspaceRoot},
		{"guestScriptsDir", &d.GuestScriptsDir},
		{"outputDir", &d.OutputDir},
		{"vagrant", &d.Vagrant},
		{"gpgKeyId", &d.GPGKeyID},
		{"chocolateyKeyPath", &d.ChocolateyKeyPath},
	} {
		if err := optString(v, f.name, f.dst); err != nil {
			return Deploy{}, err
		}
	}
	if err := optBool(v, "skipBuild", &d.SkipBuild); err != nil {
		return Deploy{}, err
	}
	if err := optBool(v, "keepRunning", &d.KeepRunning); err != nil {
		return Deploy{}, err
	}
	if d.Notes, err = parseNotesSection(v); err != nil {
		return Deploy{}, err
	}
	if d.Machines, err = parseMachinesSection(v); err != nil {
		return Deploy{}, err
	}

	// Relative paths in the file are relative to the file.
	base := filepath.Dir(path)
	for _, p := range []*string{&d.RepoDir, &d.WorkspaceRoot, &d.GuestScriptsDir, &d.OutputDir, &d.ChocolateyKeyPath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	for i := range d.Machines {
		if k := d.Machines[i].ChocolateyKeyPath; k != "" && !filepath.IsAbs(k) {
			d.Machines[i].ChocolateyKeyPath = filepath.Join(base, k)
		}
	}
	return d, nil
}

func parseNotesSection(v cue.Value) (Notes, error) {
	var n Notes
	nv := v.LookupPath(cue.ParsePath("notes"))
	if !nv.Exists() {
		return n, nil
	}
	if err := optString(nv, "inline", &n.Inline); err != nil {
		return Notes{}, fmt.Errorf("notes: %w", err)
	}
	if err := optInt(nv, "timeoutMs", &n.TimeoutMs); err != nil {
		return Notes{}, fmt.Errorf("notes: %w", err)
	}
	if n.TimeoutMs < 0 {
		return Notes{}, fmt.Errorf("notes: timeoutMs must be >= 0")
	}
	return n, nil
}

func parseMachinesSection(v cue.Value) ([]Machine, error) {
	mv := v.LookupPath(cue.ParsePath("machines"))
	if !mv.Exists() {
		return nil, nil
	}
	if mv.Kind() != cue.ListKind {
		return nil, fmt.Errorf("invalid type for field: machines (expected list)")
	}
	it, err := mv.List()
	if err != nil {
		return nil, fmt.Errorf("invalid value for machines: %v", err)
	}
	var out []Machine
	for i := 0; it.Next(); i++ {
		m, err := parseMachine(it.Value())
		if err != nil {
			return nil, fmt.Errorf("machines[%d]: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func parseMachine(v cue.Value) (Machine, error) {
	var m Machine
	if err := requireStringField(v, "kind"); err != nil {
		return Machine{}, err
	}
	if err := optString(v, "kind", &m.Kind); err != nil {
		return Machine{}, err
	}
	switch m.Kind {
	case "windows", "ubuntu", "arch":
	default:
		return Machine{}, fmt.Errorf("unknown kind %q (expected windows, ubuntu or arch)", m.Kind)
	}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"name", &m.Name},
		{"workspace", &m.Workspace},
		{"archiveSuffix", &m.ArchiveSuffix},
		{"gpgKeyId", &m.GPGKeyID},
		{"chocolateyKeyPath", &m.ChocolateyKeyPath},
	} {
		if err := optString(v, f.name, f.dst); err != nil {
			return Machine{}, err
		}
	}
	if err := optStrings(v, "distros", &m.Distros); err != nil {
		return Machine{}, err
	}
	if err := optStrings(v, "binaries", &m.Binaries); err != nil {
		return Machine{}, err
	}
	return m, nil
}
