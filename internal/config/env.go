package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the environment overrides. Unset variables leave the
// configuration untouched.
type Env struct {
	Vagrant           string `env:"VMRELEASE_VAGRANT"`
	GPGKeyID          string `env:"VMRELEASE_GPG_KEY_ID"`
	ChocolateyKeyPath string `env:"VMRELEASE_CHOCOLATEY_KEY_PATH"`
	OutputDir         string `env:"VMRELEASE_OUTPUT_DIR"`
}

// ReadEnv parses the process environment.
func ReadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("environment: %w", err)
	}
	return e, nil
}

// ApplyEnv overlays the set values of e onto d.
func (d *Deploy) ApplyEnv(e Env) {
	if e.Vagrant != "" {
		d.Vagrant = e.Vagrant
	}
	if e.GPGKeyID != "" {
		d.GPGKeyID = e.GPGKeyID
	}
	if e.ChocolateyKeyPath != "" {
		d.ChocolateyKeyPath = e.ChocolateyKeyPath
	}
	if e.OutputDir != "" {
		d.OutputDir = e.OutputDir
	}
}

// Resolve loads path (empty for defaults) and applies the process
// environment on top.
func Resolve(path string) (Deploy, error) {
	d, err := Load(path)
	if err != nil {
		return Deploy{}, err
	}
	e, err := ReadEnv()
	if err != nil {
		return Deploy{}, err
	}
	d.ApplyEnv(e)
	return d, nil
}

// Overrides are command-line values; nil fields were not given.
type Overrides struct {
	RepoDir         *string
	OutputDir       *string
	Vagrant         *string
	GuestScriptsDir *string
	WorkspaceRoot   *string
	SkipBuild       *bool
	KeepRunning     *bool
}

// ApplyOverrides sets every non-nil field of o on d.
func (d *Deploy) ApplyOverrides(o Overrides) {
	for _, f := range []struct {
		dst *string
		src *string
	}{
		{&d.RepoDir, o.RepoDir},
		{&d.OutputDir, o.OutputDir},
		{&d.Vagrant, o.Vagrant},
		{&d.GuestScriptsDir, o.GuestScriptsDir},
		{&d.WorkspaceRoot, o.WorkspaceRoot},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	if o.SkipBuild != nil {
		d.SkipBuild = *o.SkipBuild
	}
	if o.KeepRunning != nil {
		d.KeepRunning = *o.KeepRunning
	}
}
