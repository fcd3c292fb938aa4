// Package vm drives one Vagrant-managed build VM through its release
// lifecycle: start, compile, upload, stop.
package vm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flarebyte/vmrelease/internal/command"
)

// ErrNotSupported is returned by UploadRelease for variants without a
// publishing step. It is not a failure.
var ErrNotSupported = errors.New("upload not supported")

// Executor runs one command invocation to completion.
type Executor interface {
	Run(ctx context.Context, inv command.Invocation) (command.Result, error)
}

// Asset is a named archive and the absolute artifact paths it should hold.
type Asset struct {
	Name  string   `json:"name"`
	Files []string `json:"files"`
}

// Options are shared by every Machine of a deploy run.
type Options struct {
	// Vagrant is the VM manager binary. Defaults to "vagrant".
	Vagrant string
	// ScriptsDir holds the guest scripts staged into workspaces.
	ScriptsDir string
}

// Machine is a handle on one build VM.
type Machine struct {
	profile Profile
	opts    Options
	exec    Executor
	staged  bool
}

// New returns a Machine for p. Relative workspace paths are resolved
// against the current directory so artifact paths are absolute.
func New(p Profile, exec Executor, opts Options) (*Machine, error) {
	if opts.Vagrant == "" {
		opts.Vagrant = "vagrant"
	}
	if opts.ScriptsDir == "" {
		opts.ScriptsDir = "guest_scripts"
	}
	ws, err := filepath.Abs(p.Workspace)
	if err != nil {
		return nil, fmt.Errorf("workspace %s: %w", p.Workspace, err)
	}
	p.Workspace = ws
	if p.Product == "" {
		p.Product = defaultProduct
	}
	return &Machine{profile: p, opts: opts, exec: exec}, nil
}

// Name returns the VM manager's machine name.
func (m *Machine) Name() string { return m.profile.Name }

// Kind returns the platform family.
func (m *Machine) Kind() Kind { return m.profile.Kind }

// Repository names where UploadRelease publishes.
func (m *Machine) Repository() string { return m.profile.Repository }

// Workspace returns the absolute host workspace directory.
func (m *Machine) Workspace() string { return m.profile.Workspace }

// Start brings the VM up.
func (m *Machine) Start(ctx context.Context) error {
	return m.run(ctx, m.render(m.startLine(), "", ""))
}

// Stop halts the VM.
func (m *Machine) Stop(ctx context.Context) error {
	return m.run(ctx, m.render(m.stopLine(), "", ""))
}

// Compile stages the build scripts and runs the platform build script in
// the VM with revision and version as positional arguments.
func (m *Machine) Compile(ctx context.Context, revision, version string) error {
	if err := m.stage(); err != nil {
		return err
	}
	return m.run(ctx, m.render(m.remote(m.profile.Compile), revision, version))
}

// UploadRelease runs the packaging and publishing steps.
func (m *Machine) UploadRelease(ctx context.Context, version string) error {
	if len(m.profile.Upload) == 0 {
		return ErrNotSupported
	}
	if err := m.stage(); err != nil {
		return err
	}
	defer m.scrub()
	for _, st := range m.profile.Upload {
		if err := m.step(ctx, st, version); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseAsset reports the archive built from this VM's artifacts.
func (m *Machine) ReleaseAsset(version string) (Asset, bool) {
	if len(m.profile.Binaries) == 0 {
		return Asset{}, false
	}
	files := make([]string, 0, len(m.profile.Binaries))
	for _, b := range m.profile.Binaries {
		files = append(files, filepath.Join(m.profile.Workspace, filepath.FromSlash(b)))
	}
	name := fmt.Sprintf("%s-%s-%s.zip", m.profile.Product, version, m.profile.ArchiveSuffix)
	return Asset{Name: name, Files: files}, true
}

func (m *Machine) step(ctx context.Context, st Step, version string) error {
	switch st.Kind {
	case StepCopy:
		return copyFile(st.From, filepath.Join(m.profile.Workspace, st.To))
	case StepGuest:
		return m.run(ctx, m.render(m.remote(st.Line), "", version))
	default:
		return m.run(ctx, m.render(st.Line, "", version))
	}
}

// run keeps the terminal as stdin so vagrant, gpg and guest scripts can
// prompt.
func (m *Machine) run(ctx context.Context, line string) error {
	_, err := m.exec.Run(ctx, command.Invocation{Line: line, Stdin: command.InheritInput()})
	return err
}

func (m *Machine) startLine() string { return "{vagrant} up {vm}" }

func (m *Machine) stopLine() string { return "{vagrant} halt {vm}" }

// remote wraps a guest script into the profile's remote-shell template.
func (m *Machine) remote(script string) string {
	return strings.ReplaceAll(m.profile.Remote, "{script}", script)
}

func (m *Machine) render(tmpl, revision, version string) string {
	r := strings.NewReplacer(
		"{vagrant}", m.opts.Vagrant,
		"{vm}", m.profile.Name,
		"{rev}", revision,
		"{version}", version,
		"{workspace}", filepath.ToSlash(m.profile.Workspace),
		"{distros}", m.profile.Distros,
		"{keyId}", m.profile.KeyID,
		"{product}", m.profile.Product,
	)
	return r.Replace(tmpl)
}

func (m *Machine) stage() error {
	if m.staged {
		return nil
	}
	if err := os.MkdirAll(m.profile.Workspace, 0o755); err != nil {
		return fmt.Errorf("workspace %s: %w", m.profile.Workspace, err)
	}
	for _, name := range m.profile.Staged {
		src := filepath.Join(m.opts.ScriptsDir, name)
		dst := filepath.Join(m.profile.Workspace, name)
		if err := copyTree(src, dst); err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
	}
	m.staged = true
	return nil
}

func (m *Machine) scrub() {
	for _, name := range m.profile.Scrub {
		_ = os.Remove(filepath.Join(m.profile.Workspace, name))
	}
}
