package vm

import "strings"

// Kind names a build-target platform family.
type Kind string

const (
	KindWindows Kind = "windows"
	KindUbuntu  Kind = "ubuntu"
	KindArch    Kind = "arch"
)

// StepKind selects how a Step is carried out.
type StepKind int

const (
	// StepHost runs Line on the host.
	StepHost StepKind = iota
	// StepGuest runs Line inside the VM through the manager's remote shell.
	StepGuest
	// StepCopy copies the host file From into the workspace as To.
	StepCopy
)

// Step is one templated action. Placeholders: {vagrant} {vm} {rev}
// {version} {workspace} {distros} {keyId} {product}.
type Step struct {
	Kind StepKind
	Line string
	From string
	To   string
}

// Profile is the per-platform data a Machine runs on. Two profiles of the
// same Kind differ only in values, never in behaviour.
type Profile struct {
	Kind          Kind
	Name          string
	Workspace     string
	ArchiveSuffix string
	Product       string
	// Staged entries are copied from the guest scripts dir into Workspace.
	Staged []string
	// Remote wraps a guest script into a manager command line. {script} is
	// replaced by the rendered script text.
	Remote  string
	Compile string
	// Upload is empty for variants that cannot publish.
	Upload []Step
	// Scrub lists workspace files removed after Upload, even on failure.
	Scrub []string
	// Binaries are workspace-relative artifact paths; empty means no asset.
	Binaries []string
	Distros  string
	KeyID    string
	// Repository names where Upload publishes, for release notes.
	Repository string
}

const (
	linuxRemote   = `{vagrant} ssh {vm} --command "cd ~/workspace; {script}"`
	windowsRemote = `{vagrant} winrm {vm} --shell powershell --command "cd //VBOXSVR/workspace; {script}"`

	defaultProduct = "cmag"
)

// WindowsOptions parameterizes the Windows profile.
type WindowsOptions struct {
	Name              string
	Workspace         string
	ArchiveSuffix     string
	ChocolateyKeyPath string
	Binaries          []string
}

// Windows builds with PowerShell over WinRM and publishes to the
// Chocolatey feed. Without a key path it has no publishing step.
func Windows(o WindowsOptions) Profile {
	p := Profile{
		Kind:          KindWindows,
		Name:          orDefault(o.Name, "windows10"),
		Workspace:     orDefault(o.Workspace, "workspace_windows10"),
		ArchiveSuffix: orDefault(o.ArchiveSuffix, "win64"),
		Product:       defaultProduct,
		Staged:        []string{"windows_build.ps1", "windows_provision.ps1", "windows_package.ps1"},
		Remote:        windowsRemote,
		Compile:       "./windows_build.ps1 {rev} {version}",
		Binaries:      orDefaultList(o.Binaries, []string{"cmag.exe", "cmag_browser.exe"}),
		Repository:    "Chocolatey community feed",
	}
	if o.ChocolateyKeyPath != "" {
		p.Upload = []Step{
			{Kind: StepCopy, From: o.ChocolateyKeyPath, To: "choco.key"},
			{Kind: StepGuest, Line: "./windows_package.ps1 {version}"},
		}
		p.Scrub = []string{"choco.key"}
	}
	return p
}

// UbuntuOptions parameterizes the Ubuntu profile.
type UbuntuOptions struct {
	Name          string
	Workspace     string
	ArchiveSuffix string
	GPGKeyID      string
	Distros       []string
	Binaries      []string
}

// Ubuntu builds over SSH and publishes signed source packages. The signing
// key is exported on the host and imported in the VM before packaging.
func Ubuntu(o UbuntuOptions) Profile {
	p := Profile{
		Kind:          KindUbuntu,
		Name:          orDefault(o.Name, "ubuntu2204"),
		Workspace:     orDefault(o.Workspace, "workspace_ubuntu2204"),
		ArchiveSuffix: orDefault(o.ArchiveSuffix, "ubuntu2204"),
		Product:       defaultProduct,
		Staged: []string{
			"ubuntu2204_provision.sh",
			"ubuntu2204_build.sh",
			"ubuntu_package.sh",
			"ubuntu_prepare_source_tarball.sh",
			"debian",
		},
		Remote:     linuxRemote,
		Compile:    "./ubuntu2204_build.sh {rev} {version}",
		Binaries:   orDefaultList(o.Binaries, []string{"cmag", "cmag_browser"}),
		Distros:    strings.Join(orDefaultList(o.Distros, []string{"focal", "jammy"}), " "),
		KeyID:      o.GPGKeyID,
		Repository: "Launchpad PPA",
	}
	if o.GPGKeyID != "" {
		p.Upload = []Step{
			{Kind: StepHost, Line: "gpg --batch --yes --output '{workspace}/key.gpg' --export-secret-key --armor '{keyId}'"},
			{Kind: StepGuest, Line: "gpg --import ~/workspace/key.gpg"},
			{Kind: StepGuest, Line: "./ubuntu_package.sh {version} '{distros}'"},
		}
		p.Scrub = []string{"key.gpg"}
	}
	return p
}

// ArchOptions parameterizes the Arch Linux profile.
type ArchOptions struct {
	Name      string
	Workspace string
}

// Arch builds and packages from a PKGBUILD. Its packages only go to the
// repository, so it has no release asset.
func Arch(o ArchOptions) Profile {
	return Profile{
		Kind:          KindArch,
		Name:          orDefault(o.Name, "archlinux"),
		Workspace:     orDefault(o.Workspace, "workspace_archlinux"),
		ArchiveSuffix: "archlinux",
		Product:       defaultProduct,
		Staged:        []string{"arch_provision.sh", "arch_build.sh", "arch_package.sh", "PKGBUILD"},
		Remote:        linuxRemote,
		Compile:       "./arch_build.sh {rev} {version}",
		Upload:        []Step{{Kind: StepGuest, Line: "./arch_package.sh {version}"}},
		Repository:    "Arch User Repository",
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultList(v, def []string) []string {
	if len(v) == 0 {
		return append([]string(nil), def...)
	}
	return append([]string(nil), v...)
}
