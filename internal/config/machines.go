package config

import (
	"fmt"
	"path/filepath"

	"github.com/flarebyte/vmrelease/internal/vm"
)

// DefaultMachines is the fixed build list used when the file lists none.
var DefaultMachines = []Machine{
	{Kind: "windows"},
	{Kind: "ubuntu"},
	{Kind: "arch"},
}

// Profiles builds one vm.Profile per configured machine, in order.
// Workspaces are placed under WorkspaceRoot unless absolute.
func (d Deploy) Profiles() ([]vm.Profile, error) {
	machines := d.Machines
	if len(machines) == 0 {
		machines = DefaultMachines
	}
	seen := make(map[string]bool, len(machines))
	out := make([]vm.Profile, 0, len(machines))
	for i, m := range machines {
		p, err := d.profile(m)
		if err != nil {
			return nil, fmt.Errorf("machines[%d]: %w", i, err)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("machines[%d]: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = true
		if !filepath.IsAbs(p.Workspace) {
			p.Workspace = filepath.Join(d.WorkspaceRoot, p.Workspace)
		}
		out = append(out, p)
	}
	return out, nil
}

func (d Deploy) profile(m Machine) (vm.Profile, error) {
	switch vm.Kind(m.Kind) {
	case vm.KindWindows:
		return vm.Windows(vm.WindowsOptions{
			Name:              m.Name,
			Workspace:         m.Workspace,
			ArchiveSuffix:     m.ArchiveSuffix,
			ChocolateyKeyPath: firstNonEmpty(m.ChocolateyKeyPath, d.ChocolateyKeyPath),
			Binaries:          m.Binaries,
		}), nil
	case vm.KindUbuntu:
		return vm.Ubuntu(vm.UbuntuOptions{
			Name:          m.Name,
			Workspace:     m.Workspace,
			ArchiveSuffix: m.ArchiveSuffix,
			GPGKeyID:      firstNonEmpty(m.GPGKeyID, d.GPGKeyID),
			Distros:       m.Distros,
			Binaries:      m.Binaries,
		}), nil
	case vm.KindArch:
		return vm.Arch(vm.ArchOptions{Name: m.Name, Workspace: m.Workspace}), nil
	}
	return vm.Profile{}, fmt.Errorf("unknown kind %q", m.Kind)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
