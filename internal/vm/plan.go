package vm

import "path/filepath"

// Plan is the rendered set of actions a Machine would take.
type Plan struct {
	Name      string   `json:"name"`
	Kind      Kind     `json:"kind"`
	Workspace string   `json:"workspace"`
	Staged    []string `json:"staged"`
	Start     string   `json:"start"`
	Compile   string   `json:"compile"`
	Upload    []string `json:"upload,omitempty"`
	Stop      string   `json:"stop"`
	Asset     *Asset   `json:"asset,omitempty"`
}

// Plan renders every lifecycle command without running anything.
func (m *Machine) Plan(revision, version string) Plan {
	p := Plan{
		Name:      m.profile.Name,
		Kind:      m.profile.Kind,
		Workspace: m.profile.Workspace,
		Staged:    append([]string{}, m.profile.Staged...),
		Start:     m.render(m.startLine(), revision, version),
		Compile:   m.render(m.remote(m.profile.Compile), revision, version),
		Stop:      m.render(m.stopLine(), revision, version),
	}
	for _, st := range m.profile.Upload {
		switch st.Kind {
		case StepCopy:
			p.Upload = append(p.Upload, "copy "+st.From+" "+filepath.Join(m.profile.Workspace, st.To))
		case StepGuest:
			p.Upload = append(p.Upload, m.render(m.remote(st.Line), revision, version))
		default:
			p.Upload = append(p.Upload, m.render(st.Line, revision, version))
		}
	}
	if a, ok := m.ReleaseAsset(version); ok {
		p.Asset = &a
	}
	return p
}
