package release

import (
	"bytes"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest records what a deploy run did.
type Manifest struct {
	RunID    string          `yaml:"runId"`
	Product  string          `yaml:"product"`
	Version  string          `yaml:"version"`
	Revision string          `yaml:"revision"`
	Tool     string          `yaml:"tool,omitempty"`
	Machines []MachineRecord `yaml:"machines"`
}

// MachineRecord is one VM's entry in the manifest.
type MachineRecord struct {
	Name          string `yaml:"name"`
	Succeeded     bool   `yaml:"succeeded"`
	UploadSkipped bool   `yaml:"uploadSkipped,omitempty"`
	Error         string `yaml:"error,omitempty"`
	Archive       string `yaml:"archive,omitempty"`
	Repository    string `yaml:"repository,omitempty"`
}

// MarshalManifest returns YAML with two-space indent and one trailing newline.
func MarshalManifest(m Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	out = append(out, '\n')
	return out, nil
}

// WriteManifest writes m to path, creating parent directories.
func WriteManifest(path string, m Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := MarshalManifest(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
