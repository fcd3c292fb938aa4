package deploy

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/flarebyte/vmrelease/internal/logging"
	"github.com/flarebyte/vmrelease/internal/notes"
	"github.com/flarebyte/vmrelease/internal/release"
)

// NotesFile is the release-notes file name inside the output directory.
const NotesFile = "release_notes.txt"

// Publisher turns driver outcomes into the run's persisted outputs.
type Publisher struct {
	Log       *logging.Logger
	OutputDir string
	Product   string
	// NotesScript is an optional Lua notes script; empty uses the default.
	NotesScript string
	Sandbox     notes.Sandbox
	// Tool is recorded in the manifest as the producing tool's version.
	Tool string
	// NewRunID overrides uuid generation.
	NewRunID func() string
}

// Report is what Publish produced.
type Report struct {
	RunID        string
	Archives     []string
	NotesPath    string
	ManifestPath string
	Rows         []release.Row
}

type repositoryNamer interface {
	Repository() string
}

// Publish archives the asset of every succeeded VM that reports one, prints the summary to w and
// writes the notes and manifest. Archive failures are logged and noted in
// the summary; notes and manifest failures are returned.
func (p *Publisher) Publish(ctx context.Context, w io.Writer, handles []Handle, outcomes []Outcome, revision, version string) (Report, error) {
	rep := Report{RunID: p.runID()}
	manifest := release.Manifest{
		RunID:    rep.RunID,
		Product:  p.Product,
		Version:  version,
		Revision: revision,
		Tool:     p.Tool,
	}
	data := release.NotesData{Product: p.Product, Version: version, Revision: revision}

	for i, o := range outcomes {
		rec := release.MachineRecord{Name: o.Name, Succeeded: o.Succeeded, UploadSkipped: o.UploadSkipped}
		row := release.Row{Name: o.Name, Succeeded: o.Succeeded}
		// A failed VM's workspace may hold binaries from an earlier build.
		if o.Succeeded && i < len(handles) {
			row.Note = p.archive(handles[i], version, &rec, &data)
		}
		switch {
		case !o.Succeeded:
			if o.Err != nil {
				rec.Error = o.Err.Error()
				row.Note = joinNote(o.Err.Error(), row.Note)
			}
		case o.UploadSkipped:
			row.Note = joinNote(row.Note, "upload skipped")
		case i < len(handles):
			if rn, ok := handles[i].(repositoryNamer); ok && rn.Repository() != "" {
				rec.Repository = rn.Repository()
				data.Repositories = append(data.Repositories, rec.Repository)
			}
		}
		manifest.Machines = append(manifest.Machines, rec)
		rep.Rows = append(rep.Rows, row)
	}
	rep.Archives = data.Archives

	if err := release.RenderSummary(w, rep.Rows); err != nil {
		return rep, fmt.Errorf("summary: %w", err)
	}

	rep.NotesPath = filepath.Join(p.OutputDir, NotesFile)
	if err := release.WriteNotes(ctx, rep.NotesPath, data, p.NotesScript, p.Sandbox); err != nil {
		return rep, fmt.Errorf("release notes: %w", err)
	}

	rep.ManifestPath = filepath.Join(p.OutputDir, "release-"+version+".yaml")
	if err := release.WriteManifest(rep.ManifestPath, manifest); err != nil {
		return rep, fmt.Errorf("manifest: %w", err)
	}
	return rep, nil
}

func (p *Publisher) archive(h Handle, version string, rec *release.MachineRecord, data *release.NotesData) string {
	asset, ok := h.ReleaseAsset(version)
	if !ok {
		return ""
	}
	path, err := release.WriteArchive(p.OutputDir, asset.Name, asset.Files)
	if err != nil {
		p.Log.Printf("%v", err)
		return "archive failed"
	}
	rec.Archive = filepath.Base(path)
	data.Archives = append(data.Archives, rec.Archive)
	return rec.Archive
}

func (p *Publisher) runID() string {
	if p.NewRunID != nil {
		return p.NewRunID()
	}
	return uuid.NewString()
}

func joinNote(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + ", " + b
}
