package config

import (
	"fmt"

	"github.com/specialistvlad/binverify/internal/manifest"
)

// ToManifest merges loaded models into one manifest. Artifacts keep their file
// order; the first model that sets a name or size unit wins. An artifact
// without a dir falls back to its own file's `directory` setting.
func ToManifest(models ...*Model) (*manifest.Manifest, error) {
	m := &manifest.Manifest{}
	var unit string

	for _, model := range models {
		if m.Name == "" {
			m.Name = model.Name
		}
		if unit == "" {
			unit = model.SizeUnit
		}
		for _, a := range model.Artifacts {
			entry, err := translateArtifact(model, a)
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, entry)
		}
	}

	su, err := manifest.ParseSizeUnit(unit)
	if err != nil {
		return nil, err
	}
	m.SizeUnit = su
	if m.Name == "" {
		m.Name = "Artifact"
	}
	return m, nil
}

func translateArtifact(model *Model, a *Artifact) (manifest.Entry, error) {
	role, err := manifest.ParseRole(a.Role)
	if err != nil {
		return manifest.Entry{}, fmt.Errorf("%s: artifact %q: %w", position(model, a), a.File, err)
	}
	dir := a.Dir
	if dir == "" {
		dir = model.Directory
	}
	return manifest.Entry{
		Directory: dir,
		Filename:  a.File,
		Role:      role,
		Loader:    a.Loader,
		SHA256:    a.SHA256,
	}, nil
}

func position(model *Model, a *Artifact) string {
	if a.Pos != "" {
		return a.Pos
	}
	return model.Source
}
