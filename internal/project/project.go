package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/PaneCut/internal/model"
)

// FileVersion is the project file format written by SaveProject.
const FileVersion = 1

// projectFile is the on-disk envelope around a project.
type projectFile struct {
	Version int           `json:"version"`
	Project model.Project `json:"project"`
}

// SaveProject writes the project to path as JSON, creating parent directories.
func SaveProject(path string, p model.Project) error {
	if err := writeJSON(path, projectFile{Version: FileVersion, Project: p}); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// LoadProject reads a project saved by SaveProject. Files without a version
// or from a newer format are rejected.
func LoadProject(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to read project: %w", err)
	}

	var pf projectFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return model.Project{}, fmt.Errorf("failed to parse project: %w", err)
	}
	switch {
	case pf.Version == 0:
		return model.Project{}, fmt.Errorf("invalid project file: missing version field")
	case pf.Version > FileVersion:
		return model.Project{}, fmt.Errorf("project file version %d is newer than supported version %d", pf.Version, FileVersion)
	}

	p := pf.Project
	if p.Stocks == nil {
		p.Stocks = []model.StockSize{}
	}
	if p.Parts == nil {
		p.Parts = []model.PartRequest{}
	}
	return p, nil
}
