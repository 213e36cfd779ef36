package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileNames returns the report and run sheet names for project.
func FileNames(project string) (jsonName, docxName string) {
	return project + "_report.json", project + "_run_sheet.docx"
}

// Save writes the JSON report and the run sheet into dir and returns their
// paths.
func (r *Report) Save(dir string) (string, string, error) {
	jsonName, docxName := FileNames(r.Project)

	data, err := r.JSON()
	if err != nil {
		return "", "", fmt.Errorf("encode report: %w", err)
	}
	if err := writeFileAtomic(dir, jsonName, data); err != nil {
		return "", "", fmt.Errorf("write report: %w", err)
	}

	docxPath := filepath.Join(dir, docxName)
	if err := r.WriteRunSheet(docxPath); err != nil {
		return "", "", fmt.Errorf("write run sheet: %w", err)
	}
	return filepath.Join(dir, jsonName), docxPath, nil
}

// writeFileAtomic writes name in dir through a hidden temp file in the same
// directory and a rename, replacing any existing file.
func writeFileAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, filepath.Join(dir, name))
}
