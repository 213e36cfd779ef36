package processor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// removeStalePartials deletes hidden partial outputs an interrupted run left
// in dir. Finished files are never touched.
func (p *implProcessor) removeStalePartials(ctx context.Context, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, ".") || !strings.Contains(name, ".partial.") {
			continue
		}
		p.logger.Info(ctx, "Removing leftover partial file: %s", name)
		p.cleanupTempFile(ctx, filepath.Join(dir, name))
	}
}

// cleanupTempFile removes a temporary file, logs warning if fails
func (p *implProcessor) cleanupTempFile(ctx context.Context, filePath string) {
	if err := os.Remove(filePath); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", filePath, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up temp file: %s", filePath)
	}
}
