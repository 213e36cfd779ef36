package processor

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/nguyentantai21042004/slide-flow/internal/assembler"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/nguyentantai21042004/slide-flow/internal/renderer"
	"github.com/nguyentantai21042004/slide-flow/internal/scan"
)

// clipPaths lists the project's clips ordered by logical id. Files whose
// id cannot be read are skipped.
func (p *implProcessor) clipPaths(ctx context.Context) ([]string, error) {
	assets, err := scan.Dir(p.cfg.ClipsDir(), models.KindVideo)
	if err != nil {
		var missing *scan.MissingDirError
		if errors.As(err, &missing) {
			return nil, assembler.ErrNoClips
		}
		return nil, err
	}

	type entry struct {
		id   string
		path string
	}
	prefix := renderer.ClipPrefix(p.cfg.Project)
	var entries []entry
	for _, a := range assets {
		if !strings.HasPrefix(a.Name, prefix) {
			p.logger.Debug(ctx, "Ignoring %s: not a clip of project %s", a.Name, p.cfg.Project)
			continue
		}
		id, ok := p.scheme.Extract(models.KindVideo, a.Name)
		if !ok {
			p.logger.Warn(ctx, "Could not extract logical ID from clip: %s. Skipping.", a.Name)
			continue
		}
		entries = append(entries, entry{id: id, path: a.Path})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if c := p.scheme.Compare(entries[i].id, entries[j].id); c != 0 {
			return c < 0
		}
		return entries[i].path < entries[j].path
	})

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.path)
	}
	p.logger.Info(ctx, "Found %d clips in %s", len(paths), p.cfg.ClipsDir())
	return paths, nil
}
