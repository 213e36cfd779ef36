package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

// MissingDirError reports a configured input directory that does not exist.
type MissingDirError struct {
	Kind models.MediaKind
	Dir  string
}

func (e *MissingDirError) Error() string {
	return fmt.Sprintf("%s directory not found: %s", e.Kind, e.Dir)
}

func (e *MissingDirError) Is(target error) bool { return target == fs.ErrNotExist }

// Extensions returns the lowercase extension allow-list of a media kind.
func Extensions(kind models.MediaKind) []string {
	switch kind {
	case models.KindImage:
		return []string{".jpg", ".png"}
	case models.KindAudio:
		return []string{".mp3"}
	case models.KindVideo:
		return []string{".mp4"}
	case models.KindScript:
		return []string{".txt"}
	default:
		return nil
	}
}

// Matches reports whether name carries an allowed extension for kind.
// Hidden files never match.
func Matches(kind models.MediaKind, name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, allowed := range Extensions(kind) {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Dir lists the regular files of kind directly inside dir, sorted by name.
// The order is only for stable reporting; pairing never depends on it.
func Dir(dir string, kind models.MediaKind) ([]models.MediaAsset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingDirError{Kind: kind, Dir: dir}
		}
		return nil, fmt.Errorf("read %s directory: %w", kind, err)
	}

	assets := make([]models.MediaAsset, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !Matches(kind, e.Name()) {
			continue
		}
		assets = append(assets, models.MediaAsset{
			Path: filepath.Join(dir, e.Name()),
			Name: e.Name(),
			Kind: kind,
		})
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets, nil
}
