package vision

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
)

// TemplateStore holds named template images loaded from a directory. A
// missing or unreadable template is logged and skipped, so a store without
// optional templates still serves the ones that loaded.
type TemplateStore struct {
	logger    *slog.Logger
	templates map[string]gocv.Mat
}

// NewTemplateStore loads every .png file under dir. The file base name
// (including extension) is the template key.
func NewTemplateStore(dir string, logger *slog.Logger) (*TemplateStore, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("vision: read template dir %s: %w", dir, err)
	}
	s := &TemplateStore{
		logger:    logger,
		templates: make(map[string]gocv.Mat),
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".png") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		mat := gocv.IMRead(path, gocv.IMReadColor)
		if mat.Empty() {
			logger.Warn("template unreadable, skipping", slog.String("path", path))
			continue
		}
		s.templates[e.Name()] = mat
		logger.Debug("template loaded",
			slog.String("name", e.Name()),
			slog.Int("width", mat.Cols()),
			slog.Int("height", mat.Rows()),
		)
	}
	return s, nil
}

// Get returns the template mat by name. The store retains ownership of the
// mat; callers must not Close it.
func (s *TemplateStore) Get(name string) (gocv.Mat, bool) {
	m, ok := s.templates[name]
	return m, ok
}

// Has reports whether a template with the given name loaded.
func (s *TemplateStore) Has(name string) bool {
	_, ok := s.templates[name]
	return ok
}

// Close releases all loaded template mats.
func (s *TemplateStore) Close() {
	for name, m := range s.templates {
		m.Close()
		delete(s.templates, name)
	}
}
