package tierlist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Source resolves the tier list a division drafts against.
type Source interface {
	ForDivision(ctx context.Context, divisionID uuid.UUID) (*TierList, error)
}

// StaticSource serves the same tier list to every division.
type StaticSource struct {
	TierList *TierList
}

func (s StaticSource) ForDivision(_ context.Context, _ uuid.UUID) (*TierList, error) {
	if s.TierList == nil {
		return nil, fmt.Errorf("no tier list configured")
	}
	return s.TierList, nil
}

// FileSource loads <dir>/<division-id>.yaml, falling back to <dir>/default.yaml.
// Parsed files are cached; tier list edits go through a separate flow that calls Invalidate.
type FileSource struct {
	dir string

	mu    sync.RWMutex
	cache map[string]*TierList
}

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{
		dir:   dir,
		cache: make(map[string]*TierList),
	}
}

func (s *FileSource) ForDivision(_ context.Context, divisionID uuid.UUID) (*TierList, error) {
	tl, err := s.load(divisionID.String())
	if err == nil {
		return tl, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return s.load("default")
}

// Invalidate drops a cached tier list so the next lookup re-reads it from disk.
func (s *FileSource) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, key)
}

func (s *FileSource) load(key string) (*TierList, error) {
	s.mu.RLock()
	tl, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return tl, nil
	}

	path := filepath.Join(s.dir, key+".yaml")
	tl, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = tl
	s.mu.Unlock()

	log.Info().Str("path", path).Int("items", len(tl.Items)).Msg("loaded tier list")
	return tl, nil
}

// LoadFile reads and validates a YAML tier list.
func LoadFile(path string) (*TierList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tier list: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML tier list.
func Parse(data []byte) (*TierList, error) {
	var tl TierList
	if err := yaml.Unmarshal(data, &tl); err != nil {
		return nil, fmt.Errorf("failed to parse tier list: %w", err)
	}
	if err := tl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tier list: %w", err)
	}
	return &tl, nil
}
