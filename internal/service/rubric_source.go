package service

import (
	"os"
	"sync"

	"survey-grader/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// RubricSource provides the grading rubric text embedded into essay
// prompts. The rubric lives in a markdown file referenced from
// configuration; when no path is configured or the file cannot be read,
// prompts fall back to their built-in grading principles.
type RubricSource struct {
	path string

	group   singleflight.Group
	mu      sync.RWMutex
	loaded  bool
	content string
}

// NewRubricSource creates a new RubricSource instance.
func NewRubricSource(path string) *RubricSource {
	return &RubricSource{path: path}
}

// Content returns the rubric text, or "" when none is available. The file
// is read once and cached; concurrent first calls share a single read.
func (s *RubricSource) Content() string {
	if s.path == "" {
		return ""
	}

	s.mu.RLock()
	if s.loaded {
		content := s.content
		s.mu.RUnlock()
		return content
	}
	s.mu.RUnlock()

	v, _, _ := s.group.Do(s.path, func() (interface{}, error) {
		content := ""
		data, err := os.ReadFile(s.path)
		if err != nil {
			logger.Get().Warn("Failed to read grading rubric file, built-in principles will be used",
				zap.String("path", s.path),
				zap.Error(err))
		} else {
			content = string(data)
		}

		s.mu.Lock()
		s.content = content
		s.loaded = true
		s.mu.Unlock()

		return content, nil
	})
	return v.(string)
}
