// Package store persists uploads and task metadata under the data
// directory. Writes are best-effort and nothing in the system reads
// the files back; a broken disk never fails a request.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store owns the data directory layout:
//
//	<root>/uploads/<utc stamp>_<id>_<name>.bin
//	<root>/outputs/<taskID>/meta.json
type Store struct {
	uploadsDir string
	outputsDir string
	log        *zap.Logger
}

// Meta is the per-task metadata document.
type Meta struct {
	OriginalFilename string      `json:"original_filename"`
	Options          MetaOptions `json:"options"`
}

// MetaOptions echoes the forwarded task options in their wire spelling.
type MetaOptions struct {
	EnablePBR     bool   `json:"enable_pbr"`
	ShouldRemesh  bool   `json:"should_remesh"`
	ShouldTexture bool   `json:"should_texture"`
	AIModel       string `json:"ai_model"`
}

// New creates the directory layout under root.
func New(root string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		uploadsDir: filepath.Join(root, "uploads"),
		outputsDir: filepath.Join(root, "outputs"),
		log:        log,
	}
	for _, dir := range []string{s.uploadsDir, s.outputsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return s, nil
}

// SaveUpload persists raw upload bytes for later inspection. The
// original filename is reduced to its base name before use.
func (s *Store) SaveUpload(originalFilename string, data []byte) {
	name := filepath.Base(originalFilename)
	if name == "." || name == string(filepath.Separator) {
		name = "upload"
	}

	stamp := time.Now().UTC().Format("20060102_150405")
	uid := uuid.New().String()
	path := filepath.Join(s.uploadsDir, fmt.Sprintf("%s_%s_%s.bin", stamp, uid[:8], name))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.log.Warn("failed to save upload", zap.String("path", path), zap.Error(err))
		return
	}
	s.log.Debug("upload saved", zap.String("path", path), zap.Int("bytes", len(data)))
}

// SaveTaskMeta writes the indented meta.json for a task. Failures are
// logged as warnings and never surfaced.
func (s *Store) SaveTaskMeta(taskID string, meta Meta) {
	taskDir := filepath.Join(s.outputsDir, taskID)
	if err := os.MkdirAll(taskDir, 0o755); err != nil {
		s.log.Warn("failed to create task dir", zap.String("task_id", taskID), zap.Error(err))
		return
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		s.log.Warn("failed to encode meta", zap.String("task_id", taskID), zap.Error(err))
		return
	}

	if err := os.WriteFile(filepath.Join(taskDir, "meta.json"), data, 0o644); err != nil {
		s.log.Warn("failed to write meta", zap.String("task_id", taskID), zap.Error(err))
	}
}
