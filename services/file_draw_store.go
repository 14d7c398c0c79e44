package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fenilmodi00/lotto-backend/models"
	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/sirupsen/logrus"
)

const latestRoundFileName = "latest_round_no.json"

// FileDrawStore persists draw records as <draw_no>.json files and the latest
// draw index as latest_round_no.json.
type FileDrawStore struct {
	drawDir  string
	roundDir string
}

// NewFileDrawStore creates a file store rooted at the configured directories
func NewFileDrawStore(config shared.StorageConfig) *FileDrawStore {
	return &FileDrawStore{
		drawDir:  config.DrawDir,
		roundDir: config.RoundDir,
	}
}

// DrawPath returns the file a record for drawNo is written to
func (s *FileDrawStore) DrawPath(drawNo int) string {
	return filepath.Join(s.drawDir, fmt.Sprintf("%d.json", drawNo))
}

// LatestRoundPath returns the latest-index file path
func (s *FileDrawStore) LatestRoundPath() string {
	return filepath.Join(s.roundDir, latestRoundFileName)
}

// SaveDraw writes the record, replacing any earlier file for the same draw.
func (s *FileDrawStore) SaveDraw(_ context.Context, record models.DrawRecord) (string, error) {
	path := s.DrawPath(record.DrawNo)
	if err := writeJSONFile(s.drawDir, path, record); err != nil {
		return "", shared.NewServiceError(shared.ErrorCategoryStorage, "DRAW_WRITE_FAILED",
			fmt.Sprintf("failed to write draw %d", record.DrawNo), "FileDrawStore", "SaveDraw", false, err)
	}

	logrus.WithFields(logrus.Fields{
		"component": "FileDrawStore",
		"method":    "SaveDraw",
		"draw_no":   record.DrawNo,
		"path":      path,
	}).Debug("Draw record written")

	return path, nil
}

// SaveLatestRound writes {"latest_round_no": N}
func (s *FileDrawStore) SaveLatestRound(latestRound int) (string, error) {
	path := s.LatestRoundPath()
	if err := writeJSONFile(s.roundDir, path, models.LatestRound{LatestRoundNo: latestRound}); err != nil {
		return "", shared.NewServiceError(shared.ErrorCategoryStorage, "LATEST_ROUND_WRITE_FAILED",
			"failed to write latest round", "FileDrawStore", "SaveLatestRound", false, err)
	}
	return path, nil
}

// LoadLatestRound reads the stored latest draw index
func (s *FileDrawStore) LoadLatestRound() (int, error) {
	data, err := os.ReadFile(s.LatestRoundPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, shared.ErrDrawNotFound
		}
		return 0, shared.NewServiceError(shared.ErrorCategoryStorage, "LATEST_ROUND_READ_FAILED",
			"failed to read latest round", "FileDrawStore", "LoadLatestRound", false, err)
	}

	var latest models.LatestRound
	if err := json.Unmarshal(data, &latest); err != nil {
		return 0, shared.NewServiceError(shared.ErrorCategoryFormat, "LATEST_ROUND_DECODE_FAILED",
			"latest round file is not valid JSON", "FileDrawStore", "LoadLatestRound", false, err)
	}
	return latest.LatestRoundNo, nil
}

// GetDraw loads a stored record
func (s *FileDrawStore) GetDraw(_ context.Context, drawNo int) (*models.DrawRecord, error) {
	data, err := os.ReadFile(s.DrawPath(drawNo))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, shared.ErrDrawNotFound
		}
		return nil, shared.NewServiceError(shared.ErrorCategoryStorage, "DRAW_READ_FAILED",
			fmt.Sprintf("failed to read draw %d", drawNo), "FileDrawStore", "GetDraw", false, err)
	}

	var record models.DrawRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryFormat, "DRAW_DECODE_FAILED",
			fmt.Sprintf("draw %d file is not valid JSON", drawNo), "FileDrawStore", "GetDraw", false, err)
	}
	return &record, nil
}

// ListDrawNumbers returns the stored draw numbers in ascending order
func (s *FileDrawStore) ListDrawNumbers(_ context.Context) ([]int, error) {
	entries, err := os.ReadDir(s.drawDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []int{}, nil
		}
		return nil, shared.NewServiceError(shared.ErrorCategoryStorage, "DRAW_LIST_FAILED",
			"failed to list draw directory", "FileDrawStore", "ListDrawNumbers", false, err)
	}

	drawNumbers := make([]int, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		drawNo, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
		if err != nil || drawNo <= 0 {
			continue
		}
		drawNumbers = append(drawNumbers, drawNo)
	}

	sort.Ints(drawNumbers)
	return drawNumbers, nil
}

// writeJSONFile encodes value with four-space indent and literal non-ASCII
// characters, then replaces path.
func writeJSONFile(dir, path string, value interface{}) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	// Encode appends a newline; the files end at the closing brace.
	content := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
