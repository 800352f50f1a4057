package importer

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dhowden/tag"

	"github.com/wbell/sonora/internal/domain"
)

// Extractor reads tag metadata out of raw audio bytes. It is the
// import pipeline's only knowledge of audio formats; a failed
// extraction falls back to filename defaults and never fails the
// file's import.
type Extractor interface {
	Extract(r io.ReadSeeker) (domain.TrackMeta, error)
}

// TagExtractor implements Extractor with dhowden/tag.
type TagExtractor struct{}

func (TagExtractor) Extract(r io.ReadSeeker) (domain.TrackMeta, error) {
	m, err := tag.ReadFrom(r)
	if err != nil {
		return domain.TrackMeta{}, err
	}
	meta := domain.TrackMeta{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
	}
	if pic := m.Picture(); pic != nil {
		meta.Picture = pic.Data
	}
	return meta, nil
}

// Phase identifies an import pipeline stage for progress reporting.
type Phase string

const (
	PhaseReading Phase = "reading"
	PhaseSaving  Phase = "saving"
)

// ProgressFunc reports import progress within a phase.
type ProgressFunc func(phase Phase, done, total int)

// Service converts raw files into track records and persists them.
type Service struct {
	extractor Extractor
	store     domain.Store
	logger    *slog.Logger
}

// NewService creates a new import service.
func NewService(extractor Extractor, store domain.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = TagExtractor{}
	}
	return &Service{extractor: extractor, store: store, logger: logger}
}

// ImportFiles reads each path, extracts metadata and inserts the
// resulting records in one batch. Each file's extraction outcome is
// independent; files that cannot be read at all are skipped. The
// store insert is atomic, so a write failure fails the import as a
// whole.
func (s *Service) ImportFiles(paths []string, onProgress ProgressFunc) ([]domain.Track, error) {
	var tracks []domain.Track

	for i, path := range paths {
		if onProgress != nil {
			onProgress(PhaseReading, i, len(paths))
		}

		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable file", "path", path, "error", err)
			continue
		}
		tracks = append(tracks, s.buildTrack(filepath.Base(path), data))
	}

	if len(tracks) == 0 {
		return nil, nil
	}

	if onProgress != nil {
		onProgress(PhaseSaving, len(paths), len(paths))
	}

	if err := s.store.InsertTracks(tracks); err != nil {
		s.logger.Error("import batch failed", "count", len(tracks), "error", err)
		return nil, err
	}

	s.logger.Info("imported tracks", "count", len(tracks))
	return tracks, nil
}

// buildTrack extracts metadata from one file's bytes, falling back to
// the filename/Unknown defaults when extraction fails.
func (s *Service) buildTrack(filename string, data []byte) domain.Track {
	meta, err := s.extractor.Extract(bytes.NewReader(data))
	if err != nil {
		s.logger.Debug("tag extraction failed, using defaults", "file", filename, "error", err)
		meta = domain.TrackMeta{}
	}
	return domain.NewTrack(filename, meta, data)
}
