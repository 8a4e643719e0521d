package cataloging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/lotcataloger/internal/catalog"
	"github.com/lehigh-university-libraries/lotcataloger/internal/config"
	"github.com/lehigh-university-libraries/lotcataloger/internal/images"
	"github.com/lehigh-university-libraries/lotcataloger/internal/lots"
	"github.com/lehigh-university-libraries/lotcataloger/internal/models"
	"github.com/lehigh-university-libraries/lotcataloger/internal/providers"
)

var (
	// ErrUploadDirMissing means there is no upload directory to scan
	ErrUploadDirMissing = errors.New("upload directory does not exist")
	// ErrNoImages means the upload directory holds no supported image files
	ErrNoImages = errors.New("no images found")
)

// Result is what one generation run produced
type Result struct {
	RunID         string                `json:"run_id"`
	Message       string                `json:"message"`
	LotsProcessed int                   `json:"lots"`
	Entries       []models.CatalogEntry `json:"entries"`
	Failures      []models.Failure      `json:"failures"`
}

type Service struct {
	cfg       *config.Config
	store     catalog.Store
	requester *Requester
	mu        sync.Mutex
}

// NewService wires the catalog store and the provider into a generation service
func NewService(cfg *config.Config, store catalog.Store, provider providers.Provider) (*Service, error) {
	requester, err := NewRequester(provider, cfg)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:       cfg,
		store:     store,
		requester: requester,
	}, nil
}

// Generate describes every lot currently in the upload directory and appends
// one catalog row per lot. Failures for individual files or lots are reported
// in the result rather than aborting the run.
func (s *Service) Generate(ctx context.Context) (*Result, error) {
	// One run at a time so lot numbers and appends never interleave.
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &Result{
		RunID:    uuid.NewString(),
		Entries:  []models.CatalogEntry{},
		Failures: []models.Failure{},
	}
	logger := slog.With("run_id", result.RunID)

	filenames, err := images.Scan(s.cfg.UploadDir)
	if err != nil {
		if errors.Is(err, images.ErrDirMissing) {
			return nil, fmt.Errorf("%w: %s", ErrUploadDirMissing, s.cfg.UploadDir)
		}
		return nil, err
	}
	if len(filenames) == 0 {
		return nil, ErrNoImages
	}

	var groups []models.LotGroup
	if s.cfg.Generation.Mode == config.ModeImage {
		groups = lots.GroupPerImage(filenames, s.cfg.Separator)
	} else {
		var skipped []models.Failure
		groups, skipped = lots.Group(filenames, s.cfg.Separator)
		result.Failures = append(result.Failures, skipped...)
	}
	logger.Info("Generating catalog", "images", len(filenames), "lots", len(groups), "mode", s.cfg.Generation.Mode)

	// Rows already built are persisted even when the caller goes away.
	storeCtx := context.WithoutCancel(ctx)

	for _, group := range groups {
		var desc Description
		if err := ctx.Err(); err != nil {
			desc = s.requester.Failed(group)
			logger.Warn("Run cancelled, skipping lot", "lot", group.LotKey, "err", err)
			result.Failures = append(result.Failures, models.NewFailure(models.StageGenerate, group.LotKey, err))
		} else {
			desc, err = s.requester.Describe(ctx, group)
			if err != nil {
				logger.Error("AI error for lot", "lot", group.LotKey, "err", err)
				result.Failures = append(result.Failures, models.NewFailure(models.StageGenerate, group.LotKey, err))
			}
		}

		lotNumber, err := s.store.NextLotNumber(storeCtx)
		if err != nil {
			s.release(storeCtx, result.Entries)
			return nil, fmt.Errorf("failed to assign lot number: %w", err)
		}

		result.Entries = append(result.Entries, models.CatalogEntry{
			LotNumber:           lotNumber,
			ImageFilenames:      strings.Join(group.Images, ", "),
			PublicURLs:          strings.Join(desc.URLs, ", "),
			BaseCaption:         desc.Tiers.BaseCaption,
			RefinedText:         desc.Tiers.RefinedText,
			EnhancedDescription: desc.Tiers.EnhancedDescription,
		})
	}

	if err := s.store.Append(storeCtx, result.Entries); err != nil {
		s.release(storeCtx, result.Entries)
		return nil, fmt.Errorf("failed to append catalog entries: %w", err)
	}

	result.LotsProcessed = len(result.Entries)
	result.Message = fmt.Sprintf("Generated descriptions for %d lots.", result.LotsProcessed)
	logger.Info("Catalog generated", "lots", result.LotsProcessed, "failures", len(result.Failures))

	return result, nil
}

// release hands back lot numbers that were assigned but never persisted
func (s *Service) release(ctx context.Context, entries []models.CatalogEntry) {
	if len(entries) == 0 {
		return
	}
	if err := s.store.Release(ctx, entries[0].LotNumber, entries[len(entries)-1].LotNumber); err != nil {
		slog.Warn("Failed to release lot numbers", "err", err)
	}
}
