package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/questload/internal/questcsv"
	"github.com/vvka-141/questload/pkg/questload"
)

// ImportService implements the Importer interface.
// Thread-Safety: NOT safe for concurrent Import() calls on the same instance.
type ImportService struct {
	openStore questload.StoreFactory
	approver  questload.Approver
	logger    questload.Logger
	progress  questload.ProgressReporter
}

// Option configures an ImportService.
type Option func(*ImportService)

// WithProgress sends phase transitions to reporter.
func WithProgress(reporter questload.ProgressReporter) Option {
	return func(s *ImportService) {
		if reporter != nil {
			s.progress = reporter
		}
	}
}

// NewImportService creates an ImportService. It panics on nil dependencies,
// which are programmer errors.
func NewImportService(
	openStore questload.StoreFactory,
	approver questload.Approver,
	logger questload.Logger,
	opts ...Option,
) *ImportService {
	if openStore == nil {
		panic("openStore cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	s := &ImportService{
		openStore: openStore,
		approver:  approver,
		logger:    logger,
		progress:  nopProgress{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ questload.Importer = (*ImportService)(nil)

// Import recreates the quest table, loads the English sheet and then applies
// the Japanese names. The store is opened once and closed on every path.
func (s *ImportService) Import(ctx context.Context, cfg questload.ImportConfig) (*questload.ImportReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	report := &questload.ImportReport{
		RunID:     uuid.New(),
		TableName: cfg.TableName,
		DryRun:    cfg.DryRun,
	}
	s.logger.Verbose("Import run %s into %s", report.RunID, cfg.TableName)

	if err := checkSources(cfg.EnglishPath, cfg.JapanesePath); err != nil {
		return nil, err
	}

	if cfg.DryRun {
		if err := s.dryRun(cfg, report); err != nil {
			return nil, err
		}
		return s.finish(report, start), nil
	}

	s.progress.Report(questload.PhaseApproval, cfg.TableName)
	approved, err := s.approver.RequestApproval(ctx, cfg.TableName)
	if err != nil {
		return nil, fmt.Errorf("approval failed: %w", err)
	}
	if !approved {
		return nil, fmt.Errorf("table %s was not dropped: %w", cfg.TableName, questload.ErrApprovalDenied)
	}

	store, err := s.openStore(ctx, cfg.TableName)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			s.logger.Error("failed to close store: %v", err)
		}
	}()

	s.progress.Report(questload.PhaseSchema, cfg.TableName)
	if err := store.RecreateTable(ctx); err != nil {
		return nil, err
	}

	s.progress.Report(questload.PhaseReadEnglish, cfg.EnglishPath)
	records, err := s.readEnglish(cfg)
	if err != nil {
		return nil, err
	}
	report.EnglishRows = len(records)

	s.progress.Report(questload.PhaseInsert, fmt.Sprintf("%d rows", len(records)))
	report.Inserted, err = store.InsertEnglish(ctx, records)
	if err != nil {
		return nil, err
	}
	s.logger.Verbose("Inserted %d English quests", report.Inserted)

	s.progress.Report(questload.PhaseReadJapanese, cfg.JapanesePath)
	updates, skipped, err := s.readJapanese(cfg)
	if err != nil {
		return nil, err
	}
	report.JapaneseRows = len(updates) + skipped
	report.SkippedUpdates = skipped

	s.progress.Report(questload.PhaseUpdate, fmt.Sprintf("%d rows", len(updates)))
	report.Update, err = store.ApplyJapaneseNames(ctx, updates)
	if err != nil {
		return nil, err
	}

	return s.finish(report, start), nil
}

func (s *ImportService) dryRun(cfg questload.ImportConfig, report *questload.ImportReport) error {
	s.progress.Report(questload.PhaseReadEnglish, cfg.EnglishPath)
	records, err := s.readEnglish(cfg)
	if err != nil {
		return err
	}
	report.EnglishRows = len(records)

	s.progress.Report(questload.PhaseReadJapanese, cfg.JapanesePath)
	updates, skipped, err := s.readJapanese(cfg)
	if err != nil {
		return err
	}
	report.JapaneseRows = len(updates) + skipped
	report.SkippedUpdates = skipped

	// Match against the sheet instead of the table.
	keys := make(map[string]int, len(records))
	for _, r := range records {
		keys[r.TableName]++
	}
	for _, u := range updates {
		report.Update.Add(int64(keys[u.TableName]))
	}
	return nil
}

func (s *ImportService) finish(report *questload.ImportReport, start time.Time) *questload.ImportReport {
	report.Elapsed = time.Since(start)
	s.progress.Report(questload.PhaseDone, "")

	verb := "Imported"
	if report.DryRun {
		verb = "Dry run: would import"
	}
	s.logger.Info("%s %d English quests into %s; %d Japanese names applied to %d rows (%d unmatched, %d skipped)",
		verb, report.EnglishRows, report.TableName,
		report.Update.Applied, report.Update.RowsAffected, report.Update.Unmatched, report.SkippedUpdates)
	s.logger.Info("Finished in %v", report.Elapsed.Round(time.Millisecond))
	return report
}

func (s *ImportService) readEnglish(cfg questload.ImportConfig) ([]questload.QuestRecord, error) {
	r, err := questcsv.Open(cfg.EnglishPath, questcsv.Options{Encoding: cfg.EnglishEncoding, Layout: cfg.Layout})
	if err != nil {
		return nil, err
	}
	defer r.Close()

	records, err := r.ReadEnglish()
	if err != nil {
		return nil, err
	}
	s.logColumns("English", r.Columns())
	return records, nil
}

func (s *ImportService) readJapanese(cfg questload.ImportConfig) ([]questload.NameUpdate, int, error) {
	r, err := questcsv.Open(cfg.JapanesePath, questcsv.Options{Encoding: cfg.JapaneseEncoding, Layout: cfg.Layout})
	if err != nil {
		return nil, 0, err
	}
	defer r.Close()

	updates, skipped, err := r.ReadJapanese()
	if err != nil {
		return nil, 0, err
	}
	s.logColumns("Japanese", r.Columns())
	if skipped > 0 {
		s.logger.Verbose("Skipped %d Japanese rows with a blank name or key", skipped)
	}
	return updates, skipped, nil
}

func (s *ImportService) logColumns(sheet string, c questcsv.Columns) {
	s.logger.Verbose("%s sheet columns: name=%d key=%d expansion=%d", sheet, c.Name, c.Key, c.Expansion)
}

// checkSources fails before anything is dropped when a sheet is missing.
func checkSources(paths ...string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", p, questload.ErrSourceNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory: %w", p, questload.ErrSourceNotFound)
		}
	}
	return nil
}

type nopProgress struct{}

func (nopProgress) Report(questload.Phase, string) {}
