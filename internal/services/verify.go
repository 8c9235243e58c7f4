package services

import (
	"context"
	"fmt"

	"github.com/vvka-141/questload/pkg/questload"
)

// Verify reads back tableName and reports Japanese name coverage.
func (s *ImportService) Verify(ctx context.Context, tableName string) (*questload.Coverage, error) {
	if !questload.IsValidIdentifier(tableName) {
		return nil, fmt.Errorf("table name %q is not a plain SQL identifier: %w", tableName, questload.ErrInvalidConfig)
	}

	store, err := s.openStore(ctx, tableName)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			s.logger.Error("failed to close store: %v", err)
		}
	}()

	quests, err := store.Quests(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(tableName, quests), nil
}

func summarize(tableName string, quests []questload.QuestRecord) *questload.Coverage {
	cov := &questload.Coverage{TableName: tableName, Total: len(quests)}

	seen := make(map[string]int, len(quests))
	listed := make(map[string]bool)
	for _, q := range quests {
		seen[q.TableName]++
		if seen[q.TableName] == 2 {
			cov.DuplicateKeys++
		}

		if q.NameJP != nil && *q.NameJP != "" {
			cov.Translated++
			continue
		}
		if !listed[q.TableName] {
			listed[q.TableName] = true
			cov.Untranslated = append(cov.Untranslated, q.TableName)
		}
	}
	return cov
}
