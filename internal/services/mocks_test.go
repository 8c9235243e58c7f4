package services

import (
	"bytes"
	"context"
	"sync"

	"github.com/vvka-141/questload/pkg/questload"
)

type mockApprover struct {
	approved bool
	err      error
	asked    []string
}

func (m *mockApprover) RequestApproval(_ context.Context, tableName string) (bool, error) {
	m.asked = append(m.asked, tableName)
	return m.approved, m.err
}

// mockStore records calls and serves canned errors.
type mockStore struct {
	recreateErr error
	insertErr   error
	updateErr   error

	calls    []string
	inserted []questload.QuestRecord
	updates  []questload.NameUpdate
	closed   int
}

func (m *mockStore) RecreateTable(context.Context) error {
	m.calls = append(m.calls, "recreate")
	return m.recreateErr
}

func (m *mockStore) InsertEnglish(_ context.Context, records []questload.QuestRecord) (int, error) {
	m.calls = append(m.calls, "insert")
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.inserted = append(m.inserted, records...)
	return len(records), nil
}

func (m *mockStore) ApplyJapaneseNames(_ context.Context, updates []questload.NameUpdate) (questload.UpdateResult, error) {
	m.calls = append(m.calls, "update")
	if m.updateErr != nil {
		return questload.UpdateResult{}, m.updateErr
	}
	m.updates = append(m.updates, updates...)

	var result questload.UpdateResult
	for _, u := range updates {
		var n int64
		for _, r := range m.inserted {
			if r.TableName == u.TableName {
				n++
			}
		}
		result.Add(n)
	}
	return result, nil
}

func (m *mockStore) Quests(context.Context) ([]questload.QuestRecord, error) {
	m.calls = append(m.calls, "quests")
	return m.inserted, nil
}

func (m *mockStore) Close() error {
	m.closed++
	return nil
}

func (m *mockStore) factory(opened *int) questload.StoreFactory {
	return func(context.Context, string) (questload.QuestStore, error) {
		if opened != nil {
			*opened++
		}
		return m, nil
	}
}

type recordingProgress struct {
	mu     sync.Mutex
	phases []questload.Phase
}

func (r *recordingProgress) Report(phase questload.Phase, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, phase)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
