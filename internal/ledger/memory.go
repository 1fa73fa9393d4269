package ledger

import "context"

// Memory keeps entries for the lifetime of the process only. It backs the
// report-only mode where nothing is persisted.
type Memory struct {
	entries []Entry
	seen    map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{seen: make(map[string]struct{})}
}

func (m *Memory) Init(context.Context) error { return nil }

func (m *Memory) Exists(_ context.Context, title string) (bool, error) {
	_, ok := m.seen[title]
	return ok, nil
}

func (m *Memory) Append(_ context.Context, entry Entry) error {
	m.entries = append(m.entries, entry)
	m.seen[entry.Title] = struct{}{}
	return nil
}

func (m *Memory) Titles(context.Context) ([]string, error) {
	titles := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		titles = append(titles, e.Title)
	}
	return titles, nil
}

func (m *Memory) Close() error { return nil }
