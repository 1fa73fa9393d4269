package filtering

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/spigell/intern-scout/internal/matching"
)

// ExcludedJobs is the content of an exclude file.
type ExcludedJobs struct {
	Items []*ExcludedJob
}

type ExcludedJob struct {
	Title      string
	Link       string
	ExcludedAt time.Time
}

// FromMatches converts matches into exclude file entries stamped with the current time.
func FromMatches(m *matching.Matches) *ExcludedJobs {
	excluded := &ExcludedJobs{}
	for _, item := range m.Items {
		excluded.Items = append(excluded.Items, &ExcludedJob{
			Title:      item.Posting.Title,
			Link:       item.Posting.Link,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// LoadExcludedJobs reads an exclude file. A missing or empty file yields an empty list.
func LoadExcludedJobs(path string) (*ExcludedJobs, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ExcludedJobs{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedJobs{}, nil
	}

	var excluded ExcludedJobs
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedJobs) Append(other *ExcludedJobs) {
	e.Items = append(e.Items, other.Items...)
}

func (e *ExcludedJobs) Len() int {
	return len(e.Items)
}

// Contains reports whether a job with the exact title or link is listed.
func (e *ExcludedJobs) Contains(title, link string) bool {
	for _, item := range e.Items {
		if item.Title == title || (link != "" && item.Link == link) {
			return true
		}
	}
	return false
}

func (e *ExcludedJobs) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// AppendToExcludeFile adds matches to the exclude file at path, creating it when needed.
func AppendToExcludeFile(path string, m *matching.Matches) (int, error) {
	excluded, err := LoadExcludedJobs(path)
	if err != nil {
		return 0, err
	}

	excluded.Append(FromMatches(m))
	if err := excluded.ToFile(path); err != nil {
		return 0, err
	}
	return excluded.Len(), nil
}
