package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/llmsh/llmsh/internal/domain"
	"github.com/llmsh/llmsh/internal/ports"
)

// FileStore appends history entries to a JSONL file. It backs deployments
// where SQLite cannot be opened and doubles as the export wire format.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates a JSONL store at path, defaulting to
// ~/.llmsh/history/history.jsonl.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = filepath.Join(userHome(), ".llmsh", "history", "history.jsonl")
	}
	return &FileStore{path: path}
}

// Record implements ports.HistoryStore. The line is fsynced before the call
// returns so a crash immediately afterwards cannot lose the entry.
func (f *FileStore) Record(entry domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return &domain.StorageError{Op: "record", Err: err}
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return &domain.StorageError{Op: "record", Err: err}
	}
	defer file.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return &domain.StorageError{Op: "record", Err: err}
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		return &domain.StorageError{Op: "record", Err: err}
	}
	if err := file.Sync(); err != nil {
		return &domain.StorageError{Op: "record", Err: err}
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (f *FileStore) Recent(limit int) ([]domain.HistoryEntry, error) {
	return f.Search("", limit)
}

// Search matches term as a substring of input or command.
func (f *FileStore) Search(term string, limit int) ([]domain.HistoryEntry, error) {
	entries, err := f.load()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(entries)

	var matched []domain.HistoryEntry
	lower := strings.ToLower(term)
	for _, entry := range entries {
		if term != "" &&
			!strings.Contains(strings.ToLower(entry.Input), lower) &&
			!strings.Contains(strings.ToLower(entry.Command), lower) {
			continue
		}
		matched = append(matched, entry)
		if limit > 0 && len(matched) >= limit {
			break
		}
	}
	return matched, nil
}

// Stats recomputes aggregates from the full entry set on every call.
func (f *FileStore) Stats(window domain.StatsWindow) (domain.HistoryStats, error) {
	entries, err := f.load()
	if err != nil {
		return domain.HistoryStats{}, err
	}
	if !window.Since.IsZero() {
		filtered := entries[:0]
		for _, entry := range entries {
			if !entry.CreatedAt.Before(window.Since) {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}
	return computeStats(entries), nil
}

// CommandUsage aggregates successful command frequency per context tag.
func (f *FileStore) CommandUsage(tags []string) ([]domain.CommandUsage, error) {
	entries, err := f.load()
	if err != nil {
		return nil, err
	}
	tagSet := map[string]struct{}{}
	for _, tag := range tags {
		tagSet[tag] = struct{}{}
	}

	byCommand := map[string]*domain.CommandUsage{}
	for _, entry := range entries {
		if entry.Outcome != domain.OutcomeSuccess || entry.Command == "" {
			continue
		}
		if len(tagSet) > 0 {
			if _, ok := tagSet[entry.ContextTag]; !ok {
				continue
			}
		}
		usage, ok := byCommand[entry.Command]
		if !ok {
			usage = &domain.CommandUsage{Command: entry.Command}
			byCommand[entry.Command] = usage
		}
		usage.Count++
		if entry.CreatedAt.After(usage.LastUsed) {
			usage.LastUsed = entry.CreatedAt
		}
	}

	result := make([]domain.CommandUsage, 0, len(byCommand))
	for _, usage := range byCommand {
		result = append(result, *usage)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Command < result[j].Command })
	return result, nil
}

// Export copies all entries to another JSONL file, oldest first.
func (f *FileStore) Export(path string) error {
	entries, err := f.load()
	if err != nil {
		return err
	}
	sortOldestFirst(entries)
	return writeJSONL(path, entries)
}

// Import appends entries read from a JSONL file.
func (f *FileStore) Import(path string) (int, error) {
	entries, err := readJSONL(path)
	if err != nil {
		return 0, err
	}
	for _, entry := range entries {
		if err := f.Record(entry); err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}

// Clear removes the backing file; rename-free removal is atomic on POSIX.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return &domain.StorageError{Op: "clear", Err: err}
	}
	return nil
}

// PruneOlderThan rewrites the file keeping only entries within the window.
func (f *FileStore) PruneOlderThan(days int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.loadLocked()
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	var kept []domain.HistoryEntry
	for _, entry := range entries {
		if !entry.CreatedAt.Before(cutoff) {
			kept = append(kept, entry)
		}
	}
	pruned := len(entries) - len(kept)
	if pruned == 0 {
		return 0, nil
	}
	tmp := f.path + ".tmp"
	if err := writeJSONL(tmp, kept); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return 0, &domain.StorageError{Op: "prune", Err: err}
	}
	return pruned, nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) load() ([]domain.HistoryEntry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loadLocked()
}

func (f *FileStore) loadLocked() ([]domain.HistoryEntry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &domain.StorageError{Op: "load", Err: err}
	}
	var entries []domain.HistoryEntry
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry domain.HistoryEntry
		if err := json.Unmarshal(line, &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func sortNewestFirst(entries []domain.HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

func sortOldestFirst(entries []domain.HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}

func writeJSONL(path string, entries []domain.HistoryEntry) error {
	file, err := os.Create(path)
	if err != nil {
		return &domain.StorageError{Op: "export", Err: err}
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return &domain.StorageError{Op: "export", Err: err}
		}
		if _, err := writer.Write(append(data, '\n')); err != nil {
			return &domain.StorageError{Op: "export", Err: err}
		}
	}
	if err := writer.Flush(); err != nil {
		return &domain.StorageError{Op: "export", Err: err}
	}
	return nil
}

func readJSONL(path string) ([]domain.HistoryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.StorageError{Op: "import", Err: err}
	}
	var entries []domain.HistoryEntry
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry domain.HistoryEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, &domain.StorageError{Op: "import", Err: err}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

var _ ports.HistoryStore = (*FileStore)(nil)
