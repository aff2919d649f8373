package storage

import (
	"context"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"trustregistry/internal/domain"
)

var csvHeader = []string{"entity_id", "authority_id", "action", "resource", "recognized", "authorized", "context"}

// FileStore serves reads from an in-memory map loaded from a CSV file and
// writes through to the same file. A background resync picks up external
// edits by comparing the file's modification time; the map is replaced
// wholesale on change, so reads between mutation and resync stay monotonic.
//
// Consistency: reads may trail an external edit by up to the sync interval.
// The adapter's own writes are visible immediately (write-then-read-own-write)
// and do not trigger a reload: after each persist the resulting modification
// time is recorded as already seen.
type FileStore struct {
	path     string
	interval time.Duration
	logger   *slog.Logger

	// writeMu serializes mutation+persist cycles so the file on disk always
	// reflects the latest completed mutation.
	writeMu sync.Mutex

	mu           sync.RWMutex
	records      map[domain.TrustRecordQuery]domain.TrustRecord
	lastModified time.Time
}

// NewFileStore loads the CSV file synchronously and fails construction if
// it cannot be read or parsed. Call Start to begin background resyncing.
func NewFileStore(path string, interval time.Duration, logger *slog.Logger) (*FileStore, error) {
	s := &FileStore{
		path:     path,
		interval: interval,
		logger:   logger,
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrQueryFailed, path, err)
	}
	records, err := s.loadFile()
	if err != nil {
		return nil, err
	}
	s.records = records
	s.lastModified = info.ModTime()
	return s, nil
}

// Start launches the resync loop. It returns when ctx is cancelled.
func (s *FileStore) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.resyncOnce()
			}
		}
	}()
}

// resyncOnce reloads the file if its modification time advanced past the
// last one seen. Failures are logged and leave the current map untouched.
// It holds writeMu so a reload never observes a half-written persist.
func (s *FileStore) resyncOnce() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		s.logger.Error("trust record file stat failed", "path", s.path, "error", err)
		return
	}

	s.mu.RLock()
	seen := s.lastModified
	s.mu.RUnlock()
	if !info.ModTime().After(seen) {
		s.logger.Debug("trust record file unchanged", "path", s.path)
		return
	}

	records, err := s.loadFile()
	if err != nil {
		s.logger.Error("trust record file reload failed", "path", s.path, "error", err)
		return
	}

	s.mu.Lock()
	s.records = records
	s.lastModified = info.ModTime()
	s.mu.Unlock()
	s.logger.Info("trust record file reloaded", "path", s.path, "records", len(records))
}

func (s *FileStore) Create(_ context.Context, record domain.TrustRecord) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	key := record.Query()
	s.mu.Lock()
	if _, ok := s.records[key]; ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRecordAlreadyExists, key)
	}
	s.records[key] = record
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(snapshot)
}

func (s *FileStore) Update(_ context.Context, record domain.TrustRecord) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	key := record.Query()
	s.mu.Lock()
	if _, ok := s.records[key]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRecordNotFound, key)
	}
	s.records[key] = record
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(snapshot)
}

func (s *FileStore) Delete(_ context.Context, query domain.TrustRecordQuery) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if _, ok := s.records[query]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRecordNotFound, query)
	}
	delete(s.records, query)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(snapshot)
}

func (s *FileStore) Read(_ context.Context, query domain.TrustRecordQuery) (domain.TrustRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[query]
	if !ok {
		return domain.TrustRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, query)
	}
	return record, nil
}

func (s *FileStore) List(_ context.Context) ([]domain.TrustRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.TrustRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	return records, nil
}

func (s *FileStore) FindByQuery(_ context.Context, query domain.TrustRecordQuery) (*domain.TrustRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[query]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *FileStore) snapshotLocked() []domain.TrustRecord {
	records := make([]domain.TrustRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	return records
}

// persist writes the whole record set back to the CSV file, then records the
// resulting modification time so the next resync tick does not reload the
// store's own write.
func (s *FileStore) persist(records []domain.TrustRecord) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("%w: open %s for write: %v", ErrQueryFailed, s.path, err)
	}

	w := csv.NewWriter(f)
	writeErr := w.Write(csvHeader)
	for _, record := range records {
		if writeErr != nil {
			break
		}
		var row []string
		row, writeErr = recordToRow(record)
		if writeErr == nil {
			writeErr = w.Write(row)
		}
	}
	if writeErr == nil {
		w.Flush()
		writeErr = w.Error()
	}
	if closeErr := f.Close(); writeErr == nil && closeErr != nil {
		writeErr = fmt.Errorf("%w: close %s: %v", ErrQueryFailed, s.path, closeErr)
	}
	if writeErr != nil {
		return writeErr
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("%w: stat %s after write: %v", ErrQueryFailed, s.path, err)
	}
	s.mu.Lock()
	s.lastModified = info.ModTime()
	s.mu.Unlock()
	return nil
}

func (s *FileStore) loadFile() (map[domain.TrustRecordQuery]domain.TrustRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrQueryFailed, s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrSerializationFailed, s.path, err)
	}

	records := make(map[domain.TrustRecordQuery]domain.TrustRecord)
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		record, err := rowToRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrSerializationFailed, s.path, i+1, err)
		}
		records[record.Query()] = record
	}
	return records, nil
}

func recordToRow(record domain.TrustRecord) ([]string, error) {
	contextField := ""
	switch record.Context.Value().(type) {
	case map[string]any, []any:
		raw, err := json.Marshal(record.Context)
		if err != nil {
			return nil, fmt.Errorf("%w: encode context: %v", ErrSerializationFailed, err)
		}
		contextField = base64.StdEncoding.EncodeToString(raw)
	}
	return []string{
		record.EntityID.String(),
		record.AuthorityID.String(),
		record.Action.String(),
		record.Resource.String(),
		flagField(record.Recognized),
		flagField(record.Authorized),
		contextField,
	}, nil
}

func rowToRecord(row []string) (domain.TrustRecord, error) {
	if len(row) != len(csvHeader) {
		return domain.TrustRecord{}, fmt.Errorf("expected %d fields, got %d", len(csvHeader), len(row))
	}

	recognized, err := parseFlag(row[4])
	if err != nil {
		return domain.TrustRecord{}, fmt.Errorf("recognized: %v", err)
	}
	authorized, err := parseFlag(row[5])
	if err != nil {
		return domain.TrustRecord{}, fmt.Errorf("authorized: %v", err)
	}

	recordContext := domain.EmptyContext()
	if row[6] != "" {
		raw, err := base64.StdEncoding.DecodeString(row[6])
		if err != nil {
			return domain.TrustRecord{}, fmt.Errorf("context: %v", err)
		}
		recordContext, err = domain.ContextFromJSON(raw)
		if err != nil {
			return domain.TrustRecord{}, fmt.Errorf("context: %v", err)
		}
	}

	return domain.NewTrustRecord(
		domain.EntityID(row[0]),
		domain.AuthorityID(row[1]),
		domain.Action(row[2]),
		domain.Resource(row[3]),
		recognized,
		authorized,
		recordContext,
	)
}

func flagField(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func parseFlag(field string) (*bool, error) {
	if field == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(field)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
