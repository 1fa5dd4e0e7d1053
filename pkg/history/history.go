package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"

	"smd/pkg/logger"
)

// timestampLayout is the human-readable form used in the CSV
const timestampLayout = "2006-01-02 15:04:05"

// Entry is one recorded download outcome
type Entry struct {
	URL       string
	Status    string
	Timestamp string
}

// Log is an append-only CSV download history. Failures to record are
// logged and swallowed; history is best effort and never fatal.
type Log struct {
	path string
	mu   sync.Mutex
	log  logger.Logger
	now  func() time.Time
}

// New creates a history log writing to the given CSV file
func New(path string, log logger.Logger) *Log {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Log{path: path, log: log, now: time.Now}
}

// Record appends (url, status, timestamp) to the history file
func (l *Log) Record(url, status string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		l.log.WithError(err).Error("failed to open history file")
		return
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{url, status, l.now().Format(timestampLayout)}); err != nil {
		l.log.WithError(err).Error("failed to log download")
		return
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		l.log.WithError(err).Error("failed to flush history entry")
		return
	}

	l.log.InfoWithFields("download recorded", map[string]interface{}{
		"url":    url,
		"status": status,
	})
}

// Tail returns the most recent n entries, oldest first. A missing
// history file yields an empty slice.
func (l *Log) Tail(n int) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	if n > 0 && len(records) > n {
		records = records[len(records)-n:]
	}

	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		entry := Entry{}
		if len(record) > 0 {
			entry.URL = record[0]
		}
		if len(record) > 1 {
			entry.Status = record[1]
		}
		if len(record) > 2 {
			entry.Timestamp = record[2]
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
