// Package metadata post-processes the sidecar files yt-dlp writes next
// to a download: comment lists become CSV, descriptions become plain
// text files.
package metadata

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	errs "smd/pkg/errors"
	"smd/pkg/logger"
)

const infoJSONSuffix = ".info.json"

// Comment mirrors the fields yt-dlp emits per comment in info.json.
type Comment struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Text       string  `json:"text"`
	Timestamp  float64 `json:"timestamp"`
	LikeCount  int     `json:"like_count"`
	ReplyCount int     `json:"reply_count"`
}

type infoSidecar struct {
	Description string    `json:"description"`
	Comments    []Comment `json:"comments"`
}

// Processor converts info.json sidecars into the derived files.
type Processor struct {
	withComments bool
	log          logger.Logger
}

// NewProcessor creates a Processor. withComments controls whether a
// comments CSV is produced alongside the description.
func NewProcessor(withComments bool, log logger.Logger) *Processor {
	return &Processor{withComments: withComments, log: log}
}

// ProcessDir scans a download directory for *.info.json files and
// derives <base>.description.txt and, when enabled,
// <base>.comments.csv next to each. Failures are logged and skipped;
// sidecar processing never fails a download.
func (p *Processor) ProcessDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		p.log.WarnWithFields("cannot scan download directory", map[string]interface{}{
			"dir":   dir,
			"error": err.Error(),
		})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), infoJSONSuffix) {
			continue
		}

		infoPath := filepath.Join(dir, entry.Name())
		base := strings.TrimSuffix(entry.Name(), infoJSONSuffix)

		if err := ExtractDescription(infoPath, filepath.Join(dir, base+".description.txt")); err != nil {
			p.log.DebugWithFields("no description extracted", map[string]interface{}{
				"file":  infoPath,
				"error": err.Error(),
			})
		}

		if p.withComments {
			if err := CommentsToCSV(infoPath, filepath.Join(dir, base+".comments.csv")); err != nil {
				p.log.DebugWithFields("no comments extracted", map[string]interface{}{
					"file":  infoPath,
					"error": err.Error(),
				})
			}
		}
	}
}

// ExtractDescription writes the description field of an info.json file
// to a text file. Empty descriptions produce no file.
func ExtractDescription(infoJSONPath, outPath string) error {
	sidecar, err := readSidecar(infoJSONPath)
	if err != nil {
		return err
	}

	desc := strings.TrimSpace(sidecar.Description)
	if desc == "" {
		return errs.New(errs.ErrorTypeValidation, "no description in metadata")
	}

	if err := os.WriteFile(outPath, []byte(desc), 0644); err != nil {
		return errs.Wrap(errs.ErrorTypeIO, "writing description file", err)
	}
	return nil
}

// CommentsToCSV converts the comments array of an info.json file into
// a CSV file. No comments means no file.
func CommentsToCSV(infoJSONPath, outPath string) error {
	sidecar, err := readSidecar(infoJSONPath)
	if err != nil {
		return err
	}
	if len(sidecar.Comments) == 0 {
		return errs.New(errs.ErrorTypeValidation, "no comments in metadata")
	}

	f, err := os.Create(outPath)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeIO, "creating comments CSV", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Author", "Text", "Timestamp", "Likes", "Replies", "Comment_ID"}); err != nil {
		return errs.Wrap(errs.ErrorTypeIO, "writing comments CSV", err)
	}

	for _, c := range sidecar.Comments {
		ts := ""
		if c.Timestamp > 0 {
			ts = time.Unix(int64(c.Timestamp), 0).Format("2006-01-02 15:04:05")
		}
		record := []string{
			c.Author,
			strings.ReplaceAll(c.Text, "\n", " "),
			ts,
			strconv.Itoa(c.LikeCount),
			strconv.Itoa(c.ReplyCount),
			c.ID,
		}
		if err := w.Write(record); err != nil {
			return errs.Wrap(errs.ErrorTypeIO, "writing comments CSV", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errs.Wrap(errs.ErrorTypeIO, "flushing comments CSV", err)
	}
	return nil
}

func readSidecar(path string) (*infoSidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeIO, "reading metadata file", err)
	}

	var sidecar infoSidecar
	if err := json.Unmarshal(data, &sidecar); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeValidation, "parsing metadata file", err)
	}
	return &sidecar, nil
}
