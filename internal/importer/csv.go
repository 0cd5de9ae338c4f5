// Package importer loads existing comment archives into the store. The
// input is a CSV export with one comment per row; threading is preserved by
// remapping the archive's ids onto the freshly assigned ones.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"Commentary/internal/core/comments"
)

// Expected header of the archive file. Column order is fixed; a header row
// is required so truncated exports fail loudly instead of shifting fields.
var expectedHeader = []string{
	"id", "parent_id", "page_uri", "created_at", "author", "author_email",
	"author_url", "author_ip", "author_agent", "username", "rating",
	"status", "text",
}

// Stats summarizes one import run.
type Stats struct {
	Imported int
	Skipped  int
}

// Importer reads CSV archives into a comment repository.
type Importer struct {
	repo   comments.Repository
	logger *slog.Logger

	// SkipInvalid drops rows that fail validation instead of aborting the
	// whole run.
	SkipInvalid bool
}

// New creates an importer writing to the given repository.
func New(repo comments.Repository, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{repo: repo, logger: logger}
}

// Run reads the archive and stores every row. Parents must appear before
// their replies, which any export ordered by id satisfies. A reply whose
// parent was skipped is imported as a top-level comment rather than lost.
func (im *Importer) Run(ctx context.Context, r io.Reader) (Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(expectedHeader)

	header, err := reader.Read()
	if err != nil {
		return Stats{}, fmt.Errorf("reading archive header: %w", err)
	}
	for i, name := range expectedHeader {
		if strings.TrimSpace(header[i]) != name {
			return Stats{}, fmt.Errorf("unexpected archive header: column %d is %q, want %q", i, header[i], name)
		}
	}

	var stats Stats
	idMap := make(map[int64]int64) // archive id -> stored id

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("reading archive line %d: %w", line, err)
		}

		comment, archiveID, archiveParent, err := parseRow(record)
		if err != nil {
			if im.SkipInvalid {
				im.logger.Warn("skipping invalid archive row", "line", line, "error", err)
				stats.Skipped++
				continue
			}
			return stats, fmt.Errorf("archive line %d: %w", line, err)
		}

		if archiveParent != 0 {
			if newID, ok := idMap[archiveParent]; ok {
				comment.ParentID = newID
			} else {
				im.logger.Warn("parent missing from archive, importing as top-level",
					"line", line, "parent", archiveParent)
			}
		}

		if errs := comment.Validate(); errs != nil {
			if im.SkipInvalid {
				im.logger.Warn("skipping invalid comment", "line", line, "error", errs.Error())
				stats.Skipped++
				continue
			}
			return stats, fmt.Errorf("archive line %d: %w", line, errs)
		}

		if err := im.repo.Create(ctx, comment); err != nil {
			return stats, fmt.Errorf("storing comment from line %d: %w", line, err)
		}
		idMap[archiveID] = comment.ID
		stats.Imported++
	}

	im.logger.Info("archive import finished",
		"imported", stats.Imported,
		"skipped", stats.Skipped)
	return stats, nil
}

func parseRow(record []string) (*comments.Comment, int64, int64, error) {
	archiveID, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil || archiveID <= 0 {
		return nil, 0, 0, fmt.Errorf("invalid id %q", record[0])
	}

	var archiveParent int64
	if record[1] != "" {
		archiveParent, err = strconv.ParseInt(record[1], 10, 64)
		if err != nil || archiveParent < 0 {
			return nil, 0, 0, fmt.Errorf("invalid parent_id %q", record[1])
		}
	}

	createdAt, err := time.Parse(time.RFC3339, record[3])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("invalid created_at %q", record[3])
	}

	rating := 0
	if record[10] != "" {
		rating, err = strconv.Atoi(record[10])
		if err != nil {
			return nil, 0, 0, fmt.Errorf("invalid rating %q", record[10])
		}
	}

	statusValue, err := strconv.Atoi(record[11])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("invalid status %q", record[11])
	}
	status := comments.Status(statusValue)
	if !status.Valid() {
		return nil, 0, 0, fmt.Errorf("unknown status %d", statusValue)
	}

	return &comments.Comment{
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
		PageURI:     strings.Trim(record[2], "/"),
		Author:      record[4],
		AuthorEmail: record[5],
		AuthorURL:   record[6],
		AuthorIP:    record[7],
		AuthorAgent: record[8],
		Username:    record[9],
		Rating:      rating,
		Status:      status,
		Text:        record[12],
	}, archiveID, archiveParent, nil
}
