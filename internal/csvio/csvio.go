// Package csvio reads and writes the CSV flat file shared by the
// ingest and analyze commands.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pcranston/tubepulse/pkg/engage"
	"github.com/pcranston/tubepulse/pkg/video"
)

// ReadRows decodes header-keyed CSV into raw rows. Unknown columns are
// carried through untouched and rows shorter than the header leave the
// missing fields unset; structural validation happens downstream in
// the loader.
func ReadRows(r io.Reader) ([]video.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows []video.RawRow
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+1, err)
		}

		row := make(video.RawRow, len(header))
		for i, name := range header {
			if i < len(fields) {
				row[name] = fields[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// WriteRows encodes raw rows in the canonical column order. Fields a
// row does not carry come out as empty cells.
func WriteRows(w io.Writer, rows []video.RawRow) error {
	cw := csv.NewWriter(w)
	cols := video.Columns()

	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(cols))
	for _, row := range rows {
		for i, name := range cols {
			record[i] = row[name]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteRanking writes an analysis result as CSV, one row per video in
// rank order with the derived score and classification.
func WriteRanking(w io.Writer, videos []engage.ScoredVideo) error {
	cw := csv.NewWriter(w)

	header := []string{
		"rank",
		video.FieldID,
		video.FieldTitle,
		"content_type",
		"engagement_score",
		video.FieldViews,
		video.FieldLikes,
		video.FieldComments,
		video.FieldShares,
		video.FieldTags,
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write ranking header: %w", err)
	}

	for i, sv := range videos {
		record := []string{
			strconv.Itoa(i + 1),
			sv.ID,
			sv.Title,
			string(sv.ContentType),
			strconv.FormatFloat(sv.EngagementScore, 'f', 6, 64),
			strconv.FormatInt(sv.ViewCount, 10),
			strconv.FormatInt(sv.LikeCount, 10),
			strconv.FormatInt(sv.CommentCount, 10),
			strconv.FormatInt(sv.ShareCount, 10),
			video.JoinTags(sv.Tags),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write ranking row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
