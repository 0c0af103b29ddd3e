package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/viking"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ viking.RecordService = (*RecordService)(nil)

// RecordService implements viking.RecordService using SQLite.
type RecordService struct {
	db *DB

	// Now returns the extraction timestamp for new records.
	Now func() time.Time
}

// NewRecordService creates a new RecordService.
func NewRecordService(db *DB) *RecordService {
	return &RecordService{db: db, Now: time.Now}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	var b [8]byte
	h := xxhash.Sum64String(content)
	for i := range b {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b[:])
}

// contentHash identifies the input a record was built from. Records saved
// without markup are identified by their result instead.
func contentHash(rec *viking.Record) (string, error) {
	if rec.HTML != "" {
		return hashContent(rec.HTML), nil
	}
	data, err := json.Marshal(rec.Result)
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return hashContent(string(data)), nil
}

// CreateRecord stores a new record and its links in one transaction.
func (s *RecordService) CreateRecord(ctx context.Context, rec *viking.Record) error {
	if rec.Result == nil {
		return viking.Errorf(viking.EINVALID, "record result required")
	}
	if err := rec.Result.Validate(); err != nil {
		return err
	}

	hash, err := contentHash(rec)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var latest string
	err = tx.QueryRowContext(ctx, `
		SELECT content_hash FROM records
		WHERE page_url = ?
		ORDER BY extracted_at DESC, rowid DESC
		LIMIT 1
	`, rec.Result.PageURL).Scan(&latest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if latest == hash {
		return viking.Errorf(viking.ECONFLICT, "page %s unchanged since last extraction", rec.Result.PageURL)
	}

	id := uuid.New().String()
	extractedAt := s.Now().UTC()
	r := rec.Result

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO records (id, page_url, file_id, file_name, file_size, upload_date, html, content_hash, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, r.PageURL, r.FileID, nullString(r.FileName), nullString(r.FileSize), nullString(r.UploadDate),
		rec.HTML, hash, formatTime(extractedAt)); err != nil {
		return err
	}

	for i, link := range r.DownloadLinks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO links (record_id, position, url, source, quality, file_size, file_type, size_bytes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, id, i, link.URL, link.Source, nullString(link.Quality), nullString(link.FileSize),
			nullString(link.FileType), sizeBytes(link.FileSize)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	rec.ID = id
	rec.ContentHash = hash
	rec.ExtractedAt = extractedAt
	return nil
}

const recordColumns = "id, page_url, file_id, file_name, file_size, upload_date, html, content_hash, extracted_at"

// FindRecordByID retrieves a record by ID.
func (s *RecordService) FindRecordByID(ctx context.Context, id string) (*viking.Record, error) {
	recs, err := s.FindRecords(ctx, viking.RecordFilter{ID: &id, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, viking.Errorf(viking.ENOTFOUND, "record not found")
	}
	return recs[0], nil
}

// FindRecords retrieves records matching the filter, newest first.
func (s *RecordService) FindRecords(ctx context.Context, filter viking.RecordFilter) ([]*viking.Record, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + recordColumns + " FROM records r WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.FileID != nil {
		query.WriteString(" AND file_id = ?")
		args = append(args, *filter.FileID)
	}
	if filter.PageURL != nil {
		query.WriteString(" AND page_url = ?")
		args = append(args, *filter.PageURL)
	}
	if filter.Source != nil {
		query.WriteString(" AND EXISTS (SELECT 1 FROM links l WHERE l.record_id = r.id AND l.source = ?)")
		args = append(args, *filter.Source)
	}

	query.WriteString(" ORDER BY extracted_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	recs, err := s.queryRecords(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}

	// Links are loaded after the record rows are closed: the pool has a
	// single connection.
	for _, rec := range recs {
		if rec.Result.DownloadLinks, err = s.findLinks(ctx, rec.ID); err != nil {
			return nil, err
		}
	}

	return recs, nil
}

func (s *RecordService) queryRecords(ctx context.Context, query string, args ...any) ([]*viking.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []*viking.Record{}
	for rows.Next() {
		var rec viking.Record
		var r viking.ExtractionResult
		var fileName, fileSize, uploadDate sql.NullString
		var extractedAt string

		if err := rows.Scan(&rec.ID, &r.PageURL, &r.FileID, &fileName, &fileSize, &uploadDate,
			&rec.HTML, &rec.ContentHash, &extractedAt); err != nil {
			return nil, err
		}

		r.FileName = stringPtr(fileName)
		r.FileSize = stringPtr(fileSize)
		r.UploadDate = stringPtr(uploadDate)
		if rec.ExtractedAt, err = parseTime(extractedAt, "extracted_at"); err != nil {
			return nil, err
		}

		rec.Result = &r
		recs = append(recs, &rec)
	}

	return recs, rows.Err()
}

func (s *RecordService) findLinks(ctx context.Context, recordID string) ([]viking.DownloadLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, source, quality, file_size, file_type
		FROM links
		WHERE record_id = ?
		ORDER BY position ASC
	`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []viking.DownloadLink{}
	for rows.Next() {
		var link viking.DownloadLink
		var quality, fileSize, fileType sql.NullString
		if err := rows.Scan(&link.URL, &link.Source, &quality, &fileSize, &fileType); err != nil {
			return nil, err
		}
		link.Quality = stringPtr(quality)
		link.FileSize = stringPtr(fileSize)
		link.FileType = stringPtr(fileType)
		links = append(links, link)
	}

	return links, rows.Err()
}

// DeleteRecord permanently removes a record. Its links are removed by the
// foreign key cascade.
func (s *RecordService) DeleteRecord(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return viking.Errorf(viking.ENOTFOUND, "record not found")
	}

	return nil
}

// latestRecords selects the newest record of every page.
const latestRecords = `
	WITH latest AS (
		SELECT id FROM records r
		WHERE r.rowid = (
			SELECT r2.rowid FROM records r2
			WHERE r2.page_url = r.page_url
			ORDER BY r2.extracted_at DESC, r2.rowid DESC
			LIMIT 1
		)
	)
`

// SourceStats summarizes the links of the newest record of every page.
// Sources are ordered by the number of records carrying them.
func (s *RecordService) SourceStats(ctx context.Context) (*viking.Stats, error) {
	stats := &viking.Stats{Sources: []viking.SourceStat{}}

	if err := s.db.QueryRowContext(ctx, latestRecords+"SELECT COUNT(*) FROM latest").Scan(&stats.Records); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, latestRecords+`
		SELECT l.source, COUNT(DISTINCT l.record_id), COUNT(*), COALESCE(SUM(l.size_bytes), 0)
		FROM links l
		JOIN latest ON latest.id = l.record_id
		GROUP BY l.source
		ORDER BY COUNT(DISTINCT l.record_id) DESC, l.source ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var st viking.SourceStat
		var bytes int64
		if err := rows.Scan(&st.Source, &st.Records, &st.Links, &bytes); err != nil {
			return nil, err
		}
		st.Bytes = uint64(bytes)
		stats.Sources = append(stats.Sources, st)
	}

	return stats, rows.Err()
}
