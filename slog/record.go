package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/viking"
)

var _ viking.RecordService = (*LoggingRecordService)(nil)

// LoggingRecordService logs writes to the result history. Reads are passed
// through unlogged.
type LoggingRecordService struct {
	viking.RecordService
	logger *slog.Logger
}

// NewLoggingRecordService creates a new LoggingRecordService.
func NewLoggingRecordService(next viking.RecordService, logger *slog.Logger) *LoggingRecordService {
	return &LoggingRecordService{RecordService: next, logger: logger}
}

// CreateRecord delegates to the wrapped service and logs the new record.
func (s *LoggingRecordService) CreateRecord(ctx context.Context, rec *viking.Record) (err error) {
	defer func(begin time.Time) {
		var url string
		var links int
		if rec.Result != nil {
			url, links = rec.Result.PageURL, len(rec.Result.DownloadLinks)
		}
		s.logger.Info("create record",
			"id", rec.ID,
			"url", url,
			"links", links,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.RecordService.CreateRecord(ctx, rec)
}

// DeleteRecord delegates to the wrapped service and logs the deletion.
func (s *LoggingRecordService) DeleteRecord(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete record",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.RecordService.DeleteRecord(ctx, id)
}
