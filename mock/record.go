package mock

import (
	"context"

	"github.com/fwojciec/viking"
)

var _ viking.RecordService = (*RecordService)(nil)

// RecordService is a mock implementation of viking.RecordService.
type RecordService struct {
	CreateRecordFn   func(ctx context.Context, rec *viking.Record) error
	FindRecordByIDFn func(ctx context.Context, id string) (*viking.Record, error)
	FindRecordsFn    func(ctx context.Context, filter viking.RecordFilter) ([]*viking.Record, error)
	DeleteRecordFn   func(ctx context.Context, id string) error
	SourceStatsFn    func(ctx context.Context) (*viking.Stats, error)
}

func (s *RecordService) CreateRecord(ctx context.Context, rec *viking.Record) error {
	return s.CreateRecordFn(ctx, rec)
}

func (s *RecordService) FindRecordByID(ctx context.Context, id string) (*viking.Record, error) {
	return s.FindRecordByIDFn(ctx, id)
}

func (s *RecordService) FindRecords(ctx context.Context, filter viking.RecordFilter) ([]*viking.Record, error) {
	return s.FindRecordsFn(ctx, filter)
}

func (s *RecordService) DeleteRecord(ctx context.Context, id string) error {
	return s.DeleteRecordFn(ctx, id)
}

func (s *RecordService) SourceStats(ctx context.Context) (*viking.Stats, error) {
	return s.SourceStatsFn(ctx)
}

var _ viking.ResultStore = (*ResultStore)(nil)

// ResultStore is a mock implementation of viking.ResultStore.
type ResultStore struct {
	SaveFn func(ctx context.Context, path string, result *viking.ExtractionResult) error
	LoadFn func(ctx context.Context, path string) (*viking.ExtractionResult, error)
}

func (s *ResultStore) Save(ctx context.Context, path string, result *viking.ExtractionResult) error {
	return s.SaveFn(ctx, path, result)
}

func (s *ResultStore) Load(ctx context.Context, path string) (*viking.ExtractionResult, error) {
	return s.LoadFn(ctx, path)
}
