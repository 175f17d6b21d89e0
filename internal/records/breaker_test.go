package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dctmd-mcp-server/internal/domain"
)

// flakyStore fails every call with err when set
type flakyStore struct {
	err   error
	calls int
}

func (f *flakyStore) SaveRecord(context.Context, *domain.PatientRecord) error {
	f.calls++
	return f.err
}

func (f *flakyStore) GetRecord(_ context.Context, id string) (*domain.PatientRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.PatientRecord{ID: id, Data: domain.Map(nil)}, nil
}

func (f *flakyStore) DeleteRecord(context.Context, string) error {
	f.calls++
	return f.err
}

func (f *flakyStore) ListRecordIDs(context.Context, int) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []string{"a"}, nil
}

func (f *flakyStore) Close() error { return nil }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestBreakerStore_PassesThrough(t *testing.T) {
	inner := &flakyStore{}
	store := NewBreakerStore(inner, BreakerConfig{OpTimeout: time.Second}, quietLogger())
	ctx := context.Background()

	record, err := store.GetRecord(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", record.ID)

	ids, err := store.ListRecordIDs(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	require.NoError(t, store.SaveRecord(ctx, &domain.PatientRecord{ID: "a"}))
	require.NoError(t, store.DeleteRecord(ctx, "a"))
	assert.Equal(t, 4, inner.calls)
}

func TestBreakerStore_TripsOnFailures(t *testing.T) {
	inner := &flakyStore{err: errors.New("connection refused")}
	store := NewBreakerStore(inner, BreakerConfig{MaxFailures: 2, Timeout: time.Minute}, quietLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := store.GetRecord(ctx, "a")
		assert.ErrorContains(t, err, "connection refused")
	}
	assert.Equal(t, gobreaker.StateOpen, store.State())

	_, err := store.GetRecord(ctx, "a")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, inner.calls, "open breaker should not reach the store")
}

func TestBreakerStore_NotFoundIsNotAFailure(t *testing.T) {
	inner := &flakyStore{err: fmt.Errorf("record x: %w", domain.ErrNotFound)}
	store := NewBreakerStore(inner, BreakerConfig{MaxFailures: 1}, nil)

	for i := 0; i < 3; i++ {
		_, err := store.GetRecord(context.Background(), "x")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, store.State())
}
