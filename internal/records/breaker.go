package records

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/dctmd-mcp-server/internal/domain"
)

// BreakerConfig configures the circuit breaker around a remote record store
type BreakerConfig struct {
	Name        string
	MaxFailures uint32
	Timeout     time.Duration // open-state duration before a half-open probe
	OpTimeout   time.Duration // per-operation deadline, 0 disables
}

// BreakerStore guards a RecordStore with a circuit breaker and per-operation timeouts.
// Lookups that miss (ErrNotFound) and rejected input do not count as failures.
type BreakerStore struct {
	next      domain.RecordStore
	breaker   *gobreaker.CircuitBreaker
	opTimeout time.Duration
}

// NewBreakerStore wraps next
func NewBreakerStore(next domain.RecordStore, config BreakerConfig, logger *logrus.Logger) *BreakerStore {
	if config.Name == "" {
		config.Name = "records"
	}
	if config.MaxFailures == 0 {
		config.MaxFailures = 5
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			var ve *domain.ValidationError
			return err == nil || errors.Is(err, domain.ErrNotFound) || errors.As(err, &ve)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Record store circuit breaker changed state")
		},
	}

	return &BreakerStore{
		next:      next,
		breaker:   gobreaker.NewCircuitBreaker(settings),
		opTimeout: config.OpTimeout,
	}
}

// State reports the current breaker state
func (b *BreakerStore) State() gobreaker.State {
	return b.breaker.State()
}

func (b *BreakerStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.opTimeout)
}

// SaveRecord implements domain.RecordStore
func (b *BreakerStore) SaveRecord(ctx context.Context, record *domain.PatientRecord) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.next.SaveRecord(ctx, record)
	})
	return err
}

// GetRecord implements domain.RecordStore
func (b *BreakerStore) GetRecord(ctx context.Context, id string) (*domain.PatientRecord, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.next.GetRecord(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.PatientRecord), nil
}

// DeleteRecord implements domain.RecordStore
func (b *BreakerStore) DeleteRecord(ctx context.Context, id string) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.next.DeleteRecord(ctx, id)
	})
	return err
}

// ListRecordIDs implements domain.RecordStore
func (b *BreakerStore) ListRecordIDs(ctx context.Context, limit int) ([]string, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.next.ListRecordIDs(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// Close closes the wrapped store
func (b *BreakerStore) Close() error {
	return b.next.Close()
}
