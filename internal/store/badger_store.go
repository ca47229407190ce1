package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/models"
)

// maxConflictRetries bounds how often a write is retried after badger.ErrConflict.
const maxConflictRetries = 3

// BadgerConfig holds configuration for the badger-backed store.
type BadgerConfig struct {
	// Path is the directory for badger files. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// CollectionKey is the key the collection is stored under.
	CollectionKey string

	// GCInterval is how often value log GC runs. Zero disables it.
	GCInterval     time.Duration
	GCDiscardRatio float64
}

// DefaultBadgerConfig returns durable settings for a store at path.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{
		Path:           path,
		SyncWrites:     true,
		CollectionKey:  constants.FlightLogCollectionKey,
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryBadgerConfig returns settings for a throwaway store.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{
		InMemory:      true,
		CollectionKey: constants.FlightLogCollectionKey,
	}
}

// badgerLogger adapts zap to badger's Logger interface.
type badgerLogger struct {
	log *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.log.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.log.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.log.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.log.Debugf(format, args...) }

// BadgerStore keeps the flight log collection as one JSON value in badger.
type BadgerStore struct {
	db   *badger.DB
	key  []byte
	log  *zap.SugaredLogger
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

var _ RecordStore = (*BadgerStore)(nil)

// OpenBadgerStore opens the database and starts value log GC when configured.
func OpenBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger path is required for a persistent store")
	}
	if cfg.CollectionKey == "" {
		cfg.CollectionKey = constants.FlightLogCollectionKey
	}

	log := logging.Named("badger_store")

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{log: log})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	s := &BadgerStore{
		db:   db,
		key:  []byte(cfg.CollectionKey),
		log:  log,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	if cfg.GCInterval > 0 && !cfg.InMemory {
		go s.runGC(cfg.GCInterval, cfg.GCDiscardRatio)
	} else {
		close(s.done)
	}
	return s, nil
}

func (s *BadgerStore) runGC(interval time.Duration, ratio float64) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			// ErrNoRewrite only means nothing was worth collecting
			if err := s.db.RunValueLogGC(ratio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.log.Warnw("value log GC failed", "error", err)
			}
		}
	}
}

// Close stops GC and closes the database. Safe to call more than once.
func (s *BadgerStore) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		<-s.done
		err = s.db.Close()
	})
	return err
}

func (s *BadgerStore) load(txn *badger.Txn) ([]models.FlightLog, error) {
	item, err := txn.Get(s.key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return []models.FlightLog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}

	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("copy collection value: %w", err)
	}

	var records []models.FlightLog
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	if records == nil {
		records = []models.FlightLog{}
	}
	return records, nil
}

func (s *BadgerStore) save(txn *badger.Txn, records []models.FlightLog) error {
	if records == nil {
		records = []models.FlightLog{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	return txn.Set(s.key, raw)
}

// update runs fn in a read-write transaction, retrying on write conflicts.
func (s *BadgerStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func (s *BadgerStore) List(ctx context.Context) []models.FlightLog {
	var records []models.FlightLog
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		records, err = s.load(txn)
		return err
	})
	if err != nil {
		s.log.Warnw("flight log collection unreadable, serving empty list", "error", err)
		return []models.FlightLog{}
	}
	return records
}

func (s *BadgerStore) Get(ctx context.Context, id string) (models.FlightLog, bool) {
	for _, r := range s.List(ctx) {
		if r.ID == id {
			return r, true
		}
	}
	return models.FlightLog{}, false
}

func (s *BadgerStore) Put(ctx context.Context, record models.FlightLog) error {
	if record.ID == "" {
		return ErrMissingID
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		records, err := s.load(txn)
		if err != nil {
			return err
		}
		return s.save(txn, upsert(records, record))
	})
}

func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		records, err := s.load(txn)
		if err != nil {
			return err
		}
		return s.save(txn, remove(records, id))
	})
}

func (s *BadgerStore) Replace(ctx context.Context, records []models.FlightLog) error {
	for _, r := range records {
		if r.ID == "" {
			return ErrMissingID
		}
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		return s.save(txn, records)
	})
}

func (s *BadgerStore) Clear(ctx context.Context) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return txn.Delete(s.key)
	})
}

func (s *BadgerStore) Aggregate(ctx context.Context, pred models.RecordPredicate) []models.FlightLog {
	return Filter(s.List(ctx), pred)
}
