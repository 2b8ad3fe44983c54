package storage

import (
	"time"

	"go.uber.org/zap"
)

type StoreOption func(*Store)

func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimestampField stamps records created in collName with the current time
// under field when the caller did not supply one
func WithTimestampField(collName, field string) StoreOption {
	return func(s *Store) {
		s.timestampFields[collName] = field
	}
}

// WithIDGenerator replaces the default UUID generator
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithClock replaces time.Now, mainly for tests
func WithClock(fn func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = fn
	}
}

// WithSnapshotFile sets the file used by Save and the background saver
func WithSnapshotFile(path string) StoreOption {
	return func(s *Store) {
		s.snapshotFile = path
	}
}

func WithBackgroundSave(interval time.Duration) StoreOption {
	return func(s *Store) {
		s.backgroundSave = interval > 0
		s.saveInterval = interval
	}
}
