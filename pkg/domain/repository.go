package domain

import "context"

// RecordCheck validates a record before a repository stores it
type RecordCheck func(Record) error

// Repository defines the storage contract every resource endpoint consumes.
// Implementations own concurrency; the list query engine only ever sees the
// snapshot returned by List.
type Repository interface {
	// List returns a copy of every record in the collection, in collection order
	List(ctx context.Context, collName string) ([]Record, error)
	Get(ctx context.Context, collName, id string) (Record, error)
	Create(ctx context.Context, collName string, rec Record) (Record, error)
	// Update merges patch into the stored record and returns the result. The
	// checks run on the merged record before it is stored, atomically with the
	// write; the first failing check aborts the update.
	Update(ctx context.Context, collName, id string, patch Record, checks ...RecordCheck) (Record, error)
	Delete(ctx context.Context, collName, id string) error
}
