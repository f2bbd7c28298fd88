package model

// DBKey addresses a single entry: a suffix within a bucket
type DBKey interface {
	Bytes() []byte
	Bucket() DBBucket
	Suffix() []byte
}

// DBBucket is a key prefix that groups the entries of one store
type DBBucket interface {
	Bucket(bucketBytes []byte) DBBucket
	Key(suffix []byte) DBKey
	Path() []byte
}

// DBCursor walks the entries of a single bucket in key order.
// All the methods except Close panic once the cursor is closed.
type DBCursor interface {
	// First positions the cursor on the first entry of the bucket and
	// reports whether there is one.
	First() bool

	// Next advances the cursor and reports whether it still points at an
	// entry.
	Next() bool

	// Key returns the key under the cursor. The returned bytes are only
	// valid until the cursor moves.
	Key() (DBKey, error)

	// Value returns the value under the cursor. The returned bytes are
	// only valid until the cursor moves.
	Value() ([]byte, error)

	Close() error
}

// DBReader is the read side of the ledger database
type DBReader interface {
	// Get returns the value stored under key, or an error satisfying
	// database.IsNotFoundError.
	Get(key DBKey) ([]byte, error)

	Has(key DBKey) (bool, error)

	Cursor(bucket DBBucket) (DBCursor, error)
}

// DBWriter adds mutation to DBReader
type DBWriter interface {
	DBReader

	// Put overwrites whatever is stored under key
	Put(key DBKey, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key DBKey) error
}

// DBTransaction is a DBWriter whose writes become visible only on Commit
type DBTransaction interface {
	DBWriter

	Commit() error
	Rollback() error

	// RollbackUnlessClosed is a Rollback that does nothing when the
	// transaction was already committed or rolled back. It is meant for
	// defer.
	RollbackUnlessClosed() error
}

// DBManager is the database handle the stores are built on
type DBManager interface {
	DBWriter

	Begin() (DBTransaction, error)
}
