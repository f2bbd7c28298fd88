// Package contentstore keeps published payloads in the node database,
// addressed by the hash of their content.
package contentstore

import (
	"context"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashes"
	"github.com/FranklinWaller/Rutile/infrastructure/db/database"
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
	"github.com/pkg/errors"
)

var log = logger.RegisterSubSystem("CNTS")

var bucket = database.MakeBucket([]byte("content"))

// ContentStore is a model.BinaryPublisher over a database
type ContentStore struct {
	db database.DataAccessor
}

// New returns a ContentStore that keeps its payloads in db
func New(db database.DataAccessor) *ContentStore {
	return &ContentStore{db: db}
}

// ContentID returns the identifier payload is published under
func ContentID(payload []byte) string {
	writer := hashes.NewContentIDWriter()
	writer.InfallibleWrite(payload)
	return writer.Finalize().String()
}

// Publish stores payload and returns its content identifier. Publishing the
// same payload twice is a no-op.
func (cs *ContentStore) Publish(ctx context.Context, payload []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.WithStack(err)
	}

	contentID := ContentID(payload)
	key := bucket.Key([]byte(contentID))
	exists, err := cs.db.Has(key)
	if err != nil {
		return "", err
	}
	if exists {
		log.Debugf("Content %s is already published", contentID)
		return contentID, nil
	}

	err = cs.db.Put(key, payload)
	if err != nil {
		return "", err
	}
	log.Debugf("Published %d bytes as %s", len(payload), contentID)
	return contentID, nil
}

// Content returns the payload published under contentID
func (cs *ContentStore) Content(contentID string) ([]byte, error) {
	_, err := externalapi.NewDomainHashFromString(contentID)
	if err != nil {
		return nil, errors.Wrapf(err, "malformed content ID %q", contentID)
	}
	return cs.db.Get(bucket.Key([]byte(contentID)))
}
