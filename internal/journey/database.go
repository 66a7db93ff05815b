package journey

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	journeyBucket = []byte("journeys")
	claimBucket   = []byte("claims")
)

// DB defines the interface for database operations
type DB interface {
	SaveJourney(journey *Journey) error
	GetJourney(id string) (*Journey, error)
	ListJourneys() ([]*Journey, error)
	DeleteJourney(id string) error

	// CommitClaim saves claim and stamps each of its journeys with the
	// claim ID in a single transaction. It fails without writing anything
	// if a journey is missing or already belongs to a claim.
	CommitClaim(claim *Claim) error
	GetClaim(id string) (*Claim, error)
	ListClaims() ([]*Claim, error)

	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB opens (or creates) the database at path
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{journeyBucket, claimBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

func put(db *bbolt.DB, bucket []byte, id string, v any) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return putTx(tx, bucket, id, v)
	})
}

func putTx(tx *bbolt.Tx, bucket []byte, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", bucket, err)
	}
	return tx.Bucket(bucket).Put([]byte(id), data)
}

func get(db *bbolt.DB, bucket []byte, id string, v any) error {
	return db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%s %s: %w", bucket, id, ErrNotFound)
		}
		return json.Unmarshal(data, v)
	})
}

func list[T any](db *bbolt.DB, bucket []byte) ([]*T, error) {
	items := make([]*T, 0)
	err := db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, v []byte) error {
			var item T
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("unmarshaling %s %s: %w", bucket, k, err)
			}
			items = append(items, &item)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SaveJourney inserts or replaces a journey
func (b *BoltDB) SaveJourney(journey *Journey) error {
	return put(b.db, journeyBucket, journey.ID, journey)
}

// GetJourney retrieves a journey by ID
func (b *BoltDB) GetJourney(id string) (*Journey, error) {
	var journey Journey
	if err := get(b.db, journeyBucket, id, &journey); err != nil {
		return nil, err
	}
	return &journey, nil
}

// ListJourneys returns all journeys in key order
func (b *BoltDB) ListJourneys() ([]*Journey, error) {
	return list[Journey](b.db, journeyBucket)
}

// DeleteJourney removes a journey; deleting a missing ID is not an error
func (b *BoltDB) DeleteJourney(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(journeyBucket).Delete([]byte(id))
	})
}

// CommitClaim implements DB
func (b *BoltDB) CommitClaim(claim *Claim) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		journeys := tx.Bucket(journeyBucket)
		for _, id := range claim.JourneyIDs {
			data := journeys.Get([]byte(id))
			if data == nil {
				return fmt.Errorf("%s %s: %w", journeyBucket, id, ErrNotFound)
			}

			var journey Journey
			if err := json.Unmarshal(data, &journey); err != nil {
				return fmt.Errorf("unmarshaling %s %s: %w", journeyBucket, id, err)
			}
			if journey.ClaimID != "" {
				return fmt.Errorf("journey %s: %w", id, ErrAlreadyClaimed)
			}

			journey.ClaimID = claim.ID
			journey.UpdatedAt = claim.UpdatedAt
			if err := putTx(tx, journeyBucket, id, &journey); err != nil {
				return err
			}
		}
		return putTx(tx, claimBucket, claim.ID, claim)
	})
}

// GetClaim retrieves a claim by ID
func (b *BoltDB) GetClaim(id string) (*Claim, error) {
	var claim Claim
	if err := get(b.db, claimBucket, id, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

// ListClaims returns all claims in key order
func (b *BoltDB) ListClaims() ([]*Claim, error) {
	return list[Claim](b.db, claimBucket)
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
