package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/boltdb/bolt"

	"dental-clinic/internal/models"
)

var (
	dentistsBucket     = []byte("dentists")
	registrationBucket = []byte("dentists_by_registration")
)

// BoltStore keeps dentists in a local bolt file: gob values keyed by a
// big-endian id, plus a registration number index.
type BoltStore struct {
	DB  *bolt.DB
	now func() time.Time
}

func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(dentistsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(registrationBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{DB: db, now: time.Now}, nil
}

func (s *BoltStore) Close() error {
	return s.DB.Close()
}

func (s *BoltStore) Create(ctx context.Context, d *models.Dentist) (*models.Dentist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := d.Clone()
	err := s.DB.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(dentistsBucket)
		index := tx.Bucket(registrationBucket)
		if index.Get([]byte(c.RegistrationNumber)) != nil {
			return ErrDuplicateRegistration
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		c.ID = int64(seq)
		c.CreatedAt = s.now().UTC()
		c.UpdatedAt = c.CreatedAt

		value, err := serialize(c)
		if err != nil {
			return err
		}
		if err := index.Put([]byte(c.RegistrationNumber), idToBytes(c.ID)); err != nil {
			return err
		}
		return bucket.Put(idToBytes(c.ID), value)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *BoltStore) Get(ctx context.Context, id int64) (*models.Dentist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var d *models.Dentist
	err := s.DB.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(dentistsBucket).Get(idToBytes(id))
		if value == nil {
			return ErrNotFound
		}
		var err error
		d, err = deserialize(value)
		return err
	})
	return d, err
}

func (s *BoltStore) Update(ctx context.Context, d *models.Dentist) (*models.Dentist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := d.Clone()
	err := s.DB.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(dentistsBucket)
		index := tx.Bucket(registrationBucket)

		value := bucket.Get(idToBytes(c.ID))
		if value == nil {
			return ErrNotFound
		}
		current, err := deserialize(value)
		if err != nil {
			return err
		}
		if owner := index.Get([]byte(c.RegistrationNumber)); owner != nil && !bytes.Equal(owner, idToBytes(c.ID)) {
			return ErrDuplicateRegistration
		}

		c.CreatedAt = current.CreatedAt
		c.UpdatedAt = s.now().UTC()
		if current.RegistrationNumber != c.RegistrationNumber {
			if err := index.Delete([]byte(current.RegistrationNumber)); err != nil {
				return err
			}
		}
		if err := index.Put([]byte(c.RegistrationNumber), idToBytes(c.ID)); err != nil {
			return err
		}
		encoded, err := serialize(c)
		if err != nil {
			return err
		}
		return bucket.Put(idToBytes(c.ID), encoded)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *BoltStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.DB.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(dentistsBucket)
		value := bucket.Get(idToBytes(id))
		if value == nil {
			return ErrNotFound
		}
		current, err := deserialize(value)
		if err != nil {
			return err
		}
		if err := tx.Bucket(registrationBucket).Delete([]byte(current.RegistrationNumber)); err != nil {
			return err
		}
		return bucket.Delete(idToBytes(id))
	})
}

func (s *BoltStore) List(ctx context.Context) ([]*models.Dentist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*models.Dentist
	err := s.DB.View(func(tx *bolt.Tx) error {
		return tx.Bucket(dentistsBucket).ForEach(func(_, value []byte) error {
			d, err := deserialize(value)
			if err != nil {
				return err
			}
			out = append(out, d)
			return nil
		})
	})
	return out, err
}

func idToBytes(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func serialize(d *models.Dentist) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deserialize(value []byte) (*models.Dentist, error) {
	var d models.Dentist
	if err := gob.NewDecoder(bytes.NewReader(value)).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}
