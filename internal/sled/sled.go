// Package sled implements the spec §4.G second engine kind: a thin
// capability-interface wrapper around an externally provided embedded
// ordered-map engine. The teacher benchmarks raft-wal directly against
// go.etcd.io/bbolt in bench/bench_test.go, which makes bbolt the natural
// choice here: both are the B-tree the teacher already trusts as its
// own comparison baseline.
package sled

import (
	"path/filepath"
	"unicode/utf8"

	bolt "go.etcd.io/bbolt"

	"kvd/internal/engine"
)

var bucketName = []byte("kvd")

// Store is the "sled" engine façade. set is durable before Set returns
// (bolt.Update commits and fsyncs the transaction), Get returns bytes
// interpreted as UTF-8, and Remove surfaces KeyNotFound for an absent
// key - the full contract spec §4.G gives this engine kind.
type Store struct {
	db *bolt.DB
}

var _ engine.Engine = (*Store)(nil)

// Open opens (or creates) a bolt database file inside dir.
func Open(dir string) (*Store, error) {
	path := filepath.Join(dir, "sled.db")
	db, err := bolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, engine.IoError("open sled engine", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, engine.IoError("initialize sled bucket", err)
	}
	return &Store{db: db}, nil
}

// Clone returns a handle sharing the same underlying bolt.DB - bolt
// itself is already safe for concurrent use by multiple goroutines, so
// Clone is simply a cheap value copy.
func (s *Store) Clone() *Store {
	clone := *s
	return &clone
}

func (s *Store) Set(key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return engine.IoError("sled set", err)
	}
	return nil
}

func (s *Store) Get(key string) (string, bool, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return "", false, engine.IoError("sled get", err)
	}
	if value == nil {
		return "", false, nil
	}
	if !utf8.Valid(value) {
		return "", false, engine.SerdeError("sled value is not valid UTF-8", nil)
	}
	return string(value), true, nil
}

func (s *Store) Remove(key string) error {
	var had bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get([]byte(key)) == nil {
			return nil
		}
		had = true
		return b.Delete([]byte(key))
	})
	if err != nil {
		return engine.IoError("sled remove", err)
	}
	if !had {
		return engine.KeyNotFound(key)
	}
	return nil
}

func (s *Store) Kind() engine.Kind { return engine.KindSled }

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return engine.IoError("close sled engine", err)
	}
	return nil
}
