// Package database provides the key-value storage abstraction the chain
// store is built on, backed by goleveldb.
package database

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Database is the minimal key-value contract the chain store needs.
type Database interface {
	Put(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Delete(key []byte) error
	// Prefix returns the values of every key starting with prefix, in key
	// order.
	Prefix(prefix []byte) ([][]byte, error)
	Close() error
}

// LDB is a Database backed by an on-disk goleveldb instance.
type LDB struct {
	db *leveldb.DB
}

// New opens (creating if necessary) a goleveldb database at path. Any open
// error is deferred: Put/Get/Has/Delete/Prefix report ErrNotFound rather
// than panicking, matching the rest of this package's error-is-a-value
// style, and Close returns nil.
func New(path string) *LDB {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return &LDB{db: nil}
	}
	return &LDB{db: db}
}

func (l *LDB) checkOpen() error {
	if l.db == nil {
		return errors.ErrNotFound
	}
	return nil
}

// Put stores value under key.
func (l *LDB) Put(key, value []byte) error {
	if err := l.checkOpen(); err != nil {
		return err
	}
	return l.db.Put(key, value, nil)
}

// Get returns the value stored under key, or ErrNotFound.
func (l *LDB) Get(key []byte) ([]byte, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}
	return l.db.Get(key, nil)
}

// Has reports whether key is present.
func (l *LDB) Has(key []byte) (bool, error) {
	if err := l.checkOpen(); err != nil {
		return false, err
	}
	return l.db.Has(key, nil)
}

// Delete removes key, if present.
func (l *LDB) Delete(key []byte) error {
	if err := l.checkOpen(); err != nil {
		return err
	}
	return l.db.Delete(key, nil)
}

// Prefix returns the values of every key starting with prefix.
func (l *LDB) Prefix(prefix []byte) ([][]byte, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}
	iter := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var values [][]byte
	for iter.Next() {
		v := make([]byte, len(iter.Value()))
		copy(v, iter.Value())
		values = append(values, v)
	}
	return values, iter.Error()
}

// Close releases the underlying database.
func (l *LDB) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}
