// Package state keeps the client's local, non-secret bookkeeping in a bbolt
// file under the user's home directory: the advisory locked flag and a
// fallback token cache for systems without an OS keyring.
package state

import (
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketLocker  = []byte("locker")
	bucketSession = []byte("session")

	keyLocked  = []byte("is_locked")
	keyAccess  = []byte("access_token")
	keyRefresh = []byte("refresh_token")
)

type Store struct {
	db *bolt.DB
}

// DefaultPath returns ~/.cred/state.db, creating the directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".cred")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.db"), nil
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketLocker, bucketSession} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Locked reports the advisory locked flag. The flag only obscures the UI;
// losing or corrupting it never grants access to anything.
func (s *Store) Locked() bool {
	var locked bool
	_ = s.db.View(func(tx *bolt.Tx) error {
		locked = string(tx.Bucket(bucketLocker).Get(keyLocked)) == "1"
		return nil
	})
	return locked
}

func (s *Store) SetLocked(locked bool) {
	val := []byte("0")
	if locked {
		val = []byte("1")
	}
	_ = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketLocker).Put(keyLocked, val)
	})
}

func (s *Store) get(key []byte) (string, error) {
	var out string
	err := s.db.View(func(tx *bolt.Tx) error {
		out = string(tx.Bucket(bucketSession).Get(key))
		return nil
	})
	return out, err
}

func (s *Store) AccessToken() (string, error)  { return s.get(keyAccess) }
func (s *Store) RefreshToken() (string, error) { return s.get(keyRefresh) }

func (s *Store) SetTokens(access, refresh string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if err := b.Put(keyAccess, []byte(access)); err != nil {
			return err
		}
		return b.Put(keyRefresh, []byte(refresh))
	})
}

func (s *Store) ClearTokens() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if err := b.Delete(keyAccess); err != nil {
			return err
		}
		return b.Delete(keyRefresh)
	})
}
