package kv

import (
	"encoding/base32"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"bridge-node/lib/logger"
	"bridge-node/lib/utils"
	a "bridge-node/modules/aggregate"

	"github.com/chebyrash/promise"
	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	badger "github.com/ipfs/go-ds-badger2"
	flatfs "github.com/ipfs/go-ds-flatfs"
)

const (
	Memory = "memory"
	FlatFS = "flatfs"
	Badger = "badger"
)

var ErrUnknownBackend = errors.New("unknown store backend")

var keyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Key maps a logical, slash separated key onto a single segment datastore
// key. flatfs only accepts [A-Z0-9+-_=] names, so every backend gets the
// same base32 form to keep stores portable between backends.
func Key(parts ...string) datastore.Key {
	return datastore.NewKey(keyEncoding.EncodeToString([]byte(strings.Join(parts, "/"))))
}

// LogicalKey reverses Key.
func LogicalKey(k datastore.Key) (string, error) {
	b, err := keyEncoding.DecodeString(strings.TrimPrefix(k.String(), "/"))
	if err != nil {
		return "", fmt.Errorf("malformed store key %s: %w", k, err)
	}
	return string(b), nil
}

// Store owns the lifetime of the datastore backend. It is usable once Init
// has returned.
type Store struct {
	datastore.Batching

	backend string
	dir     string
	log     logger.Logger
}

var _ a.Plugin = &Store{}

func New(backend string, dataDir string, log logger.Logger) *Store {
	return &Store{
		backend: backend,
		dir:     dataDir,
		log:     log,
	}
}

// NewMemory returns an initialized in-memory store.
func NewMemory() *Store {
	s := New(Memory, "", logger.Nop())
	s.Batching = dssync.MutexWrap(datastore.NewMapDatastore())
	return s
}

func (s *Store) Backend() string {
	return s.backend
}

// Init implements aggregate.Plugin.
func (s *Store) Init() error {
	if s.Batching != nil {
		return nil
	}
	ds, err := Open(s.backend, s.dir)
	if err != nil {
		return err
	}
	s.Batching = ds
	s.log.Debug("store opened", "backend", s.backend, "dir", s.dir)
	return nil
}

// Start implements aggregate.Plugin.
func (s *Store) Start() *promise.Promise[any] {
	return utils.PromiseResolve[any](nil)
}

// Stop implements aggregate.Plugin.
func (s *Store) Stop() error {
	if s.Batching == nil {
		return nil
	}
	err := s.Batching.Close()
	s.Batching = nil
	return err
}

// Open creates the datastore for backend rooted under dataDir.
func Open(backend string, dataDir string) (datastore.Batching, error) {
	switch backend {
	case Memory, "":
		return dssync.MutexWrap(datastore.NewMapDatastore()), nil
	case FlatFS:
		dir := path.Join(dataDir, "flatfs")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		// uses default sharding
		fs, err := flatfs.CreateOrOpen(dir, flatfs.NextToLast(2), true)
		if err != nil {
			return nil, fmt.Errorf("failed to open flatfs store at %s: %w", dir, err)
		}
		return fs, nil
	case Badger:
		dir := path.Join(dataDir, "badger")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		ds, err := badger.NewDatastore(dir, &badger.DefaultOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store at %s: %w", dir, err)
		}
		return ds, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
