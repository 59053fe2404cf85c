package ledgerSystem

import (
	"context"
	"errors"
	"fmt"

	"bridge-node/modules/common/codec"

	"github.com/ipfs/go-datastore"
	"github.com/spacemeshos/go-scale"
)

type stagedWrite struct {
	key   datastore.Key
	value []byte
}

// ledgerSession stages the writes of a single operation on top of the
// committed store. Reads see staged values first. Nothing reaches the
// store until commit, so an operation that fails part way leaves no trace.
type ledgerSession struct {
	ctx   context.Context
	store datastore.Read

	base   LedgerContext
	lc     LedgerContext
	writes []stagedWrite
	staged map[datastore.Key]int
	events []Event
}

func newLedgerSession(ctx context.Context, store datastore.Read, lc LedgerContext) *ledgerSession {
	return &ledgerSession{
		ctx:    ctx,
		store:  store,
		base:   lc,
		lc:     lc,
		staged: make(map[datastore.Key]int),
	}
}

func (session *ledgerSession) get(key datastore.Key) ([]byte, bool, error) {
	if idx, ok := session.staged[key]; ok {
		return session.writes[idx].value, true, nil
	}
	value, err := session.store.Get(session.ctx, key)
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

func (session *ledgerSession) put(key datastore.Key, value []byte) {
	if idx, ok := session.staged[key]; ok {
		session.writes[idx].value = value
		return
	}
	session.staged[key] = len(session.writes)
	session.writes = append(session.writes, stagedWrite{key, value})
}

// load decodes the value under key into v. Missing keys report false.
func (session *ledgerSession) load(key datastore.Key, v scale.Decodable) (bool, error) {
	raw, ok, err := session.get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := codec.Decode(raw, v); err != nil {
		return false, err
	}
	return true, nil
}

func (session *ledgerSession) loadUint64(key datastore.Key) (uint64, bool, error) {
	raw, ok, err := session.get(key)
	if err != nil || !ok {
		return 0, false, err
	}
	v, err := codec.DecodeUint64(raw)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// insert stages an append-only record.
func (session *ledgerSession) insert(key datastore.Key, v scale.Encodable) error {
	_, exists, err := session.get(key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrStateExists, key)
	}
	raw, err := codec.Encode(v)
	if err != nil {
		return err
	}
	session.put(key, raw)
	return nil
}

func (session *ledgerSession) putUint64(key datastore.Key, v uint64) error {
	raw, err := codec.EncodeUint64(v)
	if err != nil {
		return err
	}
	session.put(key, raw)
	return nil
}

func (session *ledgerSession) emit(event Event) {
	session.events = append(session.events, event)
}

func (session *ledgerSession) dirty() bool {
	return len(session.writes) > 0 || session.lc != session.base
}

// stageContext writes the ledger context counters that changed.
func (session *ledgerSession) stageContext() error {
	if session.lc.Initialized && !session.base.Initialized {
		session.put(initKey, []byte{1})
	}
	counters := []struct {
		key       datastore.Key
		was, next uint64
	}{
		{globalNonceKey, session.base.GlobalNonce, session.lc.GlobalNonce},
		{tokenNonceKey, session.base.LastTokenNonce, session.lc.LastTokenNonce},
		{dataNonceKey, session.base.LastDataNonce, session.lc.LastDataNonce},
	}
	for _, c := range counters {
		// initialization persists every counter, even zero ones
		if c.was == c.next && session.base.Initialized {
			continue
		}
		if err := session.putUint64(c.key, c.next); err != nil {
			return err
		}
	}
	return nil
}

// commit flushes every staged write in one batch. The undo journal is
// written first and dropped last; if anything in between fails the batch
// is rolled back before commit returns.
func (session *ledgerSession) commit(store datastore.Batching) error {
	if err := session.stageContext(); err != nil {
		return err
	}
	journal, err := session.undoJournal()
	if err != nil {
		return err
	}
	raw, err := codec.Encode(journal)
	if err != nil {
		return err
	}
	if err := store.Put(session.ctx, journalKey, raw); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	if err := session.apply(store); err != nil {
		return errors.Join(err, rollback(session.ctx, store, journal))
	}
	if err := store.Delete(session.ctx, journalKey); err != nil {
		err = fmt.Errorf("drop journal: %w", err)
		return errors.Join(err, rollback(session.ctx, store, journal))
	}
	return nil
}

func (session *ledgerSession) apply(store datastore.Batching) error {
	batch, err := store.Batch(session.ctx)
	if err != nil {
		return fmt.Errorf("open batch: %w", err)
	}
	for _, w := range session.writes {
		if err := batch.Put(session.ctx, w.key, w.value); err != nil {
			return fmt.Errorf("stage %s: %w", w.key, err)
		}
	}
	if err := batch.Commit(session.ctx); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// loadLedgerContext reads the persisted counters. A fresh store yields the
// zero context.
func loadLedgerContext(ctx context.Context, store datastore.Read) (LedgerContext, error) {
	session := newLedgerSession(ctx, store, LedgerContext{})
	var lc LedgerContext

	_, initialized, err := session.get(initKey)
	if err != nil {
		return lc, err
	}
	lc.Initialized = initialized

	for _, c := range []struct {
		key datastore.Key
		dst *uint64
	}{
		{globalNonceKey, &lc.GlobalNonce},
		{tokenNonceKey, &lc.LastTokenNonce},
		{dataNonceKey, &lc.LastDataNonce},
	} {
		v, _, err := session.loadUint64(c.key)
		if err != nil {
			return lc, err
		}
		*c.dst = v
	}
	return lc, nil
}
