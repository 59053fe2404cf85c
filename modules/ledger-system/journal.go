package ledgerSystem

import (
	"context"
	"errors"
	"fmt"

	"bridge-node/modules/common/codec"

	"github.com/ipfs/go-datastore"
	"github.com/spacemeshos/go-scale"
)

// Not every backend applies a batch atomically: flatfs renames one file at
// a time and stops at the first failure. Before a batch is applied the
// previous value of every key it touches is saved under journalKey with a
// single put. A journal that is still present means the batch may be half
// applied, and rolling it back restores the store to the last complete
// operation.
const (
	maxJournalKey   = 1 << 10
	maxJournalValue = 1 << 26
)

type undoEntry struct {
	Key     datastore.Key
	Present bool
	Value   []byte
}

type undoJournal struct {
	Entries []undoEntry
}

func (j *undoJournal) EncodeScale(enc *scale.Encoder) (total int, err error) {
	n, err := scale.EncodeCompact32(enc, uint32(len(j.Entries)))
	if err != nil {
		return total, err
	}
	total += n
	for _, e := range j.Entries {
		n, err = scale.EncodeByteSliceWithLimit(enc, e.Key.Bytes(), maxJournalKey)
		if err != nil {
			return total, err
		}
		total += n
		n, err = scale.EncodeBool(enc, e.Present)
		if err != nil {
			return total, err
		}
		total += n
		n, err = scale.EncodeByteSliceWithLimit(enc, e.Value, maxJournalValue)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (j *undoJournal) DecodeScale(dec *scale.Decoder) (total int, err error) {
	count, n, err := scale.DecodeCompact32(dec)
	if err != nil {
		return total, err
	}
	total += n
	j.Entries = make([]undoEntry, 0, count)
	for range count {
		var e undoEntry
		key, n, err := scale.DecodeByteSliceWithLimit(dec, maxJournalKey)
		if err != nil {
			return total, err
		}
		total += n
		e.Key = datastore.RawKey(string(key))

		e.Present, n, err = scale.DecodeBool(dec)
		if err != nil {
			return total, err
		}
		total += n

		e.Value, n, err = scale.DecodeByteSliceWithLimit(dec, maxJournalValue)
		if err != nil {
			return total, err
		}
		total += n
		j.Entries = append(j.Entries, e)
	}
	return total, nil
}

// undoJournal captures the committed value of every staged key.
func (session *ledgerSession) undoJournal() (*undoJournal, error) {
	journal := &undoJournal{Entries: make([]undoEntry, 0, len(session.writes))}
	for _, w := range session.writes {
		value, err := session.store.Get(session.ctx, w.key)
		switch {
		case errors.Is(err, datastore.ErrNotFound):
			journal.Entries = append(journal.Entries, undoEntry{Key: w.key})
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", w.key, err)
		default:
			journal.Entries = append(journal.Entries, undoEntry{Key: w.key, Present: true, Value: value})
		}
	}
	return journal, nil
}

// rollback puts back every journaled value and drops the journal. It can
// run any number of times.
func rollback(ctx context.Context, store datastore.Write, journal *undoJournal) error {
	for _, e := range journal.Entries {
		var err error
		if e.Present {
			err = store.Put(ctx, e.Key, e.Value)
		} else {
			err = store.Delete(ctx, e.Key)
		}
		if err != nil {
			return fmt.Errorf("rollback %s: %w", e.Key, err)
		}
	}
	if err := store.Delete(ctx, journalKey); err != nil {
		return fmt.Errorf("drop journal: %w", err)
	}
	return nil
}

// recoverJournal rolls back a commit that did not finish. It reports
// whether a journal was found.
func recoverJournal(ctx context.Context, store datastore.Datastore) (bool, error) {
	raw, err := store.Get(ctx, journalKey)
	if errors.Is(err, datastore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read journal: %w", err)
	}
	var journal undoJournal
	if err := codec.Decode(raw, &journal); err != nil {
		return true, err
	}
	return true, rollback(ctx, store, &journal)
}
