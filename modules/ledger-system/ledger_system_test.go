package ledgerSystem

import (
	"context"
	"errors"
	"testing"

	"bridge-node/lib/hashing"
	"bridge-node/lib/logger"
	"bridge-node/modules/common/codec"
	"bridge-node/modules/common/common_types"
	"bridge-node/modules/db/kv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common_types.AccountID{0xa1}
	bob   = common_types.AccountID{0xb0}
	carol = common_types.AccountID{0xc4}
)

func bal(n uint64) common_types.Balance {
	return common_types.NewBalance(n)
}

func block(number uint64, values ...uint64) common_types.EthereumBlockRecord {
	record := common_types.EthereumBlockRecord{
		Header: common_types.EthereumHeader{
			Number: number,
			Hash:   common.BigToHash(common.Big1),
		},
	}
	for i, v := range values {
		record.Txs = append(record.Txs, common_types.EthereumTx{
			Nonce:            uint64(i),
			BlockNumber:      number,
			TransactionIndex: uint64(i),
			Value:            bal(v),
		})
	}
	return record
}

func newTestLedger(t *testing.T, store datastore.Batching) (*LedgerSystem, *EventLog) {
	t.Helper()
	if store == nil {
		store = kv.NewMemory()
	}
	events := &EventLog{}
	ls := New(store, hashing.Default, events, logger.Nop())
	require.NoError(t, ls.Init())
	return ls, events
}

// seeded runs the init / record / unlock sequence shared by most tests:
// init at 100, block 101 locking 5+7 for alice, alice unlocks 4.
func seeded(t *testing.T) (*LedgerSystem, *EventLog) {
	t.Helper()
	ctx := context.Background()
	ls, events := newTestLedger(t, nil)
	require.NoError(t, ls.Initialize(ctx, alice, block(100)))
	require.NoError(t, ls.RecordHeader(ctx, alice, block(101, 5, 7)))
	require.NoError(t, ls.Unlock(ctx, alice, bal(4)))
	events.Drain()
	return ls, events
}

func mustState(t *testing.T, ls *LedgerSystem, owner common_types.AccountID) common_types.AccountState {
	t.Helper()
	state, err := ls.CurrentState(context.Background(), owner)
	require.NoError(t, err)
	require.True(t, state.IsSome(), "expected state for %s", owner)
	return state.Unwrap()
}

func mustToken(t *testing.T, ls *LedgerSystem) common_types.TokenSupply {
	t.Helper()
	supply, err := ls.LatestToken(context.Background())
	require.NoError(t, err)
	require.True(t, supply.IsSome())
	return supply.Unwrap()
}

func TestLedgerLifecycle(t *testing.T) {
	ctx := context.Background()
	ls, events := newTestLedger(t, nil)
	tokenID := hashing.TokenID(hashing.Default)

	// initialize at block 100
	assert.NoError(t, ls.Initialize(ctx, alice, block(100)))
	assert.Equal(t, common_types.TokenSupply{ID: tokenID, Nonce: 0}, mustToken(t, ls))
	status, err := ls.Status(ctx)
	assert.NoError(t, err)
	assert.True(t, status.Initialized)
	assert.Equal(t, uint64(100), status.LastDataNonce)
	assert.Equal(t, uint64(0), status.GlobalNonce)
	assert.Equal(t, []Event{tokenUpdateEvent(100)}, events.Drain())

	none, err := ls.CurrentState(ctx, alice)
	assert.NoError(t, err)
	assert.True(t, none.IsNone(), "initialize creates no account state")

	// record block 101 with two deposits
	assert.NoError(t, ls.RecordHeader(ctx, alice, block(101, 5, 7)))
	assert.Equal(t, common_types.TokenSupply{ID: tokenID, Nonce: 1, Issued: bal(12)}, mustToken(t, ls))
	assert.Equal(t, common_types.AccountState{Nonce: 1, Token: tokenID, Owner: alice, Amount: bal(12)}, mustState(t, ls, alice))
	assert.Equal(t, []Event{tokenUpdateEvent(101), mintEvent(alice, bal(12))}, events.Drain())

	// alice unlocks 4
	assert.NoError(t, ls.Unlock(ctx, alice, bal(4)))
	assert.Equal(t, common_types.TokenSupply{ID: tokenID, Nonce: 2, Issued: bal(8)}, mustToken(t, ls))
	assert.Equal(t, uint64(2), mustState(t, ls, alice).Nonce)
	assert.Equal(t, bal(8), mustState(t, ls, alice).Amount)
	assert.Equal(t, []Event{burnEvent(alice, bal(8))}, events.Drain())

	// alice remits 3 to bob
	assert.NoError(t, ls.Remittance(ctx, alice, bob, bal(3)))
	assert.Equal(t, common_types.AccountState{Nonce: 3, Token: tokenID, Owner: alice, Amount: bal(5)}, mustState(t, ls, alice))
	assert.Equal(t, common_types.AccountState{Nonce: 1, Token: tokenID, Owner: bob, Amount: bal(3)}, mustState(t, ls, bob))
	assert.Equal(t, bal(8), mustToken(t, ls).Issued)
	assert.Equal(t, uint64(2), mustToken(t, ls).Nonce)
	assert.Equal(t, []Event{remitEvent(alice, bal(5), bob, bal(3))}, events.Drain())

	status, err = ls.Status(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), status.GlobalNonce)
	assert.Equal(t, uint64(2), status.LastTokenNonce)
	assert.Equal(t, uint64(101), status.LastDataNonce)
	assert.Equal(t, hashing.Blake2, status.Hasher)
}

func TestInitializeOnce(t *testing.T) {
	ctx := context.Background()
	ls, events := newTestLedger(t, nil)

	assert.NoError(t, ls.Initialize(ctx, alice, block(100)))
	events.Drain()

	err := ls.Initialize(ctx, bob, block(500))
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.Empty(t, events.Events())

	status, err := ls.Status(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(100), status.LastDataNonce)
}

func TestRequiresInitialization(t *testing.T) {
	ctx := context.Background()
	ls, events := newTestLedger(t, nil)

	assert.ErrorIs(t, ls.RecordHeader(ctx, alice, block(1, 5)), ErrNotInitialized)
	assert.ErrorIs(t, ls.Remittance(ctx, alice, bob, bal(0)), ErrNotInitialized)
	assert.ErrorIs(t, ls.Unlock(ctx, alice, bal(0)), ErrNotInitialized)
	assert.Empty(t, events.Events())

	supply, err := ls.LatestToken(ctx)
	assert.NoError(t, err)
	assert.True(t, supply.IsNone())
}

func TestRecordHeaderSequence(t *testing.T) {
	ctx := context.Background()
	ls, events := newTestLedger(t, nil)
	require.NoError(t, ls.Initialize(ctx, alice, block(100)))
	events.Drain()

	for _, number := range []uint64{100, 102, 99, 0} {
		err := ls.RecordHeader(ctx, alice, block(number, 1))
		assert.ErrorIs(t, err, ErrInvalidBlockSequence, "block %d", number)
	}
	assert.Empty(t, events.Events())
	assert.Equal(t, uint64(0), mustToken(t, ls).Nonce)

	assert.NoError(t, ls.RecordHeader(ctx, alice, block(101)))
	assert.NoError(t, ls.RecordHeader(ctx, bob, block(102, 3)))
	assert.ErrorIs(t, ls.RecordHeader(ctx, bob, block(102, 3)), ErrInvalidBlockSequence)

	record, err := ls.BlockAt(ctx, 102)
	assert.NoError(t, err)
	assert.True(t, record.IsSome())
	assert.Equal(t, bal(3), record.Unwrap().Txs[0].Value)
}

func TestRecordHeaderWithoutTransactions(t *testing.T) {
	ctx := context.Background()
	ls, events := newTestLedger(t, nil)
	require.NoError(t, ls.Initialize(ctx, alice, block(100)))
	events.Drain()

	assert.NoError(t, ls.RecordHeader(ctx, bob, block(101)))

	// an empty block still versions the supply and the caller
	assert.Equal(t, uint64(1), mustToken(t, ls).Nonce)
	assert.True(t, mustToken(t, ls).Issued.IsZero())
	assert.Equal(t, common_types.AccountState{Nonce: 1, Token: ls.TokenID(), Owner: bob}, mustState(t, ls, bob))
	assert.Equal(t, []Event{tokenUpdateEvent(101), mintEvent(bob, bal(0))}, events.Drain())
}

func TestRecordHeaderOverflow(t *testing.T) {
	ctx := context.Background()
	ceiling, err := common_types.ParseBalance("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	require.NoError(t, err)

	ls, _ := newTestLedger(t, nil)
	require.NoError(t, ls.Initialize(ctx, alice, block(100)))

	huge := block(101)
	huge.Txs = []common_types.EthereumTx{{Value: ceiling}, {Value: bal(1)}}
	assert.ErrorIs(t, ls.RecordHeader(ctx, alice, huge), ErrArithmeticOverflow)

	huge.Txs = []common_types.EthereumTx{{Value: ceiling}}
	assert.NoError(t, ls.RecordHeader(ctx, alice, huge))
	assert.ErrorIs(t, ls.RecordHeader(ctx, bob, block(102, 1)), ErrArithmeticOverflow)

	status, err := ls.Status(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(101), status.LastDataNonce)
}

func TestRemittanceSelfIsNoop(t *testing.T) {
	ctx := context.Background()
	ls, events := seeded(t)
	before, err := ls.Status(ctx)
	require.NoError(t, err)

	assert.NoError(t, ls.Remittance(ctx, alice, alice, bal(3)))

	after, err := ls.Status(ctx)
	assert.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, uint64(2), mustState(t, ls, alice).Nonce)
	assert.Equal(t, bal(8), mustState(t, ls, alice).Amount)
	assert.Empty(t, events.Events())

	// the balance check still applies to self transfers
	assert.ErrorIs(t, ls.Remittance(ctx, alice, alice, bal(9)), ErrInsufficientBalance)
}

func TestRemittanceErrors(t *testing.T) {
	ctx := context.Background()
	ls, events := seeded(t)

	assert.ErrorIs(t, ls.Remittance(ctx, carol, bob, bal(0)), ErrMissingPriorState)
	assert.ErrorIs(t, ls.Remittance(ctx, alice, bob, bal(9)), ErrInsufficientBalance)
	assert.Empty(t, events.Events())
	assert.Equal(t, uint64(2), mustState(t, ls, alice).Nonce)

	none, err := ls.CurrentState(ctx, bob)
	assert.NoError(t, err)
	assert.True(t, none.IsNone())
}

func TestRemittanceWholeBalance(t *testing.T) {
	ctx := context.Background()
	ls, events := seeded(t)

	assert.NoError(t, ls.Remittance(ctx, alice, bob, bal(8)))
	assert.True(t, mustState(t, ls, alice).Amount.IsZero())
	assert.NoError(t, ls.Remittance(ctx, bob, alice, bal(2)))

	assert.Equal(t, common_types.AccountState{Nonce: 4, Token: ls.TokenID(), Owner: alice, Amount: bal(2)}, mustState(t, ls, alice))
	assert.Equal(t, common_types.AccountState{Nonce: 2, Token: ls.TokenID(), Owner: bob, Amount: bal(6)}, mustState(t, ls, bob))
	assert.Len(t, events.Events(), 2)
}

func TestUnlockErrors(t *testing.T) {
	ctx := context.Background()
	ls, events := seeded(t)

	assert.ErrorIs(t, ls.Unlock(ctx, bob, bal(1)), ErrMissingPriorState)
	assert.ErrorIs(t, ls.Unlock(ctx, alice, bal(9)), ErrInsufficientBalance)
	assert.Empty(t, events.Events())
	assert.Equal(t, bal(8), mustToken(t, ls).Issued)

	assert.NoError(t, ls.Unlock(ctx, alice, bal(8)))
	assert.True(t, mustToken(t, ls).Issued.IsZero())
	assert.True(t, mustState(t, ls, alice).Amount.IsZero())
	assert.Equal(t, []Event{burnEvent(alice, bal(0))}, events.Drain())
}

func TestUnlockInsufficientIssuedSupply(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	ls, events := newTestLedger(t, store)
	require.NoError(t, ls.Initialize(ctx, alice, block(100)))
	require.NoError(t, ls.RecordHeader(ctx, alice, block(101, 10)))
	events.Drain()

	// rewrite the latest supply version below alice's balance
	raw, err := codec.Encode(&common_types.TokenSupply{ID: ls.TokenID(), Nonce: 1, Issued: bal(3)})
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, tokenKey(1), raw))

	assert.ErrorIs(t, ls.Unlock(ctx, alice, bal(5)), ErrInsufficientIssuedSupply)
	assert.Equal(t, bal(10), mustState(t, ls, alice).Amount)
	assert.Equal(t, uint64(1), mustState(t, ls, alice).Nonce)
	assert.Empty(t, events.Events())
}

func TestMissingPriorToken(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	ls, _ := newTestLedger(t, store)
	require.NoError(t, ls.Initialize(ctx, alice, block(100)))
	require.NoError(t, ls.RecordHeader(ctx, alice, block(101, 10)))

	require.NoError(t, store.Delete(ctx, tokenKey(1)))

	assert.ErrorIs(t, ls.RecordHeader(ctx, alice, block(102, 1)), ErrMissingPriorToken)
	assert.ErrorIs(t, ls.Unlock(ctx, alice, bal(1)), ErrMissingPriorToken)
}

func TestAppendOnlyHistory(t *testing.T) {
	ctx := context.Background()
	ls, _ := seeded(t)
	require.NoError(t, ls.Remittance(ctx, alice, bob, bal(3)))

	expected := []uint64{12, 8, 5}
	for i, amount := range expected {
		state, err := ls.StateAt(ctx, alice, uint64(i+1))
		assert.NoError(t, err)
		assert.True(t, state.IsSome())
		assert.Equal(t, bal(amount), state.Unwrap().Amount, "nonce %d", i+1)
	}

	for nonce, issued := range []uint64{0, 12, 8} {
		supply, err := ls.TokenAt(ctx, uint64(nonce))
		assert.NoError(t, err)
		assert.True(t, supply.IsSome())
		assert.Equal(t, bal(issued), supply.Unwrap().Issued)
	}

	missing, err := ls.StateAt(ctx, alice, 4)
	assert.NoError(t, err)
	assert.True(t, missing.IsNone())
}

func TestStateExistsOnCorruptPointer(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	ls, _ := newTestLedger(t, store)
	require.NoError(t, ls.Initialize(ctx, alice, block(100)))
	require.NoError(t, ls.RecordHeader(ctx, alice, block(101, 10)))

	// point alice back at a nonce that has no state
	raw, err := codec.EncodeUint64(0)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, stateNonceKey(alice), raw))

	assert.ErrorIs(t, ls.RecordHeader(ctx, alice, block(102, 1)), ErrStateExists)

	state, err := ls.StateAt(ctx, alice, 1)
	assert.NoError(t, err)
	assert.Equal(t, bal(10), state.Unwrap().Amount)
}

func TestIssuedMatchesBalances(t *testing.T) {
	ctx := context.Background()
	ls, _ := newTestLedger(t, nil)
	require.NoError(t, ls.Initialize(ctx, alice, block(10)))

	steps := []func() error{
		func() error { return ls.RecordHeader(ctx, alice, block(11, 40, 2)) },
		func() error { return ls.RecordHeader(ctx, bob, block(12, 7)) },
		func() error { return ls.Remittance(ctx, alice, carol, bal(15)) },
		func() error { return ls.Unlock(ctx, carol, bal(5)) },
		func() error { return ls.Remittance(ctx, bob, alice, bal(7)) },
		func() error { return ls.Unlock(ctx, alice, bal(30)) },
		func() error { return ls.RecordHeader(ctx, carol, block(13, 1, 1, 1)) },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)

		var total common_types.Balance
		for _, owner := range []common_types.AccountID{alice, bob, carol} {
			amount, err := ls.Balance(ctx, owner)
			require.NoError(t, err)
			total, _ = total.Add(amount)
		}
		assert.Equal(t, mustToken(t, ls).Issued, total, "step %d", i)
	}

	// 42 + 7 + 3 minted, 5 + 30 burned
	assert.Equal(t, bal(17), mustToken(t, ls).Issued)
	status, err := ls.Status(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(len(steps)), status.GlobalNonce)
}

type failingStore struct {
	datastore.Batching
	fail bool
}

var errCommit = errors.New("disk full")

type failingBatch struct {
	datastore.Batch
}

func (failingBatch) Commit(context.Context) error {
	return errCommit
}

func (s *failingStore) Batch(ctx context.Context) (datastore.Batch, error) {
	batch, err := s.Batching.Batch(ctx)
	if err != nil || !s.fail {
		return batch, err
	}
	return failingBatch{batch}, nil
}

func TestFailedCommitIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Batching: kv.NewMemory()}
	ls, events := newTestLedger(t, store)
	require.NoError(t, ls.Initialize(ctx, alice, block(100)))
	require.NoError(t, ls.RecordHeader(ctx, alice, block(101, 10)))
	events.Drain()

	store.fail = true
	assert.ErrorIs(t, ls.Remittance(ctx, alice, bob, bal(4)), errCommit)
	assert.ErrorIs(t, ls.RecordHeader(ctx, alice, block(102, 1)), errCommit)
	assert.Empty(t, events.Events())

	store.fail = false
	status, err := ls.Status(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), status.GlobalNonce)
	assert.Equal(t, uint64(101), status.LastDataNonce)
	assert.Equal(t, bal(10), mustState(t, ls, alice).Amount)

	// the same operations go through once the store recovers
	assert.NoError(t, ls.Remittance(ctx, alice, bob, bal(4)))
	assert.NoError(t, ls.RecordHeader(ctx, alice, block(102, 1)))
	assert.Equal(t, common_types.AccountState{Nonce: 3, Token: ls.TokenID(), Owner: alice, Amount: bal(7)}, mustState(t, ls, alice))
}

// partialStore applies the first applied puts of a batch straight to the
// backend and then fails the commit, the way flatfs stops half way.
type partialStore struct {
	datastore.Batching
	applied int
	fail    bool
	// refuse deletes while set, so a rollback cannot finish either
	stuck bool
}

type partialBatch struct {
	store *partialStore
	puts  int
}

func (b *partialBatch) Put(ctx context.Context, key datastore.Key, value []byte) error {
	if b.puts >= b.store.applied {
		return nil
	}
	b.puts++
	return b.store.Batching.Put(ctx, key, value)
}

func (b *partialBatch) Delete(ctx context.Context, key datastore.Key) error {
	return b.store.Batching.Delete(ctx, key)
}

func (b *partialBatch) Commit(context.Context) error {
	return errCommit
}

func (s *partialStore) Batch(ctx context.Context) (datastore.Batch, error) {
	if !s.fail {
		return s.Batching.Batch(ctx)
	}
	return &partialBatch{store: s}, nil
}

func (s *partialStore) Delete(ctx context.Context, key datastore.Key) error {
	if s.stuck {
		return errCommit
	}
	return s.Batching.Delete(ctx, key)
}

func TestPartialCommitRollsBack(t *testing.T) {
	ctx := context.Background()
	store := &partialStore{Batching: kv.NewMemory(), applied: 2}
	ls, events := newTestLedger(t, store)
	require.NoError(t, ls.Initialize(ctx, alice, block(100)))
	events.Drain()

	store.fail = true
	assert.ErrorIs(t, ls.RecordHeader(ctx, alice, block(101, 10)), errCommit)
	assert.Empty(t, events.Events())

	store.fail = false
	state, err := ls.CurrentState(ctx, alice)
	require.NoError(t, err)
	assert.True(t, state.IsNone())
	assert.Equal(t, uint64(0), mustToken(t, ls).Nonce)
	has, err := store.Has(ctx, journalKey)
	require.NoError(t, err)
	assert.False(t, has)

	// a retry mints the block exactly once
	require.NoError(t, ls.RecordHeader(ctx, alice, block(101, 10)))
	assert.Equal(t, common_types.AccountState{Nonce: 1, Token: ls.TokenID(), Owner: alice, Amount: bal(10)}, mustState(t, ls, alice))
	supply := mustToken(t, ls)
	assert.Equal(t, uint64(1), supply.Nonce)
	assert.Equal(t, bal(10), supply.Issued)
}

func TestUnfinishedCommitRecoveredOnLoad(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	store := &partialStore{Batching: backend, applied: 3}
	ls, _ := newTestLedger(t, store)
	require.NoError(t, ls.Initialize(ctx, alice, block(100)))
	require.NoError(t, ls.RecordHeader(ctx, alice, block(101, 6)))

	// neither the batch nor its rollback completes, as after a crash
	store.fail = true
	store.stuck = true
	assert.ErrorIs(t, ls.Remittance(ctx, alice, bob, bal(2)), errCommit)
	has, err := backend.Has(ctx, journalKey)
	require.NoError(t, err)
	require.True(t, has)

	reopened, _ := newTestLedger(t, backend)
	status, err := reopened.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, LedgerContext{Initialized: true, GlobalNonce: 1, LastTokenNonce: 1, LastDataNonce: 101}, status.LedgerContext)
	assert.Equal(t, common_types.AccountState{Nonce: 1, Token: reopened.TokenID(), Owner: alice, Amount: bal(6)}, mustState(t, reopened, alice))
	bobState, err := reopened.CurrentState(ctx, bob)
	require.NoError(t, err)
	assert.True(t, bobState.IsNone())
	has, err = backend.Has(ctx, journalKey)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, reopened.Remittance(ctx, alice, bob, bal(2)))
	assert.Equal(t, bal(4), mustState(t, reopened, alice).Amount)
	assert.Equal(t, bal(2), mustState(t, reopened, bob).Amount)

	// the original ledger recovers the same way once the store works again
	store.fail = false
	store.stuck = false
	assert.Equal(t, bal(4), mustState(t, ls, alice).Amount)
}

func TestUndoJournalEncoding(t *testing.T) {
	journal := &undoJournal{Entries: []undoEntry{
		{Key: stateNonceKey(alice), Present: true, Value: []byte{4}},
		{Key: stateKey(alice, 5)},
	}}
	raw, err := codec.Encode(journal)
	require.NoError(t, err)

	var decoded undoJournal
	require.NoError(t, codec.Decode(raw, &decoded))
	require.Len(t, decoded.Entries, 2)
	assert.Equal(t, stateNonceKey(alice), decoded.Entries[0].Key)
	assert.True(t, decoded.Entries[0].Present)
	assert.Equal(t, []byte{4}, decoded.Entries[0].Value)
	assert.Equal(t, stateKey(alice, 5), decoded.Entries[1].Key)
	assert.False(t, decoded.Entries[1].Present)
}

func TestReloadFromDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, backend := range []string{kv.FlatFS, kv.Badger} {
		t.Run(backend, func(t *testing.T) {
			store := kv.New(backend, dir+"/"+backend, logger.Nop())
			require.NoError(t, store.Init())
			ls, _ := newTestLedger(t, store)
			require.NoError(t, ls.Initialize(ctx, alice, block(100)))
			require.NoError(t, ls.RecordHeader(ctx, alice, block(101, 5, 7)))
			require.NoError(t, ls.Remittance(ctx, alice, bob, bal(2)))
			require.NoError(t, store.Stop())

			store = kv.New(backend, dir+"/"+backend, logger.Nop())
			require.NoError(t, store.Init())
			defer store.Stop()
			reopened, _ := newTestLedger(t, store)

			status, err := reopened.Status(ctx)
			assert.NoError(t, err)
			assert.Equal(t, LedgerContext{Initialized: true, GlobalNonce: 2, LastTokenNonce: 1, LastDataNonce: 101}, status.LedgerContext)
			assert.Equal(t, bal(10), mustState(t, reopened, alice).Amount)
			assert.Equal(t, bal(2), mustState(t, reopened, bob).Amount)
			assert.ErrorIs(t, reopened.Initialize(ctx, alice, block(5)), ErrAlreadyInitialized)
			assert.NoError(t, reopened.RecordHeader(ctx, bob, block(102, 1)))
		})
	}
}

func TestKeccakTokenID(t *testing.T) {
	ctx := context.Background()
	hasher, err := hashing.ByName(hashing.Keccak)
	require.NoError(t, err)
	ls := New(kv.NewMemory(), hasher, nil, nil)

	require.NoError(t, ls.Initialize(ctx, alice, block(1)))
	assert.Equal(t, hashing.TokenID(hasher), mustToken(t, ls).ID)
	assert.NotEqual(t, hashing.TokenID(hashing.Default), ls.TokenID())
}

type brokenSink struct{}

func (brokenSink) Emit(context.Context, ...Event) error {
	return errors.New("sink offline")
}

func TestSinkFailureKeepsCommit(t *testing.T) {
	ctx := context.Background()
	events := &EventLog{}
	ls := New(kv.NewMemory(), nil, MultiSink{brokenSink{}, events}, logger.Nop())

	assert.NoError(t, ls.Initialize(ctx, alice, block(7)))
	assert.NoError(t, ls.RecordHeader(ctx, alice, block(8, 2)))
	assert.Equal(t, bal(2), mustState(t, ls, alice).Amount)
	assert.Equal(t, []Event{tokenUpdateEvent(7), tokenUpdateEvent(8), mintEvent(alice, bal(2))}, events.Events())
}
