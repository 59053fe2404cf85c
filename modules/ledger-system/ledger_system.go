package ledgerSystem

import (
	"context"
	"sync"

	"bridge-node/lib/hashing"
	"bridge-node/lib/logger"
	"bridge-node/lib/utils"
	a "bridge-node/modules/aggregate"

	"github.com/chebyrash/promise"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-datastore"
)

// LedgerSystem mirrors Ethereum locked value into a wrapped token supply
// and per account balances. Every record it writes is versioned by a nonce
// and never rewritten; the current value of anything is the record at its
// latest nonce.
//
// Operations are serialized. Each one stages its writes in a ledgerSession
// and commits them in a single batch; events reach the sink only after the
// commit succeeded.
type LedgerSystem struct {
	mu sync.Mutex

	store   datastore.Batching
	hasher  hashing.Hasher
	tokenID common.Hash
	sink    EventSink
	log     logger.Logger

	lc     LedgerContext
	loaded bool
}

var _ a.Plugin = &LedgerSystem{}

func New(store datastore.Batching, hasher hashing.Hasher, sink EventSink, log logger.Logger) *LedgerSystem {
	if hasher == nil {
		hasher = hashing.Default
	}
	if sink == nil {
		sink = Discard
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerSystem{
		store:   store,
		hasher:  hasher,
		tokenID: hashing.TokenID(hasher),
		sink:    sink,
		log:     log,
	}
}

// Init implements aggregate.Plugin.
func (ls *LedgerSystem) Init() error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.ensureLoaded(context.Background())
}

// Start implements aggregate.Plugin.
func (ls *LedgerSystem) Start() *promise.Promise[any] {
	return utils.PromiseResolve[any](nil)
}

// Stop implements aggregate.Plugin.
func (ls *LedgerSystem) Stop() error {
	return nil
}

func (ls *LedgerSystem) TokenID() common.Hash {
	return ls.tokenID
}

func (ls *LedgerSystem) ensureLoaded(ctx context.Context) error {
	if ls.loaded {
		return nil
	}
	recovered, err := recoverJournal(ctx, ls.store)
	if err != nil {
		return err
	}
	if recovered {
		ls.log.Info("rolled back unfinished commit")
	}
	lc, err := loadLedgerContext(ctx, ls.store)
	if err != nil {
		return err
	}
	ls.lc = lc
	ls.loaded = true
	ls.log.Debug("ledger context loaded",
		"initialized", lc.Initialized,
		"nonce", lc.GlobalNonce,
		"token_nonce", lc.LastTokenNonce,
		"data_nonce", lc.LastDataNonce,
	)
	return nil
}

// execute runs op against a fresh session and commits it. The in memory
// context only advances once the batch is durable.
func (ls *LedgerSystem) execute(ctx context.Context, name string, op func(session *ledgerSession) error) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if err := ls.ensureLoaded(ctx); err != nil {
		return err
	}

	session := newLedgerSession(ctx, ls.store, ls.lc)
	if err := op(session); err != nil {
		return err
	}
	if !session.dirty() {
		return nil
	}
	if err := session.commit(ls.store); err != nil {
		// a failed rollback leaves the journal behind; reloading recovers it
		ls.loaded = false
		ls.log.Error("ledger commit failed", "op", name, "err", err)
		return err
	}
	ls.lc = session.lc
	ls.log.Debug("ledger op committed", "op", name, "nonce", ls.lc.GlobalNonce, "events", len(session.events))

	if len(session.events) > 0 {
		if err := ls.sink.Emit(ctx, session.events...); err != nil {
			ls.log.Error("event delivery failed", "op", name, "err", err)
		}
	}
	return nil
}

// view runs read against the committed store.
func (ls *LedgerSystem) view(ctx context.Context, read func(session *ledgerSession) error) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if err := ls.ensureLoaded(ctx); err != nil {
		return err
	}
	return read(newLedgerSession(ctx, ls.store, ls.lc))
}
