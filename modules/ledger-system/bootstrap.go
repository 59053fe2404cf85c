package ledgerSystem

import (
	"context"
	"fmt"

	"bridge-node/modules/common/common_types"
)

// Initialize seeds the ledger from record: token supply version 0 with
// nothing issued, and the record's block number as the data-nonce every
// later block has to follow. It succeeds once per store.
func (ls *LedgerSystem) Initialize(ctx context.Context, caller common_types.AccountID, record common_types.EthereumBlockRecord) error {
	return ls.execute(ctx, "initialize", func(session *ledgerSession) error {
		if session.lc.Initialized {
			return ErrAlreadyInitialized
		}

		genesis := common_types.TokenSupply{
			ID:    ls.tokenID,
			Nonce: 0,
		}
		if err := session.insert(tokenKey(genesis.Nonce), &genesis); err != nil {
			return fmt.Errorf("initialize token supply: %w", err)
		}
		if err := session.appendBlock(&record); err != nil {
			return fmt.Errorf("initialize block record: %w", err)
		}

		session.lc.LastTokenNonce = genesis.Nonce
		session.lc.GlobalNonce = 0
		session.lc.Initialized = true

		session.emit(tokenUpdateEvent(session.lc.LastDataNonce))
		ls.log.Info("ledger initialized", "caller", caller, "block", record.Header.Number, "token", ls.tokenID)
		return nil
	})
}
