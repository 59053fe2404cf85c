package ledgerSystem

import (
	"context"
	"fmt"

	"bridge-node/modules/common/common_types"
)

// LockedValue sums the value of every transaction in record.
func LockedValue(record *common_types.EthereumBlockRecord) (common_types.Balance, error) {
	var locked common_types.Balance
	for i, tx := range record.Txs {
		sum, ok := locked.Add(tx.Value)
		if !ok {
			return locked, fmt.Errorf("%w: locked value at tx %d", ErrArithmeticOverflow, i)
		}
		locked = sum
	}
	return locked, nil
}

// RecordHeader accepts the next Ethereum block and mints the value locked
// by its transactions.
//
// The whole locked amount is credited to caller, the account submitting
// the block, not to the individual transaction senders.
func (ls *LedgerSystem) RecordHeader(ctx context.Context, caller common_types.AccountID, record common_types.EthereumBlockRecord) error {
	return ls.execute(ctx, "record_header", func(session *ledgerSession) error {
		if !session.lc.Initialized {
			return ErrNotInitialized
		}
		if expected := session.lc.LastDataNonce + 1; record.Header.Number != expected {
			return fmt.Errorf("%w: got %d, expected %d", ErrInvalidBlockSequence, record.Header.Number, expected)
		}

		locked, err := LockedValue(&record)
		if err != nil {
			return err
		}

		supply, err := session.latestToken()
		if err != nil {
			return err
		}
		issued, ok := supply.Issued.Add(locked)
		if !ok {
			return fmt.Errorf("%w: issued supply", ErrArithmeticOverflow)
		}

		prev, err := session.stateOrBaseline(caller, ls.tokenID)
		if err != nil {
			return err
		}
		amount, ok := prev.Amount.Add(locked)
		if !ok {
			return fmt.Errorf("%w: balance of %s", ErrArithmeticOverflow, caller)
		}

		session.lc.GlobalNonce++
		state, err := session.appendState(prev, amount)
		if err != nil {
			return err
		}
		if _, err := session.appendToken(supply, issued); err != nil {
			return err
		}
		if err := session.appendBlock(&record); err != nil {
			return err
		}

		session.emit(tokenUpdateEvent(session.lc.LastDataNonce))
		session.emit(mintEvent(caller, state.Amount))
		return nil
	})
}
