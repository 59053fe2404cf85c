package ledgerSystem

import (
	"context"

	"bridge-node/modules/common/common_types"

	"github.com/moznion/go-optional"
)

func (ls *LedgerSystem) Status(ctx context.Context) (Status, error) {
	var status Status
	err := ls.view(ctx, func(session *ledgerSession) error {
		status = Status{
			LedgerContext: session.lc,
			TokenID:       ls.tokenID,
			Hasher:        ls.hasher.Name(),
		}
		return nil
	})
	return status, err
}

// CurrentState returns the owner's latest AccountState, None for an owner
// the ledger has never credited.
func (ls *LedgerSystem) CurrentState(ctx context.Context, owner common_types.AccountID) (optional.Option[common_types.AccountState], error) {
	result := optional.None[common_types.AccountState]()
	err := ls.view(ctx, func(session *ledgerSession) error {
		state, _, found, err := session.currentState(owner)
		if err != nil {
			return err
		}
		if found {
			result = optional.Some(state)
		}
		return nil
	})
	return result, err
}

func (ls *LedgerSystem) StateAt(ctx context.Context, owner common_types.AccountID, nonce uint64) (optional.Option[common_types.AccountState], error) {
	result := optional.None[common_types.AccountState]()
	err := ls.view(ctx, func(session *ledgerSession) error {
		state, found, err := session.stateAt(owner, nonce)
		if found {
			result = optional.Some(state)
		}
		return err
	})
	return result, err
}

// Balance is the owner's current amount, zero when the owner has no state.
func (ls *LedgerSystem) Balance(ctx context.Context, owner common_types.AccountID) (common_types.Balance, error) {
	state, err := ls.CurrentState(ctx, owner)
	if err != nil {
		return common_types.Balance{}, err
	}
	return state.TakeOr(common_types.AccountState{}).Amount, nil
}

func (ls *LedgerSystem) LatestToken(ctx context.Context) (optional.Option[common_types.TokenSupply], error) {
	result := optional.None[common_types.TokenSupply]()
	err := ls.view(ctx, func(session *ledgerSession) error {
		if !session.lc.Initialized {
			return nil
		}
		supply, err := session.latestToken()
		if err != nil {
			return err
		}
		result = optional.Some(supply)
		return nil
	})
	return result, err
}

func (ls *LedgerSystem) TokenAt(ctx context.Context, nonce uint64) (optional.Option[common_types.TokenSupply], error) {
	result := optional.None[common_types.TokenSupply]()
	err := ls.view(ctx, func(session *ledgerSession) error {
		supply, found, err := session.tokenAt(nonce)
		if found {
			result = optional.Some(supply)
		}
		return err
	})
	return result, err
}

func (ls *LedgerSystem) BlockAt(ctx context.Context, number uint64) (optional.Option[common_types.EthereumBlockRecord], error) {
	result := optional.None[common_types.EthereumBlockRecord]()
	err := ls.view(ctx, func(session *ledgerSession) error {
		record, found, err := session.blockAt(number)
		if found {
			result = optional.Some(record)
		}
		return err
	})
	return result, err
}
