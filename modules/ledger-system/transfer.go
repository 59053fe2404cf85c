package ledgerSystem

import (
	"context"
	"fmt"

	"bridge-node/modules/common/common_types"
)

// Remittance moves value from one holder to another.
func (ls *LedgerSystem) Remittance(ctx context.Context, from common_types.AccountID, to common_types.AccountID, value common_types.Balance) error {
	return ls.execute(ctx, "remittance", func(session *ledgerSession) error {
		if !session.lc.Initialized {
			return ErrNotInitialized
		}
		return session.basicRemittance(from, to, value)
	})
}

// basicRemittance debits from and credits to as one versioned step. A
// transfer to oneself succeeds without touching any state.
func (session *ledgerSession) basicRemittance(from common_types.AccountID, to common_types.AccountID, value common_types.Balance) error {
	sender, err := session.requireState(from)
	if err != nil {
		return err
	}
	if sender.Amount.Lt(value) {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientBalance, from, sender.Amount, value)
	}
	if from == to {
		return nil
	}

	receiver, err := session.stateOrBaseline(to, sender.Token)
	if err != nil {
		return err
	}
	fromAmount, _ := sender.Amount.Sub(value)
	toAmount, ok := receiver.Amount.Add(value)
	if !ok {
		return fmt.Errorf("%w: balance of %s", ErrArithmeticOverflow, to)
	}

	session.lc.GlobalNonce++
	fromState, err := session.appendState(sender, fromAmount)
	if err != nil {
		return err
	}
	toState, err := session.appendState(receiver, toAmount)
	if err != nil {
		return err
	}

	session.emit(remitEvent(from, fromState.Amount, to, toState.Amount))
	return nil
}

// Unlock burns value from caller's balance and the issued supply, the
// counterpart of releasing it on Ethereum.
func (ls *LedgerSystem) Unlock(ctx context.Context, caller common_types.AccountID, value common_types.Balance) error {
	return ls.execute(ctx, "unlock", func(session *ledgerSession) error {
		if !session.lc.Initialized {
			return ErrNotInitialized
		}

		prev, err := session.requireState(caller)
		if err != nil {
			return err
		}
		amount, ok := prev.Amount.Sub(value)
		if !ok {
			return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientBalance, caller, prev.Amount, value)
		}

		supply, err := session.latestToken()
		if err != nil {
			return err
		}
		issued, ok := supply.Issued.Sub(value)
		if !ok {
			return fmt.Errorf("%w: issued %s, burning %s", ErrInsufficientIssuedSupply, supply.Issued, value)
		}

		session.lc.GlobalNonce++
		state, err := session.appendState(prev, amount)
		if err != nil {
			return err
		}
		if _, err := session.appendToken(supply, issued); err != nil {
			return err
		}

		session.emit(burnEvent(caller, state.Amount))
		return nil
	})
}
