package ledgerSystem

import (
	"fmt"

	"bridge-node/modules/common/common_types"

	"github.com/ethereum/go-ethereum/common"
)

// stateNonce returns the owner's latest state nonce, 0 when the owner has
// never been touched.
func (session *ledgerSession) stateNonce(owner common_types.AccountID) (uint64, bool, error) {
	return session.loadUint64(stateNonceKey(owner))
}

func (session *ledgerSession) stateAt(owner common_types.AccountID, nonce uint64) (common_types.AccountState, bool, error) {
	var state common_types.AccountState
	ok, err := session.load(stateKey(owner, nonce), &state)
	return state, ok, err
}

// currentState resolves the owner's state at its latest nonce. found is
// false when the owner has no pointer or the pointer leads nowhere.
func (session *ledgerSession) currentState(owner common_types.AccountID) (state common_types.AccountState, nonce uint64, found bool, err error) {
	nonce, ok, err := session.stateNonce(owner)
	if err != nil || !ok {
		return state, 0, false, err
	}
	state, found, err = session.stateAt(owner, nonce)
	return state, nonce, found, err
}

// stateOrBaseline returns the owner's current state or a zero balance
// snapshot at the owner's current nonce.
func (session *ledgerSession) stateOrBaseline(owner common_types.AccountID, token common.Hash) (common_types.AccountState, error) {
	state, nonce, found, err := session.currentState(owner)
	if err != nil {
		return state, err
	}
	if !found {
		return common_types.AccountState{
			Nonce: nonce,
			Token: token,
			Owner: owner,
		}, nil
	}
	return state, nil
}

// requireState is currentState for operations that spend from owner.
func (session *ledgerSession) requireState(owner common_types.AccountID) (common_types.AccountState, error) {
	state, _, found, err := session.currentState(owner)
	if err != nil {
		return state, err
	}
	if !found {
		return state, fmt.Errorf("%w: %s", ErrMissingPriorState, owner)
	}
	return state, nil
}

// appendState writes the next version of prev with amount and advances the
// owner's pointer.
func (session *ledgerSession) appendState(prev common_types.AccountState, amount common_types.Balance) (common_types.AccountState, error) {
	next := common_types.AccountState{
		Nonce:  prev.Nonce + 1,
		Token:  prev.Token,
		Owner:  prev.Owner,
		Amount: amount,
	}
	if err := session.insert(stateKey(next.Owner, next.Nonce), &next); err != nil {
		return next, err
	}
	if err := session.putUint64(stateNonceKey(next.Owner), next.Nonce); err != nil {
		return next, err
	}
	return next, nil
}
