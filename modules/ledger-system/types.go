package ledgerSystem

import (
	"bridge-node/modules/common/common_types"

	"github.com/ethereum/go-ethereum/common"
)

// LedgerContext is the ledger wide bookkeeping threaded through every
// operation. It is loaded from the store once and replaced only after a
// successful commit.
type LedgerContext struct {
	Initialized    bool   `json:"initialized"`
	GlobalNonce    uint64 `json:"global_nonce"`
	LastTokenNonce uint64 `json:"last_token_nonce"`
	LastDataNonce  uint64 `json:"last_data_nonce"`
}

type Status struct {
	LedgerContext
	TokenID common.Hash `json:"token_id"`
	Hasher  string      `json:"hasher"`
}

type EventKind string

const (
	TokenUpdate EventKind = "token_update"
	Mint        EventKind = "mint"
	Remit       EventKind = "remit"
	Burn        EventKind = "burn"
)

// Event is a notification emitted after a committed operation.
//
//	TokenUpdate: Nonce is the new data-nonce
//	Mint, Burn:  Account and Amount (the account's new balance)
//	Remit:       Account/Amount for the sender, To/ToAmount for the receiver
type Event struct {
	Kind     EventKind              `json:"kind"`
	Nonce    uint64                 `json:"nonce,omitempty"`
	Account  common_types.AccountID `json:"account"`
	Amount   common_types.Balance   `json:"amount"`
	To       common_types.AccountID `json:"to"`
	ToAmount common_types.Balance   `json:"to_amount"`
}

func tokenUpdateEvent(dataNonce uint64) Event {
	return Event{Kind: TokenUpdate, Nonce: dataNonce}
}

func mintEvent(account common_types.AccountID, amount common_types.Balance) Event {
	return Event{Kind: Mint, Account: account, Amount: amount}
}

func remitEvent(from common_types.AccountID, fromAmount common_types.Balance, to common_types.AccountID, toAmount common_types.Balance) Event {
	return Event{Kind: Remit, Account: from, Amount: fromAmount, To: to, ToAmount: toAmount}
}

func burnEvent(account common_types.AccountID, amount common_types.Balance) Event {
	return Event{Kind: Burn, Account: account, Amount: amount}
}
