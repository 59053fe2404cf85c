package events

import (
	"context"
	"time"

	"bridge-node/modules/aggregate"
	ledgerSystem "bridge-node/modules/ledger-system"
)

type Events interface {
	aggregate.Plugin
	ledgerSystem.EventSink
	// ListByAccount returns the events that name account as sender or
	// receiver, oldest first.
	ListByAccount(ctx context.Context, account string, limit int64) ([]EventRecord, error)
}

type EventRecord struct {
	Seq       uint64    `json:"seq" bson:"seq"`
	Kind      string    `json:"kind" bson:"kind"`
	Nonce     uint64    `json:"nonce,omitempty" bson:"nonce,omitempty"`
	Account   string    `json:"account,omitempty" bson:"account,omitempty"`
	Amount    string    `json:"amount,omitempty" bson:"amount,omitempty"`
	To        string    `json:"to,omitempty" bson:"to,omitempty"`
	ToAmount  string    `json:"to_amount,omitempty" bson:"to_amount,omitempty"`
	EmittedAt time.Time `json:"emitted_at" bson:"emitted_at"`
}
