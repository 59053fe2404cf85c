package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bridge-node/modules/db"
	"bridge-node/modules/db/bridge"
	ledgerSystem "bridge-node/modules/ledger-system"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "ledger_events"

type events struct {
	*db.Collection

	mu      sync.Mutex
	seq     uint64
	seqInit bool
	now     func() time.Time
}

var _ Events = &events{}

func New(d *bridge.BridgeDb) Events {
	return &events{Collection: db.NewCollection(d.DbInstance, collectionName), now: time.Now}
}

// NewFromCollection indexes into an already resolved collection.
func NewFromCollection(c *mongo.Collection) Events {
	return &events{Collection: db.WrapCollection(c), now: time.Now}
}

func toRecord(e ledgerSystem.Event) EventRecord {
	record := EventRecord{Kind: string(e.Kind)}
	switch e.Kind {
	case ledgerSystem.TokenUpdate:
		record.Nonce = e.Nonce
	case ledgerSystem.Mint, ledgerSystem.Burn:
		record.Account = e.Account.String()
		record.Amount = e.Amount.String()
	case ledgerSystem.Remit:
		record.Account = e.Account.String()
		record.Amount = e.Amount.String()
		record.To = e.To.String()
		record.ToAmount = e.ToAmount.String()
	}
	return record
}

// lastSeq reads the highest stored sequence number once per process.
func (ev *events) lastSeq(ctx context.Context) (uint64, error) {
	if ev.seqInit {
		return ev.seq, nil
	}
	var last EventRecord
	opts := options.FindOne().SetSort(bson.M{"seq": -1})
	err := ev.FindOne(ctx, bson.M{}, opts).Decode(&last)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("load event sequence: %w", err)
	}
	ev.seq = last.Seq
	ev.seqInit = true
	return ev.seq, nil
}

// Emit implements ledgerSystem.EventSink.
func (ev *events) Emit(ctx context.Context, evs ...ledgerSystem.Event) error {
	if len(evs) == 0 {
		return nil
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()

	seq, err := ev.lastSeq(ctx)
	if err != nil {
		return err
	}
	now := ev.now().UTC()
	docs := make([]interface{}, 0, len(evs))
	for i, e := range evs {
		record := toRecord(e)
		record.Seq = seq + uint64(i) + 1
		record.EmittedAt = now
		docs = append(docs, record)
	}
	if _, err := ev.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("index events: %w", err)
	}
	ev.seq = seq + uint64(len(evs))
	return nil
}

func (ev *events) ListByAccount(ctx context.Context, account string, limit int64) ([]EventRecord, error) {
	opts := options.Find().SetSort(bson.M{"seq": 1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := ev.Find(ctx, bson.M{
		"$or": bson.A{
			bson.M{"account": account},
			bson.M{"to": account},
		},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := make([]EventRecord, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
