package events_test

import (
	"context"
	"testing"
	"time"

	"bridge-node/modules/common/common_types"
	"bridge-node/modules/db/bridge/events"
	ledgerSystem "bridge-node/modules/ledger-system"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestEmit(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("indexes a batch", func(mt *mtest.T) {
		sink := events.NewFromCollection(mt.Coll)
		mt.AddMockResponses(
			// no stored events yet
			mtest.CreateCursorResponse(0, "bridge.ledger_events", mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		err := sink.Emit(context.Background(),
			ledgerSystem.Event{Kind: ledgerSystem.TokenUpdate, Nonce: 101},
			ledgerSystem.Event{Kind: ledgerSystem.Mint, Account: common_types.AccountID{1}, Amount: common_types.NewBalance(12)},
		)
		assert.NoError(mt, err)

		// the sequence is cached, the second batch goes straight to insert
		err = sink.Emit(context.Background(), ledgerSystem.Event{Kind: ledgerSystem.Burn, Account: common_types.AccountID{1}, Amount: common_types.NewBalance(8)})
		assert.NoError(mt, err)
	})

	mt.Run("reports insert failures", func(mt *mtest.T) {
		sink := events.NewFromCollection(mt.Coll)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "bridge.ledger_events", mtest.FirstBatch),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Message: "duplicate key"}),
		)
		err := sink.Emit(context.Background(), ledgerSystem.Event{Kind: ledgerSystem.TokenUpdate, Nonce: 5})
		assert.Error(mt, err)
	})

	mt.Run("empty batch is a no-op", func(mt *mtest.T) {
		sink := events.NewFromCollection(mt.Coll)
		assert.NoError(mt, sink.Emit(context.Background()))
	})
}

func TestListByAccount(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes records", func(mt *mtest.T) {
		sink := events.NewFromCollection(mt.Coll)
		at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "bridge.ledger_events", mtest.FirstBatch,
			bson.D{
				{Key: "seq", Value: int64(2)},
				{Key: "kind", Value: "mint"},
				{Key: "account", Value: "0xaa"},
				{Key: "amount", Value: "12"},
				{Key: "emitted_at", Value: at},
			},
			bson.D{
				{Key: "seq", Value: int64(4)},
				{Key: "kind", Value: "remit"},
				{Key: "account", Value: "0xaa"},
				{Key: "amount", Value: "5"},
				{Key: "to", Value: "0xbb"},
				{Key: "to_amount", Value: "3"},
				{Key: "emitted_at", Value: at},
			},
		))

		records, err := sink.ListByAccount(context.Background(), "0xaa", 10)
		assert.NoError(mt, err)
		assert.Len(mt, records, 2)
		assert.Equal(mt, uint64(2), records[0].Seq)
		assert.Equal(mt, "mint", records[0].Kind)
		assert.Equal(mt, "0xbb", records[1].To)
		assert.Equal(mt, "3", records[1].ToAmount)
		assert.True(mt, at.Equal(records[1].EmittedAt))
	})
}
