package bridge_test

import (
	"context"
	"testing"

	"bridge-node/modules/db"
	"bridge-node/modules/db/bridge"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestNuke(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("empties every collection", func(mt *mtest.T) {
		bridgeDb := &bridge.BridgeDb{DbInstance: &db.DbInstance{Database: mt.DB}}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, mt.DB.Name()+".$cmd.listCollections", mtest.FirstBatch,
				bson.D{{Key: "name", Value: "ledger_events"}, {Key: "type", Value: "collection"}},
			),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}),
		)
		assert.NoError(mt, bridgeDb.Nuke(context.Background()))
	})

	mt.Run("reports delete failures", func(mt *mtest.T) {
		bridgeDb := &bridge.BridgeDb{DbInstance: &db.DbInstance{Database: mt.DB}}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, mt.DB.Name()+".$cmd.listCollections", mtest.FirstBatch,
				bson.D{{Key: "name", Value: "ledger_events"}, {Key: "type", Value: "collection"}},
			),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Message: "unauthorized"}),
		)
		assert.Error(mt, bridgeDb.Nuke(context.Background()))
	})
}
