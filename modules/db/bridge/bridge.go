package bridge

import (
	"context"

	a "bridge-node/modules/aggregate"
	"bridge-node/modules/db"

	"go.mongodb.org/mongo-driver/bson"
)

// BridgeDb is the mongo database holding the node's indexes.
type BridgeDb struct {
	*db.DbInstance
}

var _ a.Plugin = &BridgeDb{}

func New(d db.Db, dbConf db.DbConfig) *BridgeDb {
	return &BridgeDb{db.NewDbInstance(d, dbConf)}
}

// Nuke empties every collection. The ledger store is the source of truth;
// notifications emitted after a nuke are indexed from sequence 1 again.
func (db *BridgeDb) Nuke(ctx context.Context) error {
	colsNames, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return err
	}

	for _, colName := range colsNames {
		_, err := db.Collection(colName).DeleteMany(ctx, bson.M{})
		if err != nil {
			return err
		}
	}

	return nil
}
