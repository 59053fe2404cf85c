package db

import (
	"context"
	"fmt"
	"time"

	"bridge-node/lib/logger"
	a "bridge-node/modules/aggregate"

	"github.com/chebyrash/promise"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

type Db interface {
	Database(name string, opts ...*options.DatabaseOptions) *mongo.Database
}

type db struct {
	conf DbConfig
	log  logger.Logger
	*mongo.Client
}

var _ a.Plugin = &db{}
var _ Db = &db{}

func New(conf DbConfig, log logger.Logger) *db {
	return &db{conf: conf, log: log}
}

// Init creates the client. The driver connects lazily, so this does not
// wait for the server.
func (db *db) Init() error {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(db.conf.DbURI()))
	if err != nil {
		return fmt.Errorf("mongo client: %w", err)
	}
	db.Client = client
	return nil
}

// Start resolves once the server answered a ping.
func (db *db) Start() *promise.Promise[any] {
	return promise.New(func(resolve func(any), reject func(error)) {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := db.Ping(ctx, readpref.Primary()); err != nil {
			reject(fmt.Errorf("mongo ping: %w", err))
			return
		}
		db.log.Debug("mongo connected", "db", db.conf.DbName())
		resolve(nil)
	})
}

func (db *db) Stop() error {
	if db.Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return db.Disconnect(ctx)
}
