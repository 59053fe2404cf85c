package main

import (
	"context"
	"errors"
	"fmt"

	"bridge-node/lib/hashing"
	"bridge-node/lib/logger"
	"bridge-node/modules/aggregate"
	"bridge-node/modules/api"
	"bridge-node/modules/common"
	"bridge-node/modules/db"
	"bridge-node/modules/db/bridge"
	"bridge-node/modules/db/bridge/events"
	"bridge-node/modules/db/kv"
	ethRelay "bridge-node/modules/eth-relay"
	ledgerSystem "bridge-node/modules/ledger-system"

	"go.uber.org/zap"
)

type node struct {
	conf    common.BridgeConfig
	base    *zap.Logger
	store   *kv.Store
	ledger  *ledgerSystem.LedgerSystem
	index   events.Events
	indexDb *bridge.BridgeDb
	emitted *ledgerSystem.EventLog

	// plugins in start order
	plugins []aggregate.Plugin
}

// loadNode reads the configuration and wires the ledger with its store and
// sinks. Long running services are only added by withServices.
func loadNode(a args) (*node, error) {
	conf := common.NewBridgeConfig(a.dataDir)
	if err := conf.Init(); err != nil {
		return nil, err
	}
	if err := a.applyConfig(conf); err != nil {
		return nil, err
	}

	level := conf.Get().LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	base, err := logger.Production(level)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	hasher, err := hashing.ByName(conf.Get().Hasher)
	if err != nil {
		return nil, err
	}

	n := &node{
		conf:    conf,
		base:    base,
		store:   kv.New(conf.Get().StoreBackend, a.dataDir, logger.New("store", base)),
		emitted: &ledgerSystem.EventLog{},
	}
	n.plugins = append(n.plugins, conf, n.store)

	sinks := ledgerSystem.MultiSink{n.emitted, ledgerSystem.LogSink{Log: logger.New("events", base)}}
	if conf.DbURI() != "" {
		mongo := db.New(conf, logger.New("db", base))
		n.indexDb = bridge.New(mongo, conf)
		n.index = events.New(n.indexDb)
		sinks = append(sinks, n.index)
		n.plugins = append(n.plugins, mongo, n.indexDb, n.index)
	}

	n.ledger = ledgerSystem.New(n.store, hasher, sinks, logger.New("ledger", base))
	n.plugins = append(n.plugins, n.ledger)
	return n, nil
}

// withServices adds the relay, when enabled, and the query API.
func (n *node) withServices() error {
	relayConf := n.conf.Get().Relay
	if relayConf.Enabled {
		relayer, err := n.conf.RelayerAccount()
		if err != nil {
			return err
		}
		n.plugins = append(n.plugins, ethRelay.New(relayConf, relayer, n.ledger, logger.New("relay", n.base)))
	}

	var index api.EventIndex
	if n.index != nil {
		index = n.index
	}
	n.plugins = append(n.plugins, api.New(n.conf.Get().ApiPort, n.ledger, index, logger.New("api", n.base)))
	return nil
}

// open initializes the plugins for a one shot command. The returned close
// stops them again.
func (n *node) open(ctx context.Context) (func() error, error) {
	agg := aggregate.NewWithContext(ctx, n.plugins)
	if err := agg.Init(); err != nil {
		return nil, errors.Join(err, agg.Stop())
	}
	if _, err := agg.Start().Await(ctx); err != nil {
		return nil, errors.Join(err, agg.Stop())
	}
	return func() error {
		err := agg.Stop()
		_ = n.base.Sync()
		return err
	}, nil
}
