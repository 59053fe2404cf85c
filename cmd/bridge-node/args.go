package main

import (
	"encoding/json"
	"fmt"
	"os"

	"bridge-node/modules/common"
	"bridge-node/modules/common/common_types"
)

type args struct {
	dataDir  string
	logLevel string
	caller   string

	// run only; persisted into the node config
	relay        bool
	relayRPC     string
	relayer      string
	eventsDb     string
	eventsDbName string
}

var flags args

// applyConfig writes the config overrides given on the command line.
func (a args) applyConfig(conf common.BridgeConfig) error {
	if a.relay || a.relayRPC != "" || a.relayer != "" {
		enabled := a.relay || conf.Get().Relay.Enabled
		if err := conf.SetRelay(enabled, a.relayRPC, a.relayer); err != nil {
			return fmt.Errorf("relay flags: %w", err)
		}
	}
	if a.eventsDb != "" || a.eventsDbName != "" {
		uri := a.eventsDb
		if uri == "" {
			uri = conf.Get().EventsDbURI
		}
		if err := conf.SetEventsDb(uri, a.eventsDbName); err != nil {
			return fmt.Errorf("events db flags: %w", err)
		}
	}
	return nil
}

func (a args) callerID() (common_types.AccountID, error) {
	if a.caller == "" {
		return common_types.AccountID{}, fmt.Errorf("--caller is required")
	}
	return common_types.ParseAccountID(a.caller)
}

// readBlockRecord loads an EthereumBlockRecord from a JSON file.
func readBlockRecord(path string) (common_types.EthereumBlockRecord, error) {
	var record common_types.EthereumBlockRecord
	b, err := os.ReadFile(path)
	if err != nil {
		return record, err
	}
	if err := json.Unmarshal(b, &record); err != nil {
		return record, fmt.Errorf("failed to parse block record %s: %w", path, err)
	}
	if len(record.Txs) > common_types.MaxBlockTxs {
		return record, fmt.Errorf("block record %s has %d transactions, limit is %d", path, len(record.Txs), common_types.MaxBlockTxs)
	}
	return record, nil
}
