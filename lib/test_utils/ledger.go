package test_utils

import (
	"bridge-node/lib/logger"
	"bridge-node/modules/common/common_types"
	"bridge-node/modules/db/kv"
	ledgerSystem "bridge-node/modules/ledger-system"
)

// NewMemoryLedger runs a ledger on an in-memory store and records every
// event it emits.
func NewMemoryLedger(t TestingT) (*ledgerSystem.LedgerSystem, *ledgerSystem.EventLog) {
	store := kv.NewMemory()
	events := &ledgerSystem.EventLog{}
	ls := ledgerSystem.New(store, nil, events, logger.Nop())
	RunPlugin(t, store, true)
	RunPlugin(t, ls, true)
	return ls, events
}

// BlockRecord builds a block with one transaction per value.
func BlockRecord(number uint64, values ...uint64) common_types.EthereumBlockRecord {
	record := common_types.EthereumBlockRecord{
		Header: common_types.EthereumHeader{Number: number},
	}
	for i, v := range values {
		record.Txs = append(record.Txs, common_types.EthereumTx{
			BlockNumber:      number,
			TransactionIndex: uint64(i),
			Value:            common_types.NewBalance(v),
		})
	}
	return record
}
