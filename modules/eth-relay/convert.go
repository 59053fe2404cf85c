package ethRelay

import (
	"errors"
	"fmt"

	"bridge-node/modules/common/common_types"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

var errMissingNumber = errors.New("header has no block number")

// FromEthereum converts a fetched block into the record the ledger stores.
// signer recovers each transaction's sender.
func FromEthereum(header *types.Header, txs types.Transactions, signer types.Signer) (common_types.EthereumBlockRecord, error) {
	var record common_types.EthereumBlockRecord
	if header.Number == nil {
		return record, errMissingNumber
	}
	if len(txs) > common_types.MaxBlockTxs {
		return record, fmt.Errorf("block %s has %d transactions, limit is %d", header.Number, len(txs), common_types.MaxBlockTxs)
	}

	blockHash := header.Hash()
	record.Header = common_types.EthereumHeader{
		Hash:             blockHash,
		ParentHash:       header.ParentHash,
		UnclesHash:       header.UncleHash,
		Author:           header.Coinbase.Bytes(),
		StateRoot:        header.Root,
		TransactionsRoot: header.TxHash,
		ReceiptsRoot:     header.ReceiptHash,
		Number:           header.Number.Uint64(),
		GasUsed:          common_types.NewBalance(header.GasUsed),
		GasLimit:         common_types.NewBalance(header.GasLimit),
		ExtraData:        hexutil.Bytes(header.Extra),
		LogsBloom:        header.Bloom.Bytes(),
		Timestamp:        header.Time,
		MixHash:          header.MixDigest,
		Nonce:            hexutil.Bytes(header.Nonce[:]),
	}
	if header.Difficulty != nil && header.Difficulty.Sign() > 0 {
		record.Header.Difficulty = header.Difficulty.Bytes()
	}

	for i, tx := range txs {
		from, err := types.Sender(signer, tx)
		if err != nil {
			return record, fmt.Errorf("tx %s sender: %w", tx.Hash(), err)
		}
		value, err := common_types.BalanceFromBig(tx.Value())
		if err != nil {
			return record, fmt.Errorf("tx %s value: %w", tx.Hash(), err)
		}
		gasPrice, err := common_types.BalanceFromBig(tx.GasPrice())
		if err != nil {
			return record, fmt.Errorf("tx %s gas price: %w", tx.Hash(), err)
		}

		converted := common_types.EthereumTx{
			Hash:             tx.Hash(),
			Nonce:            tx.Nonce(),
			BlockHash:        blockHash,
			BlockNumber:      record.Header.Number,
			TransactionIndex: uint64(i),
			From:             from.Bytes(),
			Value:            value,
			GasPrice:         gasPrice,
			Gas:              common_types.NewBalance(tx.Gas()),
			Input:            tx.Data(),
		}
		if to := tx.To(); to != nil {
			converted.To = to.Bytes()
		}
		record.Txs = append(record.Txs, converted)
	}
	return record, nil
}
