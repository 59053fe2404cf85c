package common_types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spacemeshos/go-scale"
)

const (
	maxHeaderFieldLen = 1 << 12
	maxTxInputLen     = 1 << 20
	MaxBlockTxs       = 1 << 16
)

// EthereumHeader carries the block metadata relayed from Ethereum. The
// ledger only interprets Number; the rest is stored as received.
type EthereumHeader struct {
	Hash             common.Hash   `json:"hash"`
	ParentHash       common.Hash   `json:"parentHash"`
	UnclesHash       common.Hash   `json:"sha3Uncles"`
	Author           hexutil.Bytes `json:"miner"`
	StateRoot        common.Hash   `json:"stateRoot"`
	TransactionsRoot common.Hash   `json:"transactionsRoot"`
	ReceiptsRoot     common.Hash   `json:"receiptsRoot"`
	Number           uint64        `json:"number"`
	GasUsed          Balance       `json:"gasUsed"`
	GasLimit         Balance       `json:"gasLimit"`
	ExtraData        hexutil.Bytes `json:"extraData"`
	LogsBloom        hexutil.Bytes `json:"logsBloom"`
	Timestamp        uint64        `json:"timestamp"`
	Difficulty       hexutil.Bytes `json:"difficulty"`
	MixHash          common.Hash   `json:"mixHash"`
	Nonce            hexutil.Bytes `json:"nonce"`
}

type EthereumTx struct {
	Hash             common.Hash   `json:"hash"`
	Nonce            uint64        `json:"nonce"`
	BlockHash        common.Hash   `json:"blockHash"`
	BlockNumber      uint64        `json:"blockNumber"`
	TransactionIndex uint64        `json:"transactionIndex"`
	From             hexutil.Bytes `json:"from"`
	To               hexutil.Bytes `json:"to"`
	Value            Balance       `json:"value"`
	GasPrice         Balance       `json:"gasPrice"`
	Gas              Balance       `json:"gas"`
	Input            hexutil.Bytes `json:"input"`
}

// EthereumBlockRecord is an already validated Ethereum block as handed to
// the bridge.
type EthereumBlockRecord struct {
	Header EthereumHeader `json:"header"`
	Txs    []EthereumTx   `json:"txs"`
}

func encodeBytes(enc *scale.Encoder, b []byte, limit uint32) (int, error) {
	return scale.EncodeByteSliceWithLimit(enc, b, limit)
}

func decodeBytes(dec *scale.Decoder, limit uint32) (hexutil.Bytes, int, error) {
	b, n, err := scale.DecodeByteSliceWithLimit(dec, limit)
	if err != nil {
		return nil, n, err
	}
	if len(b) == 0 {
		return nil, n, nil
	}
	return hexutil.Bytes(b), n, nil
}

type fieldEncoder func(*scale.Encoder) (int, error)

type fieldDecoder func(*scale.Decoder) (int, error)

func encodeFields(enc *scale.Encoder, fields ...fieldEncoder) (int, error) {
	total := 0
	for _, f := range fields {
		n, err := f(enc)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func decodeFields(dec *scale.Decoder, fields ...fieldDecoder) (int, error) {
	total := 0
	for _, f := range fields {
		n, err := f(dec)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func hashField(h *common.Hash) (fieldEncoder, fieldDecoder) {
	return func(e *scale.Encoder) (int, error) { return encodeHash(e, h) },
		func(d *scale.Decoder) (int, error) { return decodeHash(d, h) }
}

func bytesField(b *hexutil.Bytes, limit uint32) (fieldEncoder, fieldDecoder) {
	return func(e *scale.Encoder) (int, error) { return encodeBytes(e, *b, limit) },
		func(d *scale.Decoder) (int, error) {
			v, n, err := decodeBytes(d, limit)
			*b = v
			return n, err
		}
}

func uintField(v *uint64) (fieldEncoder, fieldDecoder) {
	return func(e *scale.Encoder) (int, error) { return scale.EncodeCompact64(e, *v) },
		func(d *scale.Decoder) (int, error) {
			field, n, err := scale.DecodeCompact64(d)
			*v = field
			return n, err
		}
}

func balanceField(b *Balance) (fieldEncoder, fieldDecoder) {
	return b.EncodeScale, b.DecodeScale
}

func (h *EthereumHeader) fields() ([]fieldEncoder, []fieldDecoder) {
	var (
		encs []fieldEncoder
		decs []fieldDecoder
	)
	add := func(e fieldEncoder, d fieldDecoder) {
		encs = append(encs, e)
		decs = append(decs, d)
	}
	add(hashField(&h.Hash))
	add(hashField(&h.ParentHash))
	add(hashField(&h.UnclesHash))
	add(bytesField(&h.Author, maxHeaderFieldLen))
	add(hashField(&h.StateRoot))
	add(hashField(&h.TransactionsRoot))
	add(hashField(&h.ReceiptsRoot))
	add(uintField(&h.Number))
	add(balanceField(&h.GasUsed))
	add(balanceField(&h.GasLimit))
	add(bytesField(&h.ExtraData, maxHeaderFieldLen))
	add(bytesField(&h.LogsBloom, maxHeaderFieldLen))
	add(uintField(&h.Timestamp))
	add(bytesField(&h.Difficulty, maxHeaderFieldLen))
	add(hashField(&h.MixHash))
	add(bytesField(&h.Nonce, maxHeaderFieldLen))
	return encs, decs
}

// EncodeScale implements scale codec interface.
func (h *EthereumHeader) EncodeScale(enc *scale.Encoder) (int, error) {
	encs, _ := h.fields()
	return encodeFields(enc, encs...)
}

// DecodeScale implements scale codec interface.
func (h *EthereumHeader) DecodeScale(dec *scale.Decoder) (int, error) {
	_, decs := h.fields()
	return decodeFields(dec, decs...)
}

func (tx *EthereumTx) fields() ([]fieldEncoder, []fieldDecoder) {
	var (
		encs []fieldEncoder
		decs []fieldDecoder
	)
	add := func(e fieldEncoder, d fieldDecoder) {
		encs = append(encs, e)
		decs = append(decs, d)
	}
	add(hashField(&tx.Hash))
	add(uintField(&tx.Nonce))
	add(hashField(&tx.BlockHash))
	add(uintField(&tx.BlockNumber))
	add(uintField(&tx.TransactionIndex))
	add(bytesField(&tx.From, maxHeaderFieldLen))
	add(bytesField(&tx.To, maxHeaderFieldLen))
	add(balanceField(&tx.Value))
	add(balanceField(&tx.GasPrice))
	add(balanceField(&tx.Gas))
	add(bytesField(&tx.Input, maxTxInputLen))
	return encs, decs
}

// EncodeScale implements scale codec interface.
func (tx *EthereumTx) EncodeScale(enc *scale.Encoder) (int, error) {
	encs, _ := tx.fields()
	return encodeFields(enc, encs...)
}

// DecodeScale implements scale codec interface.
func (tx *EthereumTx) DecodeScale(dec *scale.Decoder) (int, error) {
	_, decs := tx.fields()
	return decodeFields(dec, decs...)
}

// EncodeScale implements scale codec interface.
func (r *EthereumBlockRecord) EncodeScale(enc *scale.Encoder) (int, error) {
	if len(r.Txs) > MaxBlockTxs {
		return 0, fmt.Errorf("block %d has %d txs, limit %d", r.Header.Number, len(r.Txs), MaxBlockTxs)
	}
	total, err := r.Header.EncodeScale(enc)
	if err != nil {
		return total, err
	}
	n, err := scale.EncodeCompact32(enc, uint32(len(r.Txs)))
	total += n
	if err != nil {
		return total, err
	}
	for i := range r.Txs {
		n, err := r.Txs[i].EncodeScale(enc)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (r *EthereumBlockRecord) DecodeScale(dec *scale.Decoder) (int, error) {
	total, err := r.Header.DecodeScale(dec)
	if err != nil {
		return total, err
	}
	count, n, err := scale.DecodeCompact32(dec)
	total += n
	if err != nil {
		return total, err
	}
	if count > MaxBlockTxs {
		return total, fmt.Errorf("block %d has %d txs, limit %d", r.Header.Number, count, MaxBlockTxs)
	}
	r.Txs = nil
	if count > 0 {
		r.Txs = make([]EthereumTx, count)
	}
	for i := range r.Txs {
		n, err := r.Txs[i].DecodeScale(dec)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
