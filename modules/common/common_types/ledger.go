package common_types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/spacemeshos/go-scale"
)

// AccountState is one immutable balance snapshot of an owner. The owner's
// current balance is the snapshot at the owner's latest nonce.
type AccountState struct {
	Nonce  uint64      `json:"nonce"`
	Token  common.Hash `json:"token"`
	Owner  AccountID   `json:"owner"`
	Amount Balance     `json:"amount"`
}

// TokenSupply is one immutable version of the wrapped token supply.
type TokenSupply struct {
	ID      common.Hash `json:"id"`
	Nonce   uint64      `json:"nonce"`
	Deposit Balance     `json:"deposit"`
	Issued  Balance     `json:"issued"`
}

// EncodeScale implements scale codec interface.
func (s *AccountState) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact64(enc, s.Nonce)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := encodeHash(enc, &s.Token)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := s.Owner.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := s.Amount.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (s *AccountState) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		s.Nonce = field
	}
	{
		n, err := decodeHash(dec, &s.Token)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := s.Owner.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := s.Amount.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// EncodeScale implements scale codec interface.
func (t *TokenSupply) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := encodeHash(enc, &t.ID)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, t.Nonce)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := t.Deposit.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := t.Issued.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (t *TokenSupply) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		n, err := decodeHash(dec, &t.ID)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		t.Nonce = field
	}
	{
		n, err := t.Deposit.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := t.Issued.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
