package common_types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/spacemeshos/go-scale"
)

const AccountIDLen = 32

var (
	ErrInvalidAccountID = errors.New("invalid account id")
	ErrInvalidBalance   = errors.New("invalid balance")
)

// AccountID identifies a ledger account. It is opaque to the ledger; the
// host authenticates it before any operation is invoked.
type AccountID [AccountIDLen]byte

func ParseAccountID(s string) (AccountID, error) {
	var id AccountID
	b, err := hexutil.Decode(s)
	if err != nil {
		return id, fmt.Errorf("%w %q: %w", ErrInvalidAccountID, s, err)
	}
	if len(b) != AccountIDLen {
		return id, fmt.Errorf("%w %q: want %d bytes, got %d", ErrInvalidAccountID, s, AccountIDLen, len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (id AccountID) String() string {
	return hexutil.Encode(id[:])
}

func (id AccountID) IsZero() bool {
	return id == AccountID{}
}

func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *AccountID) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// EncodeScale implements scale codec interface.
func (id *AccountID) EncodeScale(e *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(e, id[:])
}

// DecodeScale implements scale codec interface.
func (id *AccountID) DecodeScale(d *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(d, id[:])
}

// Balance is an unsigned 256 bit amount. The zero value is a zero balance.
// Arithmetic never wraps: Add and Sub report overflow instead.
type Balance struct {
	v uint256.Int
}

func NewBalance(n uint64) Balance {
	var b Balance
	b.v.SetUint64(n)
	return b
}

func BalanceFromBig(n *big.Int) (Balance, error) {
	var b Balance
	if n == nil {
		return b, nil
	}
	if n.Sign() < 0 {
		return b, fmt.Errorf("%w: negative value %s", ErrInvalidBalance, n)
	}
	v, overflow := uint256.FromBig(n)
	if overflow {
		return b, fmt.Errorf("%w: %s exceeds 256 bits", ErrInvalidBalance, n)
	}
	b.v = *v
	return b, nil
}

// ParseBalance accepts a decimal string or a 0x prefixed hex string.
func ParseBalance(s string) (Balance, error) {
	var (
		b   Balance
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = uint256.FromHex(s)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return b, fmt.Errorf("%w %q: %w", ErrInvalidBalance, s, err)
	}
	b.v = *v
	return b, nil
}

// Add returns b+o and false when the sum does not fit in 256 bits.
func (b Balance) Add(o Balance) (Balance, bool) {
	var out Balance
	_, overflow := out.v.AddOverflow(&b.v, &o.v)
	return out, !overflow
}

// Sub returns b-o and false when o > b.
func (b Balance) Sub(o Balance) (Balance, bool) {
	var out Balance
	_, underflow := out.v.SubOverflow(&b.v, &o.v)
	return out, !underflow
}

func (b Balance) Cmp(o Balance) int {
	return b.v.Cmp(&o.v)
}

func (b Balance) Lt(o Balance) bool {
	return b.v.Lt(&o.v)
}

func (b Balance) IsZero() bool {
	return b.v.IsZero()
}

func (b Balance) Big() *big.Int {
	return b.v.ToBig()
}

func (b Balance) String() string {
	return b.v.Dec()
}

func (b Balance) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON accepts a quoted decimal or hex string, or a bare number.
func (b *Balance) UnmarshalJSON(input []byte) error {
	var s string
	if len(input) > 0 && input[0] == '"' {
		if err := json.Unmarshal(input, &s); err != nil {
			return err
		}
	} else {
		s = string(input)
	}
	parsed, err := ParseBalance(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// EncodeScale writes the balance as a fixed 32 byte little endian integer.
func (b *Balance) EncodeScale(e *scale.Encoder) (int, error) {
	be := b.v.Bytes32()
	var le [32]byte
	for i := range be {
		le[31-i] = be[i]
	}
	return scale.EncodeByteArray(e, le[:])
}

func (b *Balance) DecodeScale(d *scale.Decoder) (int, error) {
	var le [32]byte
	n, err := scale.DecodeByteArray(d, le[:])
	if err != nil {
		return n, err
	}
	var be [32]byte
	for i := range le {
		be[31-i] = le[i]
	}
	b.v.SetBytes32(be[:])
	return n, nil
}

func encodeHash(e *scale.Encoder, h *common.Hash) (int, error) {
	return scale.EncodeByteArray(e, h[:])
}

func decodeHash(d *scale.Decoder, h *common.Hash) (int, error) {
	return scale.DecodeByteArray(d, h[:])
}
