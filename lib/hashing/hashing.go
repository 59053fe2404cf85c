package hashing

import (
	"fmt"

	"bridge-node/modules/common/codec"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/blake2b"
)

const (
	Blake2 = "blake2"
	Keccak = "keccak"
)

// EthereumTokenLiteral is hashed to derive the wrapped token id. Stored
// records reference the id, so neither the literal nor its encoding may
// change.
const EthereumTokenLiteral = "ethereum"

type Hasher interface {
	Name() string
	Hash(data []byte) common.Hash
}

type blake2Hasher struct{}

func (blake2Hasher) Name() string { return Blake2 }

func (blake2Hasher) Hash(data []byte) common.Hash {
	return common.Hash(blake2b.Sum256(data))
}

type keccakHasher struct{}

func (keccakHasher) Name() string { return Keccak }

func (keccakHasher) Hash(data []byte) common.Hash {
	return crypto.Keccak256Hash(data)
}

// Default is the 256 bit Blake2b hasher.
var Default Hasher = blake2Hasher{}

func ByName(name string) (Hasher, error) {
	switch name {
	case "", Blake2:
		return blake2Hasher{}, nil
	case Keccak:
		return keccakHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown hasher %q", name)
	}
}

// TokenID hashes the SCALE encoding of the "ethereum" literal.
func TokenID(h Hasher) common.Hash {
	encoded, err := codec.EncodeString(EthereumTokenLiteral)
	if err != nil {
		// the literal is a constant; encoding it cannot fail
		panic(err)
	}
	return h.Hash(encoded)
}
