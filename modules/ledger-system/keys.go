package ledgerSystem

import (
	"strconv"

	"bridge-node/modules/common/common_types"
	"bridge-node/modules/db/kv"

	"github.com/ipfs/go-datastore"
)

const keyPrefix = "bridge"

var (
	initKey        = kv.Key(keyPrefix, "init")
	globalNonceKey = kv.Key(keyPrefix, "nonce")
	tokenNonceKey  = kv.Key(keyPrefix, "token-nonce")
	dataNonceKey   = kv.Key(keyPrefix, "data-nonce")
	journalKey     = kv.Key(keyPrefix, "journal")
)

func stateKey(owner common_types.AccountID, nonce uint64) datastore.Key {
	return kv.Key(keyPrefix, "state", owner.String(), strconv.FormatUint(nonce, 10))
}

func stateNonceKey(owner common_types.AccountID) datastore.Key {
	return kv.Key(keyPrefix, "state-nonce", owner.String())
}

func tokenKey(nonce uint64) datastore.Key {
	return kv.Key(keyPrefix, "token", strconv.FormatUint(nonce, 10))
}

func dataKey(nonce uint64) datastore.Key {
	return kv.Key(keyPrefix, "data", strconv.FormatUint(nonce, 10))
}
