package ledgerSystem

import (
	"fmt"

	"bridge-node/modules/common/common_types"
)

func (session *ledgerSession) tokenAt(nonce uint64) (common_types.TokenSupply, bool, error) {
	var supply common_types.TokenSupply
	ok, err := session.load(tokenKey(nonce), &supply)
	return supply, ok, err
}

// latestToken returns the supply version at the last token nonce.
func (session *ledgerSession) latestToken() (common_types.TokenSupply, error) {
	supply, ok, err := session.tokenAt(session.lc.LastTokenNonce)
	if err != nil {
		return supply, err
	}
	if !ok {
		return supply, fmt.Errorf("%w: nonce %d", ErrMissingPriorToken, session.lc.LastTokenNonce)
	}
	return supply, nil
}

// appendToken writes the version following prev with issued and advances
// the token nonce.
func (session *ledgerSession) appendToken(prev common_types.TokenSupply, issued common_types.Balance) (common_types.TokenSupply, error) {
	next := common_types.TokenSupply{
		ID:      prev.ID,
		Nonce:   prev.Nonce + 1,
		Deposit: prev.Deposit,
		Issued:  issued,
	}
	if err := session.insert(tokenKey(next.Nonce), &next); err != nil {
		return next, err
	}
	session.lc.LastTokenNonce = next.Nonce
	return next, nil
}

func (session *ledgerSession) blockAt(nonce uint64) (common_types.EthereumBlockRecord, bool, error) {
	var record common_types.EthereumBlockRecord
	ok, err := session.load(dataKey(nonce), &record)
	return record, ok, err
}

func (session *ledgerSession) appendBlock(record *common_types.EthereumBlockRecord) error {
	if err := session.insert(dataKey(record.Header.Number), record); err != nil {
		return err
	}
	session.lc.LastDataNonce = record.Header.Number
	return nil
}
