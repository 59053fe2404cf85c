package ethRelay

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// BlockFetcher reads finalized blocks from an Ethereum node.
type BlockFetcher interface {
	ChainID(ctx context.Context) (*big.Int, error)
	LatestNumber(ctx context.Context) (uint64, error)
	FetchBlock(ctx context.Context, number uint64) (*types.Header, types.Transactions, error)
	Close()
}

type rpcFetcher struct {
	client *ethclient.Client
}

var _ BlockFetcher = &rpcFetcher{}

// DialFetcher connects to a JSON-RPC endpoint.
func DialFetcher(ctx context.Context, rpcURL string) (BlockFetcher, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}
	return &rpcFetcher{client}, nil
}

func (f *rpcFetcher) ChainID(ctx context.Context) (*big.Int, error) {
	return f.client.ChainID(ctx)
}

func (f *rpcFetcher) LatestNumber(ctx context.Context) (uint64, error) {
	return f.client.BlockNumber(ctx)
}

func (f *rpcFetcher) FetchBlock(ctx context.Context, number uint64) (*types.Header, types.Transactions, error) {
	block, err := f.client.BlockByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch block %d: %w", number, err)
	}
	return block.Header(), block.Transactions(), nil
}

func (f *rpcFetcher) Close() {
	f.client.Close()
}
