package ethRelay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bridge-node/lib/logger"
	agg "bridge-node/modules/aggregate"
	"bridge-node/modules/common"
	"bridge-node/modules/common/common_types"
	ledgerSystem "bridge-node/modules/ledger-system"

	"github.com/JustinKnueppel/go-result"
	"github.com/chebyrash/promise"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/robfig/cron/v3"
)

const fetchTimeout = 15 * time.Second

// standard five field specs, an optional leading seconds field, or @every
var scheduleParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

var ErrRelayBusy = errors.New("relay tick already running")

// Ledger is the slice of the ledger the relay drives.
type Ledger interface {
	Status(ctx context.Context) (ledgerSystem.Status, error)
	RecordHeader(ctx context.Context, caller common_types.AccountID, record common_types.EthereumBlockRecord) error
}

// Relay follows an Ethereum node and records every new block into the
// ledger as the configured relayer account.
type Relay struct {
	conf    common.RelayConfig
	relayer common_types.AccountID
	ledger  Ledger
	log     logger.Logger

	dial    func(ctx context.Context, rpcURL string) (BlockFetcher, error)
	fetcher BlockFetcher
	signer  types.Signer

	cron *cron.Cron
	stop chan struct{}
	busy sync.Mutex
}

var _ agg.Plugin = &Relay{}

func New(conf common.RelayConfig, relayer common_types.AccountID, ledger Ledger, log logger.Logger) *Relay {
	return &Relay{
		conf:    conf,
		relayer: relayer,
		ledger:  ledger,
		log:     log,
		dial:    DialFetcher,
		cron:    cron.New(cron.WithParser(scheduleParser)),
		stop:    make(chan struct{}),
	}
}

// NewWithFetcher uses fetcher instead of dialing conf.RpcURL.
func NewWithFetcher(conf common.RelayConfig, relayer common_types.AccountID, ledger Ledger, fetcher BlockFetcher, log logger.Logger) *Relay {
	r := New(conf, relayer, ledger, log)
	r.fetcher = fetcher
	return r
}

// Init implements aggregate.Plugin.
func (r *Relay) Init() error {
	if r.conf.MaxBlocksPerTick == 0 {
		return fmt.Errorf("relay: MaxBlocksPerTick must be positive")
	}
	if r.fetcher != nil {
		return nil
	}
	if r.conf.RpcURL == "" {
		return fmt.Errorf("relay: no rpc url configured")
	}
	fetcher, err := r.dial(context.Background(), r.conf.RpcURL)
	if err != nil {
		return err
	}
	r.fetcher = fetcher
	return nil
}

// Start implements aggregate.Plugin.
func (r *Relay) Start() *promise.Promise[any] {
	return promise.New(func(resolve func(any), reject func(error)) {
		// cancelled when the stop chan is closed
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-r.stop
			cancel()
		}()

		_, err := r.cron.AddFunc(r.conf.Schedule, func() {
			select {
			case <-r.stop:
				return
			default:
			}
			if _, err := r.Tick(ctx); err != nil && !errors.Is(err, ErrRelayBusy) {
				r.log.Error("relay tick failed", "err", err)
			}
		})
		if err != nil {
			reject(fmt.Errorf("relay schedule %q: %w", r.conf.Schedule, err))
			return
		}
		r.cron.Start()
		resolve(nil)
	})
}

// Stop implements aggregate.Plugin.
func (r *Relay) Stop() error {
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
	<-r.cron.Stop().Done()
	if r.fetcher != nil {
		r.fetcher.Close()
	}
	return nil
}

func (r *Relay) chainSigner(ctx context.Context) (types.Signer, error) {
	if r.signer != nil {
		return r.signer, nil
	}
	chainID, err := r.fetcher.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}
	r.signer = types.LatestSignerForChainID(chainID)
	return r.signer, nil
}

func (r *Relay) fetchRecord(ctx context.Context, number uint64) result.Result[common_types.EthereumBlockRecord] {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	signer, err := r.chainSigner(ctx)
	if err != nil {
		return result.Err[common_types.EthereumBlockRecord](err)
	}
	header, txs, err := r.fetcher.FetchBlock(ctx, number)
	if err != nil {
		return result.Err[common_types.EthereumBlockRecord](err)
	}
	if header.Number == nil || header.Number.Uint64() != number {
		return result.Err[common_types.EthereumBlockRecord](fmt.Errorf("asked for block %d, node returned %v", number, header.Number))
	}
	record, err := FromEthereum(header, txs, signer)
	if err != nil {
		return result.Err[common_types.EthereumBlockRecord](err)
	}
	return result.Ok(record)
}

// Tick records the blocks following the ledger's last data-nonce, at most
// MaxBlocksPerTick of them, and returns how many were recorded. Ticks never
// overlap.
func (r *Relay) Tick(ctx context.Context) (int, error) {
	if !r.busy.TryLock() {
		return 0, ErrRelayBusy
	}
	defer r.busy.Unlock()

	status, err := r.ledger.Status(ctx)
	if err != nil {
		return 0, err
	}
	if !status.Initialized {
		r.log.Debug("ledger not initialized, nothing to relay")
		return 0, nil
	}

	latest, err := r.fetcher.LatestNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read latest block: %w", err)
	}

	recorded := 0
	next := status.LastDataNonce + 1
	for ; next <= latest && uint64(recorded) < r.conf.MaxBlocksPerTick; next++ {
		res := r.fetchRecord(ctx, next)
		if res.IsErr() {
			return recorded, res.UnwrapErr()
		}
		if err := r.ledger.RecordHeader(ctx, r.relayer, res.Unwrap()); err != nil {
			return recorded, fmt.Errorf("failed to record block %d: %w", next, err)
		}
		recorded++
	}
	if recorded > 0 {
		r.log.Info("relayed blocks", "count", recorded, "last", next-1, "head", latest)
	}
	return recorded, nil
}
