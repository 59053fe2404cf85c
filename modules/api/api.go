package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"bridge-node/lib/logger"
	a "bridge-node/modules/aggregate"
	"bridge-node/modules/common/common_types"
	"bridge-node/modules/db/bridge/events"
	ledgerSystem "bridge-node/modules/ledger-system"

	"github.com/chebyrash/promise"
	"github.com/moznion/go-optional"
	"github.com/rs/cors"
)

const (
	requestTimeout  = 15 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Ledger is the read side of the ledger served over HTTP.
type Ledger interface {
	Status(ctx context.Context) (ledgerSystem.Status, error)
	CurrentState(ctx context.Context, owner common_types.AccountID) (optional.Option[common_types.AccountState], error)
	StateAt(ctx context.Context, owner common_types.AccountID, nonce uint64) (optional.Option[common_types.AccountState], error)
	LatestToken(ctx context.Context) (optional.Option[common_types.TokenSupply], error)
	TokenAt(ctx context.Context, nonce uint64) (optional.Option[common_types.TokenSupply], error)
	BlockAt(ctx context.Context, number uint64) (optional.Option[common_types.EthereumBlockRecord], error)
}

// EventIndex is optional; without it the events route answers 404.
type EventIndex interface {
	ListByAccount(ctx context.Context, account string, limit int64) ([]events.EventRecord, error)
}

type Server struct {
	port   int
	ledger Ledger
	index  EventIndex
	log    logger.Logger

	server   *http.Server
	listener net.Listener
}

var _ a.Plugin = &Server{}

func New(port int, ledger Ledger, index EventIndex, log logger.Logger) *Server {
	return &Server{
		port:   port,
		ledger: ledger,
		index:  index,
		log:    log,
	}
}

// Handler serves the query routes with permissive CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /token", s.handleLatestToken)
	mux.HandleFunc("GET /token/{nonce}", s.handleTokenAt)
	mux.HandleFunc("GET /accounts/{owner}", s.handleCurrentState)
	mux.HandleFunc("GET /accounts/{owner}/{nonce}", s.handleStateAt)
	mux.HandleFunc("GET /accounts/{owner}/events", s.handleEvents)
	mux.HandleFunc("GET /blocks/{number}", s.handleBlock)

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}).Handler(http.TimeoutHandler(mux, requestTimeout, `{"error":"timeout"}`))
}

// Init implements aggregate.Plugin.
func (s *Server) Init() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return nil
}

// Start implements aggregate.Plugin. It resolves once the port is bound.
func (s *Server) Start() *promise.Promise[any] {
	return promise.New(func(resolve func(any), reject func(error)) {
		listener, err := net.Listen("tcp", s.server.Addr)
		if err != nil {
			reject(fmt.Errorf("api listen %s: %w", s.server.Addr, err))
			return
		}
		s.listener = listener
		s.log.Info("query api listening", "addr", listener.Addr().String())

		go func() {
			if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("query api stopped", "err", err)
			}
		}()
		resolve(nil)
	})
}

// Stop implements aggregate.Plugin.
func (s *Server) Stop() error {
	if s.server == nil || s.listener == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Port is the bound port, 0 before Start.
func (s *Server) Port() int {
	if s.listener == nil {
		return 0
	}
	return s.listener.Addr().(*net.TCPAddr).Port
}
