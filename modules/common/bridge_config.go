package common

import (
	"fmt"

	"bridge-node/modules/common/common_types"
	"bridge-node/modules/config"
)

type RelayConfig struct {
	Enabled bool
	RpcURL  string `validate:"omitempty,url"`
	// cron spec, seconds field optional ("@every 15s", "*/30 * * * * *")
	Schedule         string `validate:"required"`
	Relayer          string `validate:"required_if=Enabled true"`
	MaxBlocksPerTick uint64 `validate:"min=1,max=1024"`
}

type bridgeConfig struct {
	StoreBackend string `validate:"oneof=memory flatfs badger"`
	Hasher       string `validate:"oneof=blake2 keccak"`
	ApiPort      int    `validate:"min=0,max=65535"`
	LogLevel     string `validate:"oneof=debug info warn error"`

	// empty disables the mongo event index
	EventsDbURI  string `validate:"omitempty,uri"`
	EventsDbName string `validate:"required_with=EventsDbURI"`

	Relay RelayConfig
}

type bridgeConfigStruct struct {
	*config.Config[bridgeConfig]
}

type BridgeConfig = *bridgeConfigStruct

func NewBridgeConfig(dataDir ...string) BridgeConfig {
	var dataDirPtr *string
	if len(dataDir) > 0 {
		dataDirPtr = &dataDir[0]
	}

	return &bridgeConfigStruct{config.New(
		bridgeConfig{
			StoreBackend: DEFAULT_STORE_BACKEND,
			Hasher:       "blake2",
			ApiPort:      DEFAULT_API_PORT,
			LogLevel:     "info",
			EventsDbName: DEFAULT_DB_NAME,
			Relay: RelayConfig{
				RpcURL:           DEFAULT_ETH_RPC,
				Schedule:         DEFAULT_RELAY_CRON,
				MaxBlocksPerTick: DEFAULT_RELAY_BATCH,
			},
		},
		dataDirPtr,
	)}
}

// RelayerAccount parses the account relayed blocks are recorded as.
func (bc *bridgeConfigStruct) RelayerAccount() (common_types.AccountID, error) {
	id, err := common_types.ParseAccountID(bc.Get().Relay.Relayer)
	if err != nil {
		return id, fmt.Errorf("relay account: %w", err)
	}
	return id, nil
}

func (bc *bridgeConfigStruct) SetRelay(enabled bool, rpcURL string, relayer string) error {
	return bc.Update(func(c *bridgeConfig) {
		c.Relay.Enabled = enabled
		if rpcURL != "" {
			c.Relay.RpcURL = rpcURL
		}
		if relayer != "" {
			c.Relay.Relayer = relayer
		}
	})
}

func (bc *bridgeConfigStruct) SetEventsDb(uri string, name string) error {
	return bc.Update(func(c *bridgeConfig) {
		c.EventsDbURI = uri
		if name != "" {
			c.EventsDbName = name
		}
	})
}

// DbURI implements db.DbConfig.
func (bc *bridgeConfigStruct) DbURI() string {
	return bc.Get().EventsDbURI
}

// DbName implements db.DbConfig.
func (bc *bridgeConfigStruct) DbName() string {
	return bc.Get().EventsDbName
}
