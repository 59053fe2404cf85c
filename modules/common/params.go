package common

// Defaults for a fresh node configuration.
const (
	DEFAULT_API_PORT      = 8650
	DEFAULT_DB_NAME       = "bridge"
	DEFAULT_RELAY_CRON    = "@every 15s"
	DEFAULT_RELAY_BATCH   = 16
	DEFAULT_ETH_RPC       = "http://localhost:8545"
	DEFAULT_STORE_BACKEND = "badger"
)
