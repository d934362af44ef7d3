package config

// Provider modes.
const (
	ProviderNode     = "node"     // node-managed accounts (eth_sendTransaction)
	ProviderKeystore = "keystore" // local key from the OS keychain, signed here
)

// Config holds all chainsim configuration.
type Config struct {
	DefaultNetwork    string            `json:"default_network"`
	DefaultWallet     string            `json:"default_wallet"`
	Provider          string            `json:"provider"` // "node" | "keystore"
	Networks          map[string]string `json:"networks"` // name -> RPC URL
	CompilerURL       string            `json:"compiler_url"`
	SolcPath          string            `json:"solc_path,omitempty"` // compile locally instead of via CompilerURL
	LogLevel          string            `json:"log_level,omitempty"`
	MetricsAddr       string            `json:"metrics_addr,omitempty"`
	TelemetryEndpoint string            `json:"telemetry_endpoint,omitempty"`

	// internal: config dir path used for Save()
	configDir string
}
