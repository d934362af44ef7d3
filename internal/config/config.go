package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	defaultNetwork     = "local"
	defaultRPC         = "http://localhost:8545"
	defaultCompilerURL = "http://localhost:4000"

	// EnvDir overrides the config directory.
	EnvDir = "CHAINSIM_CONFIG_DIR"

	configFile    = "config.json"
	walletsFile   = "wallets.json"
	contractsFile = "contracts.json"
)

// Load reads config from dir (or creates defaults). An empty dir falls back
// to $CHAINSIM_CONFIG_DIR, then ~/.chainsim.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv(EnvDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".chainsim")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.Networks == nil {
		cfg.Networks = make(map[string]string)
	}
	if _, ok := cfg.Networks[defaultNetwork]; !ok {
		cfg.Networks[defaultNetwork] = defaultRPC
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderNode, ProviderKeystore:
	default:
		return fmt.Errorf("invalid provider %q in config (want %q or %q)", c.Provider, ProviderNode, ProviderKeystore)
	}
	if _, ok := c.Networks[c.DefaultNetwork]; !ok {
		return fmt.Errorf("default network %q has no RPC URL configured", c.DefaultNetwork)
	}
	return nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// RPC returns the RPC URL of a network; "" selects the default network.
func (c *Config) RPC(network string) (string, error) {
	if network == "" {
		network = c.DefaultNetwork
	}
	url, ok := c.Networks[network]
	if !ok {
		return "", fmt.Errorf("unknown network %q (known: %v)", network, c.NetworkNames())
	}
	return url, nil
}

// SetNetwork adds or replaces a network.
func (c *Config) SetNetwork(name, url string) {
	if c.Networks == nil {
		c.Networks = make(map[string]string)
	}
	c.Networks[name] = url
}

// RemoveNetwork deletes a network. The default network cannot be removed.
func (c *Config) RemoveNetwork(name string) error {
	if name == c.DefaultNetwork {
		return fmt.Errorf("cannot remove the default network %q", name)
	}
	if _, ok := c.Networks[name]; !ok {
		return fmt.Errorf("network %q not found", name)
	}
	delete(c.Networks, name)
	return nil
}

// NetworkNames returns the configured network names, sorted.
func (c *Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for n := range c.Networks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// ContractsPath returns the path of the contract registry file.
func (c *Config) ContractsPath() string {
	return filepath.Join(c.configDir, contractsFile)
}

// WalletsPath returns the path of the wallet metadata file.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork: defaultNetwork,
		Provider:       ProviderNode,
		Networks:       map[string]string{defaultNetwork: defaultRPC},
		CompilerURL:    defaultCompilerURL,
		configDir:      dir,
	}
}
