package contract

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"
)

// ErrContractNotFound is returned when a contract is not found.
var ErrContractNotFound = errors.New("contract not found")

// Entry kinds.
const (
	KindDeployed = "deployed" // deployed by chainsim
	KindImported = "imported" // ABI loaded from a file
)

// Entry is a stored contract.
type Entry struct {
	Name       string     `json:"name"`
	Network    string     `json:"network"`
	Address    string     `json:"address"`
	ABI        []ABIEntry `json:"abi"`
	Kind       string     `json:"kind,omitempty"`
	Source     string     `json:"source,omitempty"` // .sol file, artifact path or lesson id
	Deployer   string     `json:"deployer,omitempty"`
	TxHash     string     `json:"tx_hash,omitempty"`
	DeployedAt string     `json:"deployed_at,omitempty"`
}

// Interface parses the entry's ABI.
func (e *Entry) Interface() *Interface { return NewInterface(e.ABI) }

// Registry stores and retrieves contract entries.
type Registry struct {
	path      string
	contracts map[string]*Entry // key: "name@network"
}

// NewRegistry creates a Registry backed by a JSON file.
func NewRegistry(path string) *Registry {
	return &Registry{
		path:      path,
		contracts: make(map[string]*Entry),
	}
}

// Load reads stored contracts from disk.
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing %s: %w", r.path, err)
	}

	for i := range entries {
		e := &entries[i]
		r.contracts[key(e.Name, e.Network)] = e
	}
	return nil
}

// Save writes all contracts to disk, sorted by name then network.
func (r *Registry) Save() error {
	all := r.All()
	entries := make([]Entry, len(all))
	for i, e := range all {
		entries[i] = *e
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o600)
}

// Add adds or updates a contract entry.
func (r *Registry) Add(e *Entry) {
	r.contracts[key(e.Name, e.Network)] = e
}

// Get returns a contract by name and network.
func (r *Registry) Get(name, network string) (*Entry, error) {
	e, ok := r.contracts[key(name, network)]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, network)
	}
	return e, nil
}

// All returns all registered contracts sorted by name, then network.
func (r *Registry) All() []*Entry {
	out := make([]*Entry, 0, len(r.contracts))
	for _, e := range r.contracts {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Network < out[j].Network
	})
	return out
}

// Remove deletes a contract entry.
func (r *Registry) Remove(name, network string) error {
	k := key(name, network)
	if _, ok := r.contracts[k]; !ok {
		return fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, network)
	}
	delete(r.contracts, k)
	return nil
}

func key(name, network string) string {
	return name + "@" + network
}
