package contract

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goccy/go-json"
)

// Artifact is a compiled contract: its ABI and deployment bytecode. It is
// produced by the compiler or read from a Hardhat/Foundry artifact file.
type Artifact struct {
	Name     string
	ABI      []ABIEntry
	Bytecode []byte
}

// Deployable reports whether the artifact carries creation code.
func (a *Artifact) Deployable() bool { return len(a.Bytecode) > 0 }

// ReadABI loads an ABI from a file holding either a raw ABI array or a
// Hardhat/Foundry artifact object with an "abi" key.
func ReadABI(path string) ([]ABIEntry, error) {
	data, err := readNonEmpty(path)
	if err != nil {
		return nil, err
	}

	var artifact struct {
		ABI json.RawMessage `json:"abi"`
	}
	src := data
	if json.Unmarshal(data, &artifact) == nil && len(artifact.ABI) > 1 && artifact.ABI[0] == '[' {
		src = artifact.ABI
	}
	abi, err := ParseABI(src)
	if err != nil {
		return nil, err
	}
	if err := validateABI(abi, path); err != nil {
		return nil, err
	}
	return abi, nil
}

// ReadArtifact loads ABI and bytecode from a Hardhat ("bytecode": "0x...")
// or Foundry ("bytecode": {"object": "0x..."}) artifact. Interfaces and
// abstract contracts, which have no bytecode, are rejected.
func ReadArtifact(path string) (*Artifact, error) {
	data, err := readNonEmpty(path)
	if err != nil {
		return nil, err
	}

	var raw struct {
		ContractName string          `json:"contractName"`
		ABI          json.RawMessage `json:"abi"`
		Bytecode     json.RawMessage `json:"bytecode"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid artifact JSON: %w", err)
	}
	if len(raw.ABI) < 2 || raw.ABI[0] != '[' {
		return nil, fmt.Errorf("artifact has no \"abi\" array: %s", path)
	}
	abi, err := ParseABI(raw.ABI)
	if err != nil {
		return nil, fmt.Errorf("parsing artifact ABI: %w", err)
	}
	if err := validateABI(abi, path); err != nil {
		return nil, err
	}
	if len(raw.Bytecode) == 0 {
		return nil, fmt.Errorf("artifact has no bytecode (interface or abstract contract?): %s", path)
	}

	bcHex, err := extractBytecodeHex(raw.Bytecode)
	if err != nil {
		return nil, err
	}
	code, err := DecodeBytecode(bcHex)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("artifact bytecode is empty (interface or abstract contract?): %s", path)
	}
	return &Artifact{Name: raw.ContractName, ABI: abi, Bytecode: code}, nil
}

// ParseABI decodes a JSON ABI array.
func ParseABI(data []byte) ([]ABIEntry, error) {
	var abi []ABIEntry
	if err := json.Unmarshal(data, &abi); err != nil {
		data = bytes.TrimSpace(data)
		if len(data) > 0 && data[0] == '{' {
			return nil, fmt.Errorf("file is a JSON object, not an ABI array; artifacts must have an \"abi\" key")
		}
		return nil, fmt.Errorf("invalid ABI JSON: %w", err)
	}
	return abi, nil
}

// DecodeBytecode decodes creation code given as hex, with or without 0x.
// solc leaves "__$...$__" placeholders for unlinked libraries; those are
// reported rather than decoded.
func DecodeBytecode(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "__") {
		return nil, fmt.Errorf("bytecode has unlinked library placeholders")
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	if s == "0x" {
		return nil, nil
	}
	code, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode hex: %w", err)
	}
	return code, nil
}

func readNonEmpty(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("file is empty: %s", path)
	}
	return data, nil
}

// extractBytecodeHex accepts the Hardhat string form and the Foundry
// {"object": "0x..."} form.
func extractBytecodeHex(raw json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strings.TrimSpace(str), nil
	}

	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Object != "" {
		return strings.TrimSpace(obj.Object), nil
	}

	return "", fmt.Errorf("bytecode field is neither a hex string nor a {\"object\":\"0x...\"} object")
}

// validateABI checks that the parsed ABI has at least one function, event
// or constructor.
func validateABI(abi []ABIEntry, path string) error {
	if len(abi) == 0 {
		return fmt.Errorf("ABI is empty: %s", path)
	}
	for _, e := range abi {
		if e.Type == "function" || e.Type == "event" || e.Type == "constructor" {
			return nil
		}
	}
	return fmt.Errorf("ABI has %d entries but none are functions or events: %s", len(abi), path)
}
