// Package compiler turns Solidity source into deployable artifacts through
// solc's standard JSON interface, either a local binary or the HTTP compile
// service.
package compiler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Mohsinsiddi/chainsim/internal/contract"
)

// SourceName is the file name sources are compiled under.
const SourceName = "Contract.sol"

// Compiler compiles one Solidity source file.
type Compiler interface {
	Compile(ctx context.Context, source string) (*Output, error)
}

// Input is solc's standard JSON input.
type Input struct {
	Language string            `json:"language"`
	Sources  map[string]Source `json:"sources"`
	Settings Settings          `json:"settings"`
}

type Source struct {
	Content string `json:"content"`
}

type Settings struct {
	Optimizer       *Optimizer                     `json:"optimizer,omitempty"`
	OutputSelection map[string]map[string][]string `json:"outputSelection"`
}

type Optimizer struct {
	Enabled bool `json:"enabled"`
	Runs    int  `json:"runs"`
}

// NewInput wraps source for compilation, requesting ABI and bytecode only.
func NewInput(source string) *Input {
	return &Input{
		Language: "Solidity",
		Sources:  map[string]Source{SourceName: {Content: source}},
		Settings: Settings{
			OutputSelection: map[string]map[string][]string{
				"*": {"*": {"abi", "evm.bytecode"}},
			},
		},
	}
}

// Output is solc's standard JSON output.
type Output struct {
	Errors    []Diagnostic                         `json:"errors,omitempty"`
	Contracts map[string]map[string]ContractOutput `json:"contracts,omitempty"`
}

// Diagnostic is one compiler message.
type Diagnostic struct {
	Severity         string          `json:"severity"`
	Type             string          `json:"type"`
	Component        string          `json:"component,omitempty"`
	Message          string          `json:"message"`
	FormattedMessage string          `json:"formattedMessage,omitempty"`
	SourceLocation   *SourceLocation `json:"sourceLocation,omitempty"`
}

type SourceLocation struct {
	File  string `json:"file"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// IsError reports whether the diagnostic fails compilation.
func (d Diagnostic) IsError() bool { return d.Severity == "error" }

func (d Diagnostic) String() string {
	if d.FormattedMessage != "" {
		return strings.TrimRight(d.FormattedMessage, "\n")
	}
	return fmt.Sprintf("%s: %s", d.Type, d.Message)
}

// ContractOutput is the per-contract part of Output.
type ContractOutput struct {
	ABI []contract.ABIEntry `json:"abi"`
	EVM struct {
		Bytecode struct {
			Object string `json:"object"`
		} `json:"bytecode"`
	} `json:"evm"`
}

// Errors is returned when compilation produced error diagnostics.
type Errors struct {
	Diagnostics []Diagnostic
}

func (e *Errors) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = d.String()
	}
	return fmt.Sprintf("compilation failed with %d error(s):\n%s", len(msgs), strings.Join(msgs, "\n"))
}

// Check returns *Errors when any diagnostic has severity error. Warnings
// and info messages never fail compilation.
func (o *Output) Check() error {
	var errs []Diagnostic
	for _, d := range o.Errors {
		if d.IsError() {
			errs = append(errs, d)
		}
	}
	if len(errs) > 0 {
		return &Errors{Diagnostics: errs}
	}
	return nil
}

// Warnings returns the non-error diagnostics.
func (o *Output) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range o.Errors {
		if !d.IsError() {
			out = append(out, d)
		}
	}
	return out
}

// Names returns "file:Contract" for every compiled contract, sorted.
func (o *Output) Names() []string {
	var names []string
	for file, contracts := range o.Contracts {
		for name := range contracts {
			names = append(names, file+":"+name)
		}
	}
	sort.Strings(names)
	return names
}

// Select returns the artifact for the contract called name. With an empty
// name it picks the first contract of the first source file, preferring
// contracts that have bytecode over interfaces and abstract contracts.
func (o *Output) Select(name string) (*contract.Artifact, error) {
	files := make([]string, 0, len(o.Contracts))
	for f := range o.Contracts {
		files = append(files, f)
	}
	sort.Strings(files)

	if name != "" {
		for _, f := range files {
			if c, ok := o.Contracts[f][name]; ok {
				return c.artifact(name)
			}
		}
		return nil, fmt.Errorf("contract %q not in output (have %s)", name, strings.Join(o.Names(), ", "))
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("compiler output has no contracts")
	}
	contracts := o.Contracts[files[0]]
	names := make([]string, 0, len(contracts))
	for n := range contracts {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if contracts[n].EVM.Bytecode.Object != "" {
			return contracts[n].artifact(n)
		}
	}
	return contracts[names[0]].artifact(names[0])
}

func (c ContractOutput) artifact(name string) (*contract.Artifact, error) {
	code, err := contract.DecodeBytecode(c.EVM.Bytecode.Object)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &contract.Artifact{Name: name, ABI: c.ABI, Bytecode: code}, nil
}
