package config

import "time"

// Gas limits used when the node cannot estimate.
const (
	GasLimitTransfer     = uint64(21_000)
	GasLimitContractCall = uint64(200_000)   // generic contract state-change call
	GasLimitDeploy       = uint64(3_000_000) // contract creation
)

// Timeouts shared by cmd and the invoke/binding packages.
const (
	RPCTimeout          = 30 * time.Second
	CompileTimeout      = 60 * time.Second
	TxConfirmTimeout    = 3 * time.Minute // standard transaction confirmation wait
	TxDeployTimeout     = 5 * time.Minute // contract deployment confirmation wait
	ReceiptPollInterval = 2 * time.Second
)
