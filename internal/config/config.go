package config

import (
	"time"

	"github.com/zeromicro/go-zero/rest"
)

type ChainConf struct {
	Name    string `json:"Name"`
	RpcUrl  string `json:"RpcUrl"`
	ChainId int64  `json:"ChainId,optional"`
	// Native currency overrides; zero values fall back to the known network registry.
	NativeSymbol   string `json:"NativeSymbol,optional"`
	NativeDecimals uint8  `json:"NativeDecimals,optional"`
	// RateLimit caps RPC calls per second against RpcUrl; 0 disables it.
	RateLimit float64 `json:"RateLimit,default=0"`
	RateBurst int     `json:"RateBurst,default=1"`
}

// VerifyConf controls the polling loops. MaxAttempts of 0 polls until the
// caller cancels; WaitTimeout bounds a single HTTP request that waits.
type VerifyConf struct {
	PollInterval     time.Duration `json:",default=1s"`
	ConfirmThreshold uint64        `json:",default=10"`
	MaxAttempts      int           `json:",default=0"`
	Multiplier       float64       `json:",default=1"`
	MaxInterval      time.Duration `json:",default=30s"`
	BatchConcurrency int           `json:",default=8"`
	WaitTimeout      time.Duration `json:",default=10m"`
	// StrictTokenContract additionally requires a token transfer to be sent to the token contract itself.
	StrictTokenContract bool `json:",default=false"`
	// AcceptTransferFrom also reads transferFrom(from,to,value) calls as token transfers.
	AcceptTransferFrom bool `json:",default=false"`
}

type Config struct {
	rest.RestConf
	Postgres struct {
		DSN string `json:",optional"`
	}
	Verify VerifyConf
	// Chains maps a chain name (e.g., "BSC") to its configuration.
	Chains map[string]ChainConf
}
