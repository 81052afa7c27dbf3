package types

// PollOptions tunes one blocking request. Zero values fall back to the
// configured defaults.
type PollOptions struct {
	PollIntervalMs int64 `json:"poll_interval_ms,optional"`
	TimeoutSeconds int64 `json:"timeout_seconds,optional"`
}

// ConfirmationsReq waits until tx_hash is threshold blocks deep. A missing
// threshold uses Verify.ConfirmThreshold.
type ConfirmationsReq struct {
	Chain     string `json:"chain"`
	TxHash    string `json:"tx_hash"`
	Threshold uint64 `json:"threshold,optional"`
	PollOptions
}

type ConfirmationsResp struct {
	Chain         string `json:"chain"`
	TxHash        string `json:"tx_hash"`
	Confirmations uint64 `json:"confirmations"`
	Threshold     uint64 `json:"threshold"`
	BlockNumber   uint64 `json:"block_number"`
	ExplorerUrl   string `json:"explorer_url"`
}

// ValidateReq waits until tx_hash is mined and reports its receipt status.
type ValidateReq struct {
	Chain  string `json:"chain"`
	TxHash string `json:"tx_hash"`
	PollOptions
}

type ValidateResp struct {
	Chain       string `json:"chain"`
	TxHash      string `json:"tx_hash"`
	Success     bool   `json:"success"`
	State       string `json:"state"` // pending/mined_success/mined_failed/fatal_error/cancelled
	BlockNumber uint64 `json:"block_number,omitempty"`
	ExplorerUrl string `json:"explorer_url"`
	Error       string `json:"error,omitempty"`
}

// ValidateBatchReq validates several hashes on one chain concurrently.
type ValidateBatchReq struct {
	Chain    string   `json:"chain"`
	TxHashes []string `json:"tx_hashes"`
	PollOptions
}

type ValidateBatchResp struct {
	Chain   string         `json:"chain"`
	Results []ValidateResp `json:"results"`
	Success int            `json:"success_count"`
	Failed  int            `json:"failed_count"`
}

// VerifyReq checks that tx_hash carries a coin transfer, or a call to
// token_address when it is set.
type VerifyReq struct {
	Chain        string `json:"chain"`
	TxHash       string `json:"tx_hash"`
	TokenAddress string `json:"token_address,optional"`
	PollOptions
}

// VerifyDataReq checks receiver and amount as well. Amount is in whole
// units, e.g. "0.5" for half a token.
type VerifyDataReq struct {
	Chain        string `json:"chain"`
	TxHash       string `json:"tx_hash"`
	Receiver     string `json:"receiver"`
	Amount       string `json:"amount"`
	TokenAddress string `json:"token_address,optional"`
	PollOptions
}

type VerifyResp struct {
	Chain        string `json:"chain"`
	TxHash       string `json:"tx_hash"`
	Kind         string `json:"kind"` // coin/token
	TokenAddress string `json:"token_address,omitempty"`
	Verified     bool   `json:"verified"`
	State        string `json:"state"`
	ExplorerUrl  string `json:"explorer_url"`
}

type FeeReq struct {
	Chain  string `json:"chain"`
	TxHash string `json:"tx_hash"`
}

type FeeResp struct {
	Chain    string `json:"chain"`
	TxHash   string `json:"tx_hash"`
	GasUsed  uint64 `json:"gas_used"`
	GasPrice string `json:"gas_price"` // wei
	Fee      string `json:"fee"`       // native units
	Symbol   string `json:"symbol"`
}

// EventsReq lists the token events a mined transaction emitted.
type EventsReq struct {
	Chain  string `json:"chain"`
	TxHash string `json:"tx_hash"`
}

type TokenEventItem struct {
	Type      string `json:"type"` // Transfer/Approval
	Token     string `json:"token"`
	From      string `json:"from"`
	To        string `json:"to"`
	RawAmount string `json:"raw_amount"`
	Amount    string `json:"amount,omitempty"` // 按 decimals 换算，读取失败时为空
	LogIndex  uint   `json:"log_index"`
}

type EventsResp struct {
	Chain       string           `json:"chain"`
	TxHash      string           `json:"tx_hash"`
	BlockNumber uint64           `json:"block_number"`
	Events      []TokenEventItem `json:"events"`
}

// HistoryReq lists stored verification results for a hash, or the newest
// results across all hashes when tx_hash is empty.
type HistoryReq struct {
	Chain  string `json:"chain,optional"`
	TxHash string `json:"tx_hash,optional"`
	Limit  int    `json:"limit,default=20"`
}

type HistoryItem struct {
	Chain        string `json:"chain"`
	TxHash       string `json:"tx_hash"`
	Kind         string `json:"kind"`
	TokenAddress string `json:"token_address,omitempty"`
	Receiver     string `json:"receiver,omitempty"`
	Amount       string `json:"amount,omitempty"`
	Result       bool   `json:"result"`
	State        string `json:"state"`
	Error        string `json:"error,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}

type HistoryResp struct {
	TxHash string        `json:"tx_hash,omitempty"`
	Items  []HistoryItem `json:"items"`
}
