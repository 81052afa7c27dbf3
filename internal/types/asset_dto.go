package types

// CoinReq 查询链原生币信息，address 为空时只返回币种信息
type CoinReq struct {
	Chain   string `json:"chain"`
	Address string `json:"address,optional"`
}

type CoinResp struct {
	Chain    string `json:"chain"`
	ChainId  int64  `json:"chain_id"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Address  string `json:"address,omitempty"`
	Balance  string `json:"balance,omitempty"` // 按 decimals 换算后的数量
	RawValue string `json:"raw_value,omitempty"`
}

// TokenReq 查询 ERC20 代币信息，owner/spender 可选
type TokenReq struct {
	Chain        string `json:"chain"`
	TokenAddress string `json:"token_address"`
	Owner        string `json:"owner,optional"`
	Spender      string `json:"spender,optional"`
}

type TokenResp struct {
	Chain        string `json:"chain"`
	TokenAddress string `json:"token_address"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Decimals     uint8  `json:"decimals"`
	TotalSupply  string `json:"total_supply"`
	Owner        string `json:"owner,omitempty"`
	Balance      string `json:"balance,omitempty"`
	Spender      string `json:"spender,omitempty"`
	Allowance    string `json:"allowance,omitempty"`
	Unlimited    bool   `json:"unlimited,omitempty"`
}
