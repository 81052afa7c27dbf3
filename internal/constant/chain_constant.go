package constant

import "fmt"

type Chain string

const (
	ChainETH         Chain = "ETH"
	ChainETHSepolia  Chain = "ETH-Sepolia"
	ChainBSC         Chain = "BSC"
	ChainBSCTestNet  Chain = "BSC-TestNet"
	ChainPolygon     Chain = "Polygon"
	ChainPolygonAmoy Chain = "Polygon-Amoy"
	ChainArbitrum    Chain = "Arbitrum"
	ChainOptimism    Chain = "Optimism"
	ChainAvalanche   Chain = "Avalanche"
)

// NativeCurrency describes the coin a network pays gas in.
type NativeCurrency struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// Network is the static registry entry for a known chain.
type Network struct {
	Chain    Chain
	ChainId  int64
	Testnet  bool
	Native   NativeCurrency
	Explorer string // transaction page prefix
}

var ether = NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18}

// KnownNetworks is used to fill in whatever a chain's config leaves out.
var KnownNetworks = map[Chain]Network{
	ChainETH:         {Chain: ChainETH, ChainId: 1, Native: ether, Explorer: "https://etherscan.io/tx/"},
	ChainETHSepolia:  {Chain: ChainETHSepolia, ChainId: 11155111, Testnet: true, Native: NativeCurrency{Name: "Sepolia Ether", Symbol: "ETH", Decimals: 18}, Explorer: "https://sepolia.etherscan.io/tx/"},
	ChainBSC:         {Chain: ChainBSC, ChainId: 56, Native: NativeCurrency{Name: "BNB", Symbol: "BNB", Decimals: 18}, Explorer: "https://bscscan.com/tx/"},
	ChainBSCTestNet:  {Chain: ChainBSCTestNet, ChainId: 97, Testnet: true, Native: NativeCurrency{Name: "Test BNB", Symbol: "tBNB", Decimals: 18}, Explorer: "https://testnet.bscscan.com/tx/"},
	ChainPolygon:     {Chain: ChainPolygon, ChainId: 137, Native: NativeCurrency{Name: "POL", Symbol: "POL", Decimals: 18}, Explorer: "https://polygonscan.com/tx/"},
	ChainPolygonAmoy: {Chain: ChainPolygonAmoy, ChainId: 80002, Testnet: true, Native: NativeCurrency{Name: "POL", Symbol: "POL", Decimals: 18}, Explorer: "https://amoy.polygonscan.com/tx/"},
	ChainArbitrum:    {Chain: ChainArbitrum, ChainId: 42161, Native: ether, Explorer: "https://arbiscan.io/tx/"},
	ChainOptimism:    {Chain: ChainOptimism, ChainId: 10, Native: ether, Explorer: "https://optimistic.etherscan.io/tx/"},
	ChainAvalanche:   {Chain: ChainAvalanche, ChainId: 43114, Native: NativeCurrency{Name: "Avalanche", Symbol: "AVAX", Decimals: 18}, Explorer: "https://snowtrace.io/tx/"},
}

// LookupNetwork finds a known network by its chain name.
func LookupNetwork(chain string) (Network, bool) {
	n, ok := KnownNetworks[Chain(chain)]
	return n, ok
}

// ExplorerUrl builds a block explorer link for txHash, or "" for unknown chains.
func ExplorerUrl(chain, txHash string) string {
	n, ok := LookupNetwork(chain)
	if !ok || n.Explorer == "" {
		return ""
	}
	return fmt.Sprintf("%s%s", n.Explorer, txHash)
}
