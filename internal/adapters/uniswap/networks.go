package uniswap

import "github.com/ethereum/go-ethereum/common"

// NetworkConfig describes the venue contracts for one chain.
type NetworkConfig struct {
	Name             string
	RPCBase          string // Alchemy endpoint prefix; the API key is appended
	WETHAddress      common.Address
	RouterV2Address  common.Address
	FactoryV2Address common.Address
	ExplorerURL      string
}

var networks = map[string]NetworkConfig{
	"mainnet": {
		Name:             "mainnet",
		RPCBase:          "https://eth-mainnet.alchemyapi.io/v2/",
		WETHAddress:      common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		RouterV2Address:  common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"),
		FactoryV2Address: common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f"),
		ExplorerURL:      "https://etherscan.io",
	},
	"goerli": {
		Name:             "goerli",
		RPCBase:          "https://eth-goerli.alchemyapi.io/v2/",
		WETHAddress:      common.HexToAddress("0xB4FBF271143F4FBf7B91A5ded31805e42b2208d6"),
		RouterV2Address:  common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"),
		FactoryV2Address: common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f"),
		ExplorerURL:      "https://goerli.etherscan.io",
	},
}

// Network looks up the contract catalogue for a provider name.
func Network(name string) (NetworkConfig, bool) {
	n, ok := networks[name]
	return n, ok
}

// RPCURL builds the JSON-RPC endpoint for this network.
func (n NetworkConfig) RPCURL(alchemyAPIKey string) string {
	return n.RPCBase + alchemyAPIKey
}
