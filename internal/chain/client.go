// Package chain implements the market-registry and settlement-token
// collaborators on top of go-ethereum. Reads are batched into single JSON-RPC
// rounds; writes are signed locally and return handles that await finality.
package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client wraps a go-ethereum RPC connection and provides connectivity
// helpers. The raw rpc.Client is kept alongside ethclient because batched
// eth_call rounds go through BatchCallContext directly.
type Client struct {
	rpc *rpc.Client
	eth *ethclient.Client
}

// Dial connects to the chain RPC endpoint and verifies connectivity by
// fetching the chain id. It returns an error if the endpoint is unreachable.
func Dial(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", rpcURL, err)
	}

	eth := ethclient.NewClient(rpcClient)

	if _, err := eth.ChainID(ctx); err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("chain: chain id probe: %w", err)
	}

	return &Client{rpc: rpcClient, eth: eth}, nil
}

// Close closes the underlying RPC connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// Eth returns the typed ethclient for contract calls and receipt polling.
func (c *Client) Eth() *ethclient.Client {
	return c.eth
}

// RPC returns the raw RPC client for batched calls.
func (c *Client) RPC() *rpc.Client {
	return c.rpc
}
