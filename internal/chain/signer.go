package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Signer holds the acting wallet's secp256k1 key and produces transaction
// options bound to the target chain.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

// NewSigner creates a Signer for the parsed wallet key and the target chain
// id. Key parsing and decryption live in the keystore package.
func NewSigner(key *ecdsa.PrivateKey, chainID int64) *Signer {
	return &Signer{
		key:     key,
		address: ethcrypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(chainID),
	}
}

// Address returns the wallet address in lowercase hex, the normal form used
// throughout the domain layer.
func (s *Signer) Address() string {
	return strings.ToLower(s.address.Hex())
}

// TransactOpts returns fresh transaction options carrying the given context.
// Gas price and nonce are left to the backend's estimation.
func (s *Signer) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("chain: build transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}
