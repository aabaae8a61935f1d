package chain

import (
	"math/big"
	"testing"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sainath5001/walrustruth/internal/domain"
)

func TestUnpackMarket_RoundTrip(t *testing.T) {
	in := marketView{
		Title:       "Will it rain tomorrow?",
		Description: "Resolved by the city weather station.",
		MetadataURI: "walrus://blob/abc123",
		Deadline:    1767225600,
		Status:      1,
		Outcome:     2,
		YesPool:     big.NewInt(5_000_000),
		NoPool:      big.NewInt(3_000_000),
		BettorCount: big.NewInt(42),
	}

	data, err := registryABI.Methods["getMarket"].Outputs.Pack(in)
	require.NoError(t, err)

	out, err := unpackMarket(data)
	require.NoError(t, err)
	assert.Equal(t, in.Title, out.Title)
	assert.Equal(t, in.Deadline, out.Deadline)
	assert.Equal(t, 0, in.YesPool.Cmp(out.YesPool))
	assert.Equal(t, 0, in.BettorCount.Cmp(out.BettorCount))
}

func TestUnpackWager_RoundTrip(t *testing.T) {
	in := wagerView{
		YesAmount: big.NewInt(1_500_000),
		NoAmount:  big.NewInt(0),
		Paid:      true,
	}

	data, err := registryABI.Methods["getWager"].Outputs.Pack(in)
	require.NoError(t, err)

	out, err := unpackWager(data)
	require.NoError(t, err)
	assert.Equal(t, 0, in.YesAmount.Cmp(out.YesAmount))
	assert.True(t, out.Paid)
}

func TestUnpackMarket_GarbageFails(t *testing.T) {
	_, err := unpackMarket([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestToDomainMarket(t *testing.T) {
	view := &marketView{
		Title:       "t",
		Deadline:    1767225600,
		Status:      7, // unknown enum values fall back to Open
		Outcome:     0,
		YesPool:     big.NewInt(1),
		NoPool:      big.NewInt(2),
		BettorCount: big.NewInt(3),
	}

	m := toDomainMarket(9, view)
	assert.Equal(t, uint64(9), m.ID)
	assert.Equal(t, domain.StatusOpen, m.Status)
	assert.Equal(t, domain.OutcomeUndecided, m.Outcome)
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), m.Deadline)
}

func TestNewSigner_Address(t *testing.T) {
	// Well-known test vector key.
	key, err := ethcrypto.HexToECDSA("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)

	s := NewSigner(key, 11155111)
	assert.Equal(t, "0x96216849c49358b10257cb55b28ea603c874b05e", s.Address())
}
