package venue

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Insula-Crypto/bot/internal/asset"
	"github.com/Insula-Crypto/bot/internal/config"
)

func testRegistry(t *testing.T) *asset.Registry {
	t.Helper()

	registry, err := asset.NewRegistry(config.AssetsConfig{
		Numeraire: "WETH",
		Tokens: []config.TokenConfig{
			{Symbol: "WETH", Address: "0x00000000000000000000000000000000000000A1", Decimals: 18},
			{Symbol: "MLN", Address: "0x00000000000000000000000000000000000000A2", Decimals: 18},
			{Symbol: "WBTC", Address: "0x00000000000000000000000000000000000000A3", Decimals: 8},
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}
	return registry
}

func lookup(t *testing.T, registry *asset.Registry, symbol string) asset.Asset {
	t.Helper()

	a, err := registry.Lookup(symbol)
	if err != nil {
		t.Fatalf("Lookup(%s) returned error: %v", symbol, err)
	}
	return a
}

func packOutput(t *testing.T, contract abi.ABI, method string, values ...interface{}) []byte {
	t.Helper()

	out, err := contract.Methods[method].Outputs.Pack(values...)
	if err != nil {
		t.Fatalf("pack %s output: %v", method, err)
	}
	return out
}

func methodID(contract abi.ABI, method string) []byte {
	return contract.Methods[method].ID
}

// stubChain 满足 chain.Client，按调用数据分发响应并记录交互。
type stubChain struct {
	onCall func(msg ethereum.CallMsg) ([]byte, error)

	sent        []*types.Transaction
	nonce       uint64
	nonceErr    error
	gasLimit    uint64
	estimateErr error
	sendErr     error
}

func (s *stubChain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if s.onCall == nil {
		return nil, errors.New("no call handler")
	}
	return s.onCall(msg)
}

func (s *stubChain) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return s.nonce, s.nonceErr
}

func (s *stubChain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return s.gasLimit, s.estimateErr
}

func (s *stubChain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, tx)
	return nil
}

func (s *stubChain) WaitMined(context.Context, *types.Transaction) (*types.Receipt, error) {
	return nil, errors.New("not implemented")
}

type nopSigner struct {
	addr common.Address
}

func (s nopSigner) Address() common.Address {
	return s.addr
}

func (s nopSigner) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	return tx, nil
}

func selectorOf(data []byte) []byte {
	if len(data) < 4 {
		return nil
	}
	return data[:4]
}

func isMethod(data []byte, contract abi.ABI, method string) bool {
	return bytes.Equal(selectorOf(data), methodID(contract, method))
}
