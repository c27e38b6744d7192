package venue

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

func testOrderArgs() OrderArgs {
	return OrderArgs{
		MakerAsset:    common.HexToAddress("0x00000000000000000000000000000000000000A2"),
		TakerAsset:    common.HexToAddress("0x00000000000000000000000000000000000000A1"),
		MakerQuantity: big.NewInt(990),
		TakerQuantity: big.NewInt(500),
	}
}

func TestPreparedOrderValidate_SimulatesCall(t *testing.T) {
	var seen ethereum.CallMsg
	client := &stubChain{
		onCall: func(msg ethereum.CallMsg) ([]byte, error) {
			seen = msg
			return nil, nil
		},
	}

	from := common.HexToAddress("0x00000000000000000000000000000000000000C1")
	to := common.HexToAddress("0x00000000000000000000000000000000000000C2")
	data, err := takeOrderData(common.Address{}, common.Address{}, testOrderArgs())
	if err != nil {
		t.Fatalf("takeOrderData returned error: %v", err)
	}

	order := newPreparedOrder(client, nopSigner{}, from, to, data)
	if err := order.Validate(context.Background()); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	if seen.From != from || seen.To == nil || *seen.To != to {
		t.Errorf("unexpected simulated call endpoints: from=%s", seen.From.Hex())
	}
	if !isMethod(seen.Data, tradingABI, "takeOrder") {
		t.Errorf("expected takeOrder calldata")
	}
}

func TestPreparedOrderValidate_RevertSurfacesError(t *testing.T) {
	client := &stubChain{
		onCall: func(ethereum.CallMsg) ([]byte, error) {
			return nil, errors.New("execution reverted: insufficient balance")
		},
	}

	order := newPreparedOrder(client, nopSigner{}, common.Address{}, common.Address{}, nil)
	err := order.Validate(context.Background())
	if err == nil || !strings.Contains(err.Error(), "insufficient balance") {
		t.Fatalf("expected underlying revert reason, got %v", err)
	}
}

func TestPreparedOrderPrepare_FillsGasAndNonce(t *testing.T) {
	client := &stubChain{gasLimit: 210000, nonce: 7}
	order := newPreparedOrder(client, nopSigner{}, common.Address{}, common.Address{}, nil)

	opts, err := order.Prepare(context.Background(), TxOptions{GasPrice: big.NewInt(42)})
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	if opts.GasLimit != 210000 {
		t.Errorf("expected gasLimit=210000, got %d", opts.GasLimit)
	}
	if opts.Nonce != 7 {
		t.Errorf("expected nonce=7, got %d", opts.Nonce)
	}
	if opts.GasPrice.Cmp(big.NewInt(42)) != 0 {
		t.Errorf("gas price must be preserved, got %s", opts.GasPrice)
	}
}

func TestPreparedOrderPrepare_RequiresGasPrice(t *testing.T) {
	order := newPreparedOrder(&stubChain{}, nopSigner{}, common.Address{}, common.Address{}, nil)

	if _, err := order.Prepare(context.Background(), TxOptions{}); err == nil {
		t.Fatalf("expected error when gas price is missing")
	}
}

func TestPreparedOrderSend_SignsAndBroadcasts(t *testing.T) {
	client := &stubChain{}
	to := common.HexToAddress("0x00000000000000000000000000000000000000C2")
	order := newPreparedOrder(client, nopSigner{}, common.Address{}, to, []byte{0x01})

	tx, err := order.Send(context.Background(), TxOptions{
		GasPrice: big.NewInt(42),
		GasLimit: 21000,
		Nonce:    3,
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if len(client.sent) != 1 {
		t.Fatalf("expected one broadcast transaction, got %d", len(client.sent))
	}
	if tx.Nonce() != 3 || tx.Gas() != 21000 {
		t.Errorf("transaction options not applied: nonce=%d gas=%d", tx.Nonce(), tx.Gas())
	}
	if tx.To() == nil || *tx.To() != to {
		t.Errorf("unexpected destination")
	}
}

func TestPreparedOrderSend_BroadcastFailure(t *testing.T) {
	client := &stubChain{sendErr: errors.New("nonce too low")}
	order := newPreparedOrder(client, nopSigner{}, common.Address{}, common.Address{}, nil)

	_, err := order.Send(context.Background(), TxOptions{GasPrice: big.NewInt(1), GasLimit: 21000})
	if err == nil || !strings.Contains(err.Error(), "nonce too low") {
		t.Fatalf("expected broadcast failure, got %v", err)
	}
}
