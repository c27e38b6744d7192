package fund

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

type stubCaller struct {
	trading    common.Address
	accounting common.Address
	manager    common.Address
	err        error
}

func (s *stubCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}

	switch {
	case len(msg.Data) >= 4 && string(msg.Data[:4]) == string(hubABI.Methods["getRoutes"].ID):
		return hubABI.Methods["getRoutes"].Outputs.Pack(s.trading, s.accounting)
	case len(msg.Data) >= 4 && string(msg.Data[:4]) == string(hubABI.Methods["getManager"].ID):
		return hubABI.Methods["getManager"].Outputs.Pack(s.manager)
	default:
		return nil, errors.New("unexpected call")
	}
}

func TestResolve_PopulatesRoutesAndManager(t *testing.T) {
	caller := &stubCaller{
		trading:    common.HexToAddress("0x00000000000000000000000000000000000000B1"),
		accounting: common.HexToAddress("0x00000000000000000000000000000000000000B2"),
		manager:    common.HexToAddress("0x00000000000000000000000000000000000000B3"),
	}

	hub := common.HexToAddress("0x00000000000000000000000000000000000000B0")
	fund, err := Resolve(context.Background(), caller, hub)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if fund.Hub != hub {
		t.Errorf("hub mismatch: %s", fund.Hub.Hex())
	}
	if fund.Trading != caller.trading || fund.Accounting != caller.accounting {
		t.Errorf("routes mismatch: trading=%s accounting=%s", fund.Trading.Hex(), fund.Accounting.Hex())
	}
	if fund.Manager != caller.manager {
		t.Errorf("manager mismatch: %s", fund.Manager.Hex())
	}
}

func TestResolve_CallFailure(t *testing.T) {
	caller := &stubCaller{err: errors.New("connection refused")}

	if _, err := Resolve(context.Background(), caller, common.Address{}); err == nil {
		t.Fatalf("expected resolve failure")
	}
}

func TestAuthorize(t *testing.T) {
	manager := common.HexToAddress("0x00000000000000000000000000000000000000B3")
	fund := &Fund{Manager: manager}

	if err := fund.Authorize(manager); err != nil {
		t.Fatalf("manager account must be authorized: %v", err)
	}

	other := common.HexToAddress("0x00000000000000000000000000000000000000B4")
	if err := fund.Authorize(other); !errors.Is(err, ErrNotManager) {
		t.Fatalf("expected ErrNotManager, got %v", err)
	}
}
