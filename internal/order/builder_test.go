package order

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/Insula-Crypto/bot/internal/asset"
	"github.com/Insula-Crypto/bot/internal/venue"
)

func testQuote() venue.Quote {
	return venue.Quote{
		VenueID: "uniswap",
		BaseAsset: asset.Asset{
			Address: common.HexToAddress("0x00000000000000000000000000000000000000A1"),
			Symbol:  "WETH",
		},
		QuoteAsset: asset.Asset{
			Address: common.HexToAddress("0x00000000000000000000000000000000000000A2"),
			Symbol:  "MLN",
		},
		SizeInBase:  big.NewInt(500),
		SizeInQuote: big.NewInt(1000),
	}
}

func TestBuild_AppliesSlippageToMakerOnly(t *testing.T) {
	args, err := Build(testQuote(), decimal.RequireFromString("0.01"))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if args.MakerQuantity.Cmp(big.NewInt(990)) != 0 {
		t.Errorf("expected makerQuantity=990, got %s", args.MakerQuantity)
	}
	if args.TakerQuantity.Cmp(big.NewInt(500)) != 0 {
		t.Errorf("expected takerQuantity=500, got %s", args.TakerQuantity)
	}
}

func TestBuild_ZeroSlippageKeepsExactAmount(t *testing.T) {
	args, err := Build(testQuote(), decimal.Zero)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if args.MakerQuantity.Cmp(big.NewInt(1000)) != 0 {
		t.Errorf("expected exact quoted amount, got %s", args.MakerQuantity)
	}
}

func TestBuild_FloorsAdjustedAmount(t *testing.T) {
	quote := testQuote()
	quote.SizeInQuote = big.NewInt(999)

	args, err := Build(quote, decimal.RequireFromString("0.01"))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	// 999 × 0.99 = 989.01 → 989
	if args.MakerQuantity.Cmp(big.NewInt(989)) != 0 {
		t.Errorf("expected floor to 989, got %s", args.MakerQuantity)
	}
}

func TestBuild_CopiesAssetsFromQuote(t *testing.T) {
	quote := testQuote()

	args, err := Build(quote, decimal.Zero)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if args.MakerAsset != quote.QuoteAsset.Address {
		t.Errorf("makerAsset must be the quote asset address")
	}
	if args.TakerAsset != quote.BaseAsset.Address {
		t.Errorf("takerAsset must be the base asset address")
	}
}

func TestBuild_RejectsOutOfRangeSlippage(t *testing.T) {
	if _, err := Build(testQuote(), decimal.RequireFromString("-0.1")); err == nil {
		t.Fatalf("expected error for negative slippage")
	}
	if _, err := Build(testQuote(), decimal.RequireFromString("1.5")); err == nil {
		t.Fatalf("expected error for slippage above 1")
	}
}
