package chain

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer 抽象交易签名，密钥管理细节不进入核心流程。
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction) (*types.Transaction, error)
}

// PrivateKeySigner 基于配置中的私钥签名，适用于单账户机器人场景。
type PrivateKeySigner struct {
	address common.Address
	key     *ecdsa.PrivateKey
	signer  types.Signer
}

// NewPrivateKeySigner 解析十六进制私钥并绑定链 ID。
func NewPrivateKeySigner(hexKey string, chainID *big.Int) (*PrivateKeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("解析私钥失败: %w", err)
	}

	return &PrivateKeySigner{
		address: crypto.PubkeyToAddress(key.PublicKey),
		key:     key,
		signer:  types.LatestSignerForChainID(chainID),
	}, nil
}

// Address 返回签名账户地址。
func (s *PrivateKeySigner) Address() common.Address {
	return s.address
}

// SignTx 对交易进行签名。
func (s *PrivateKeySigner) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, s.signer, s.key)
	if err != nil {
		return nil, fmt.Errorf("签名交易失败: %w", err)
	}
	return signed, nil
}
