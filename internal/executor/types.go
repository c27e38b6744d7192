package executor

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// State 为交易生命周期状态。
type State int

const (
	StateBuilt State = iota
	StateValidated
	StatePriced
	StatePrepared
	StateSubmitted
	StateConfirmed
	StateFailed
)

// String 返回状态名。
func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateValidated:
		return "validated"
	case StatePriced:
		return "priced"
	case StatePrepared:
		return "prepared"
	case StateSubmitted:
		return "submitted"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrValidationRejected 表示场所侧校验拒绝了订单。
	ErrValidationRejected = errors.New("venue validation rejected order")
	// ErrGasPriceUnavailable 表示 gas 价格数据源不可达。过期数据不可静默替代，
	// 因此直接上报而不重试。
	ErrGasPriceUnavailable = errors.New("gas price unavailable")
	// ErrPreparationFailed 表示 gas 估算或 nonce 准备阶段失败。
	ErrPreparationFailed = errors.New("transaction preparation failed")
	// ErrSubmissionFailed 表示交易广播被拒或上链后回滚。
	ErrSubmissionFailed = errors.New("transaction submission failed")
)

// Outcome 为一次执行的终态结果。只有 Confirmed 携带可用的回执。
type Outcome struct {
	State   State
	TxHash  common.Hash
	GasUsed uint64
	Receipt *types.Receipt
}
