package venue

import "errors"

var (
	// ErrInvalidPair 表示场所无法路由请求的交易对。
	ErrInvalidPair = errors.New("venue cannot route pair")
	// ErrVenueUnavailable 表示场所合约调用失败（网络错误、无流动性池、调用回滚）。
	ErrVenueUnavailable = errors.New("venue unavailable")
)
