package fund

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// ErrNotManager 表示签名账户不是基金管理人。
var ErrNotManager = errors.New("you are not the manager of this fund")

const hubABIJSON = `[
  {"constant":true,"inputs":[],"name":"getRoutes","outputs":[{"name":"trading","type":"address"},{"name":"accounting","type":"address"}],"stateMutability":"view","type":"function"},
  {"constant":true,"inputs":[],"name":"getManager","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

var hubABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(hubABIJSON))
	if err != nil {
		panic(fmt.Sprintf("fund: 解析 hub ABI 失败: %v", err))
	}
	hubABI = parsed
}

type caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Fund 描述一只基金的路由地址与管理人，运行期间只解析一次。
type Fund struct {
	Hub        common.Address
	Trading    common.Address
	Accounting common.Address
	Manager    common.Address
}

// Resolve 通过 hub 合约解析基金路由与管理人，两个调用并发执行。
func Resolve(ctx context.Context, client caller, hub common.Address) (*Fund, error) {
	fund := &Fund{Hub: hub}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		data, err := hubABI.Pack("getRoutes")
		if err != nil {
			return fmt.Errorf("编码 getRoutes 失败: %w", err)
		}
		out, err := client.CallContract(groupCtx, ethereum.CallMsg{To: &hub, Data: data}, nil)
		if err != nil {
			return fmt.Errorf("查询基金路由失败: %w", err)
		}
		values, err := hubABI.Unpack("getRoutes", out)
		if err != nil || len(values) != 2 {
			return fmt.Errorf("解码基金路由失败: %w", err)
		}
		fund.Trading = values[0].(common.Address)
		fund.Accounting = values[1].(common.Address)
		return nil
	})

	group.Go(func() error {
		data, err := hubABI.Pack("getManager")
		if err != nil {
			return fmt.Errorf("编码 getManager 失败: %w", err)
		}
		out, err := client.CallContract(groupCtx, ethereum.CallMsg{To: &hub, Data: data}, nil)
		if err != nil {
			return fmt.Errorf("查询基金管理人失败: %w", err)
		}
		values, err := hubABI.Unpack("getManager", out)
		if err != nil || len(values) != 1 {
			return fmt.Errorf("解码基金管理人失败: %w", err)
		}
		fund.Manager = values[0].(common.Address)
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return fund, nil
}

// Authorize 校验账户是否为基金管理人。
func (f *Fund) Authorize(account common.Address) error {
	if f.Manager != account {
		return fmt.Errorf("%w: manager=%s account=%s", ErrNotManager, f.Manager.Hex(), account.Hex())
	}
	return nil
}
