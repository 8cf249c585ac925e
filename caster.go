package bitmagic

import (
	"math/big"
)

// BoolCaster 将任意输入值转换为布尔值，用于写入位时决定置1还是清0
type BoolCaster func(v any) bool

// DefaultBoolCaster 默认转换规则：false 与整数0为假，其余一律为真
func DefaultBoolCaster(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	if n, ok := toBigInt(v); ok {
		return n.Sign() != 0
	}
	return true
}

// toBigInt 将Go中所有整数类型转换为 *big.Int，返回的值总是新分配的
func toBigInt(v any) (*big.Int, bool) {
	switch n := v.(type) {
	case int:
		return big.NewInt(int64(n)), true
	case int8:
		return big.NewInt(int64(n)), true
	case int16:
		return big.NewInt(int64(n)), true
	case int32:
		return big.NewInt(int64(n)), true
	case int64:
		return big.NewInt(n), true
	case uint:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint64:
		return new(big.Int).SetUint64(n), true
	case *big.Int:
		if n == nil {
			return nil, false
		}
		return new(big.Int).Set(n), true
	case big.Int:
		return new(big.Int).Set(&n), true
	}
	return nil, false
}

// toPosition 将整数类型转换为位位置，超出int范围视为非法
func toPosition(v any) (int, bool) {
	n, ok := toBigInt(v)
	if !ok || !n.IsInt64() {
		return 0, false
	}
	p := n.Int64()
	if int64(int(p)) != p {
		return 0, false
	}
	return int(p), true
}
