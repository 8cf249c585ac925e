package bitmagic

import (
	"math/big"
)

// Mask 位掩码
//
// 基于 big.Int 实现，位数不受64位限制，支持补码表示的负数掩码（表示无限高位均为1的集合）。
// 常用于字段谓词的判断与生成：
//
//	m := NewMask(1, 2, 3)          // 0b1110
//	v := MaskOf(big.NewInt(10))    // 0b1010
//	v.Include(m)                   // false，缺少第2位
//	v.IncludeAny(m)                // true
//
// 注意事项：
//   - Mask 的方法不会修改调用方传入的 big.Int
//   - 零值 Mask 表示空集合
type Mask struct {
	v *big.Int
}

// NewMask 以给定位置构造掩码，重复位置无副作用
func NewMask(positions ...int) Mask {
	var m Mask
	for _, p := range positions {
		if p < 0 {
			continue
		}
		m.int().SetBit(m.int(), p, 1)
	}
	return m
}

// MaskOf 以已有整数构造掩码
func MaskOf(n *big.Int) Mask {
	if n == nil {
		return Mask{}
	}
	return Mask{v: new(big.Int).Set(n)}
}

func (m *Mask) int() *big.Int {
	if m.v == nil {
		m.v = new(big.Int)
	}
	return m.v
}

// Set 设置一个或多个标志位
// 位运算：m = m | f
func (m *Mask) Set(f Mask) {
	m.int().Or(m.int(), f.int())
}

// Clean 清除一个或多个标志位
// 位运算：m = m &^ f
func (m *Mask) Clean(f Mask) {
	m.int().AndNot(m.int(), f.int())
}

// Include 判断是否包含 exp 的所有位，空集合是任何集合的子集
// 位运算：(m & exp) == exp
func (m Mask) Include(exp Mask) bool {
	and := new(big.Int).And(m.int(), exp.int())
	return and.Cmp(exp.int()) == 0
}

// IncludeAny 判断是否包含 exp 中的任意一位
// 位运算：(m & exp) != 0
func (m Mask) IncludeAny(exp Mask) bool {
	return new(big.Int).And(m.int(), exp.int()).Sign() != 0
}

// Exclude 返回移除 s 之后的新掩码，不修改原值
func (m Mask) Exclude(s Mask) Mask {
	return Mask{v: new(big.Int).AndNot(m.int(), s.int())}
}

// Disjoint 判断与 exp 没有任何公共位
func (m Mask) Disjoint(exp Mask) bool {
	return !m.IncludeAny(exp)
}

// Complement 返回按位取反的掩码，非负掩码的补集为负数
func (m Mask) Complement() Mask {
	return Mask{v: new(big.Int).Not(m.int())}
}

// Equal 精确比较
func (m Mask) Equal(s Mask) bool {
	return m.int().Cmp(s.int()) == 0
}

// Int 返回掩码的整数副本
func (m Mask) Int() *big.Int {
	return new(big.Int).Set(m.int())
}

func (m Mask) String() string {
	return m.int().String()
}
