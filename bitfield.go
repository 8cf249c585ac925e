package bitmagic

import (
	"math/big"
)

// BitField 位域原始值
//
// 包装一个任意精度的有符号整数，提供按位读写能力。
// 位索引从0开始，0为最低位；负数按二进制补码解释，即符号位以上无限延伸为1。
//
// 示例：
//
//	bf, _ := NewBitField(5)          // 0b101
//	bf.ReadBits(0, 1, 2)             // map[0:1 1:0 2:1]
//	bf.WriteBits(map[int]any{1: true}) // 7
type BitField struct {
	value *big.Int
}

// NewBitField 创建位域，value 必须是整数类型（含 *big.Int），否则返回 ErrInput
func NewBitField(value any) (*BitField, error) {
	n, ok := toBigInt(value)
	if !ok {
		return nil, inputErrorf("BitField expects an integer value, %#v is not an integer", value)
	}
	return &BitField{value: n}, nil
}

// Value 返回当前值的副本
func (b *BitField) Value() *big.Int {
	return new(big.Int).Set(b.value)
}

// ReadBits 逐个读取指定位，返回 位置→位值(0或1) 的映射
func (b *BitField) ReadBits(positions ...int) map[int]uint {
	m := make(map[int]uint, len(positions))
	for _, p := range positions {
		m[p] = b.bit(p)
	}
	return m
}

// ReadField 按给定顺序将多个位组合成一个整数
//
// 结果的第 i 位取自源值的第 positions[i] 位，各位之间以或运算合并，
// 因此重复的位置会同时贡献到多个结果位上：
//
//	bf, _ := NewBitField(39) // 0b100111
//	bf.ReadField(0, 0, 0)    // 7
//	bf.ReadField(4, 5)       // 2
func (b *BitField) ReadField(positions ...int) *big.Int {
	m := new(big.Int)
	for i, p := range positions {
		if b.bit(p) == 1 {
			m.SetBit(m, i, 1)
		}
	}
	return m
}

// WriteBits 写入指定位并返回写入后的值
//
// 键为位位置（必须非负），值必须为 true、false、1 或 0 之一（任意整数类型均可）。
// 所有条目先校验再写入，校验失败时原值保持不变。
// 负数按补码运算，清除或设置高位不会特殊处理符号位。
func (b *BitField) WriteBits(bits map[int]any) (*big.Int, error) {
	resolved := make(map[int]bool, len(bits))
	for pos, val := range bits {
		if pos < 0 {
			return nil, inputErrorf("BitField can not write to negative index %d", pos)
		}
		on, ok := bitValue(val)
		if !ok {
			return nil, inputErrorf("BitField must write a boolean value, %#v is not a boolean", val)
		}
		resolved[pos] = on
	}

	for pos, on := range resolved {
		if on {
			b.value.SetBit(b.value, pos, 1)
		} else {
			b.value.SetBit(b.value, pos, 0)
		}
	}
	return b.Value(), nil
}

func (b *BitField) bit(p int) uint {
	if p < 0 {
		return 0
	}
	return b.value.Bit(p)
}

// bitValue 只接受 true/false/1/0
func bitValue(v any) (on bool, ok bool) {
	if bv, isBool := v.(bool); isBool {
		return bv, true
	}
	n, isInt := toBigInt(v)
	if !isInt || !n.IsInt64() {
		return false, false
	}
	switch n.Int64() {
	case 1:
		return true, true
	case 0:
		return false, true
	}
	return false, false
}
