package bitmagic

import (
	"fmt"
	"math/big"
)

// Host 持有位域属性的宿主实体
type Host interface {
	// Attribute 读取属性当前值，返回 nil 表示缺失，将使用默认值
	Attribute(name string) any
	// SetAttribute 写入属性新值
	SetAttribute(name string, value *big.Int) error
}

// HostFuncs 以闭包实现 Host，忽略属性名
type HostFuncs struct {
	Get func() any
	Set func(value *big.Int) error
}

func (h HostFuncs) Attribute(string) any {
	if h.Get == nil {
		return nil
	}
	return h.Get()
}

func (h HostFuncs) SetAttribute(name string, value *big.Int) error {
	if h.Set == nil {
		return inputErrorf("host attribute %s has no setter", name)
	}
	return h.Set(value)
}

// View 字段表与宿主实例的绑定
//
// View 不缓存原始值，每次读写都从宿主重新读取。
// 读-改-写过程不是原子的，并发写同一宿主属性需要调用方自行串行化。
type View struct {
	table *Table
	host  Host
}

func newView(t *Table, host Host) *View {
	return &View{table: t, host: host}
}

func (v *View) Table() *Table {
	return v.table
}

func (v *View) Host() Host {
	return v.host
}

func (v *View) AttributeName() string {
	return v.table.options.AttributeName
}

// Value 读取宿主属性，缺失（nil 或 false）时返回默认值
func (v *View) Value() (*big.Int, error) {
	raw := v.host.Attribute(v.AttributeName())
	if absent(raw) {
		return v.table.Default(), nil
	}
	n, ok := toBigInt(raw)
	if !ok {
		return nil, inputErrorf("attribute %s expects an integer value, %#v is not an integer", v.AttributeName(), raw)
	}
	return n, nil
}

func absent(raw any) bool {
	switch r := raw.(type) {
	case nil:
		return true
	case bool:
		return !r
	case *big.Int:
		return r == nil
	}
	return false
}

// Field 以当前值构造 BitField
func (v *View) Field() (*BitField, error) {
	n, err := v.Value()
	if err != nil {
		return nil, err
	}
	return &BitField{value: n}, nil
}

// resolve 将字段名、位位置或位置列表解析为位置列表
func (v *View) resolve(key any) ([]int, error) {
	switch k := key.(type) {
	case string:
		positions, ok := v.table.positions(k)
		if !ok {
			return nil, inputErrorf("unknown field %q", k)
		}
		return positions, nil
	case []int:
		return k, nil
	}
	if p, ok := toPosition(key); ok {
		return []int{p}, nil
	}
	if name, ok := identifier(key); ok {
		return v.resolve(name)
	}
	return nil, inputErrorf("%#v is neither a field name nor a bit position", key)
}

// Read 读取字段或单个位的值
//
//	v.Read("amount") // 多位字段组合后的整数
//	v.Read(4)        // 第4位，0或1
func (v *View) Read(key any) (*big.Int, error) {
	field, err := v.Field()
	if err != nil {
		return nil, err
	}
	return v.read(field, key)
}

func (v *View) read(field *BitField, key any) (*big.Int, error) {
	positions, err := v.resolve(key)
	if err != nil {
		return nil, err
	}
	return field.ReadField(positions...), nil
}

// Enabled 所有给定字段的值都 >= 1 时返回 true
// 多位字段只要任意一位为1即视为启用，与 AllOf 的"全部为1"不同。
func (v *View) Enabled(keys ...any) (bool, error) {
	return v.every(keys, func(n *big.Int) bool { return n.Sign() > 0 })
}

// Disabled 所有给定字段的值都为 0 时返回 true
func (v *View) Disabled(keys ...any) (bool, error) {
	return v.every(keys, func(n *big.Int) bool { return n.Sign() == 0 })
}

func (v *View) every(keys []any, pred func(*big.Int) bool) (bool, error) {
	field, err := v.Field()
	if err != nil {
		return false, err
	}
	for _, key := range keys {
		n, err := v.read(field, key)
		if err != nil {
			return false, err
		}
		if !pred(n) {
			return false, nil
		}
	}
	return true, nil
}

// Write 写入字段或单个位，并通过提交回调持久化
//
// 单个位：target 经 BoolCaster 转换后写入。
// 字段：target 的第 i 位（i < 位宽）经 BoolCaster 转换后写入第 i 个位置，超出位宽的高位被忽略。
// 返回提交回调的结果，回调的错误原样返回。
func (v *View) Write(key any, target any) (any, error) {
	caster := v.table.options.BoolCaster
	bits := make(map[int]any)

	if p, ok := toPosition(key); ok {
		bits[p] = caster(target)
	} else {
		positions, err := v.resolve(key)
		if err != nil {
			return nil, err
		}
		n, err := targetInt(target)
		if err != nil {
			return nil, err
		}
		for i, p := range positions {
			bits[p] = caster(int(n.Bit(i)))
		}
	}

	field, err := v.Field()
	if err != nil {
		return nil, err
	}
	value, err := field.WriteBits(bits)
	if err != nil {
		return nil, err
	}
	return v.table.options.Updater(v, value)
}

// targetInt 多位写入的目标值必须为整数，布尔值视为1或0
func targetInt(target any) (*big.Int, error) {
	if b, ok := target.(bool); ok {
		if b {
			return big.NewInt(1), nil
		}
		return new(big.Int), nil
	}
	n, ok := toBigInt(target)
	if !ok {
		return nil, inputErrorf("field value must be an integer, %#v is not", target)
	}
	return n, nil
}

func (v *View) String() string {
	value, err := v.Value()
	if err != nil {
		return fmt.Sprintf("#<View table=%s value=error(%v)>", v.table.name, err)
	}
	return fmt.Sprintf("#<View table=%s value=%s> options={default: %s, attributeName: %s}",
		v.table.name, value, v.table.options.Default, v.AttributeName())
}
