package bitmagic

import (
	"fmt"
	"math/big"
	"slices"
	"sync"
)

// FieldSpec 一个命名字段及其位位置
//
// Positions[i] 存放字段值的第 i 位，顺序有意义，允许不连续。
type FieldSpec struct {
	Name      string
	Positions []int
}

// Width 字段位宽
func (f FieldSpec) Width() int {
	return len(f.Positions)
}

// Table 字段表
//
// 由一次声明构造，之后不可变，可在多个 View 与 ValueSpace 之间共享。
// 不同字段的位位置允许重叠。
type Table struct {
	name      string
	fields    []FieldSpec
	index     map[string]int
	options   Options
	distinct  int
	maxBit    int
	accessors []Accessor

	spaceOnce sync.Once
	space     *ValueSpace
}

// NewTable 解析声明条目构造字段表
//
//	t, err := NewTable("settings",
//	    Field(0, "is_odd"),
//	    Field([]int{1, 2, 3}, "amount"),
//	    Field(4, "is_cool"),
//	    Option("default", 0),
//	)
func NewTable(name string, entries ...Entry) (*Table, error) {
	return NewTableWithOptions(name, entries)
}

// NewTableWithOptions 与 NewTable 相同，额外应用函数式选项（在声明条目之后应用）
func NewTableWithOptions(name string, entries []Entry, opts ...TableOption) (*Table, error) {
	options := DefaultOptions()
	allowFailed := allowFailedFields(entries, opts)

	var (
		fields []FieldSpec
		index  = make(map[string]int)
	)
	for _, e := range entries {
		positions, fieldLike, ok := normalizeKey(e.Key)
		if !ok {
			if fieldLike && !allowFailed {
				return nil, fieldErrorf("key-pair expected to be a valid field declaration, but it is not: %#v => %#v; "+
					"set %s to keep it as an option", e.Key, e.Value, OptAllowFailedFields)
			}
			if err := options.apply(e.Key, e.Value); err != nil {
				return nil, err
			}
			continue
		}

		fieldName, isIdent := identifier(e.Value)
		if !isIdent {
			return nil, fieldErrorf("field name must be a string, %#v is not", e.Value)
		}
		if _, dup := index[fieldName]; dup {
			return nil, fieldErrorf("'%s' defined more than once", fieldName)
		}
		index[fieldName] = len(fields)
		fields = append(fields, FieldSpec{Name: fieldName, Positions: positions})
	}
	for _, opt := range opts {
		opt(&options)
	}
	options.AllowFailedFields = allowFailed

	t := &Table{
		name:    name,
		fields:  fields,
		index:   index,
		options: options,
		maxBit:  -1,
	}
	t.distinct = len(t.UniqueBits())
	for _, p := range t.Bits() {
		t.maxBit = max(t.maxBit, p)
	}
	if options.Helpers {
		t.accessors = buildAccessors(t)
	}
	return t, nil
}

// allowFailedFields 与声明顺序无关地预先读取 allowFailedFields
func allowFailedFields(entries []Entry, opts []TableOption) bool {
	var o Options
	for _, e := range entries {
		if k, ok := e.Key.(string); ok && k == OptAllowFailedFields {
			if b, isBool := e.Value.(bool); isBool {
				o.AllowFailedFields = b
			}
		}
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o.AllowFailedFields
}

// Name 声明名称
func (t *Table) Name() string {
	return t.name
}

// Fields 按声明顺序返回所有字段
func (t *Table) Fields() []FieldSpec {
	out := make([]FieldSpec, len(t.fields))
	for i, f := range t.fields {
		out[i] = FieldSpec{Name: f.Name, Positions: slices.Clone(f.Positions)}
	}
	return out
}

// FieldList 字段名→位位置列表
func (t *Table) FieldList() map[string][]int {
	m := make(map[string][]int, len(t.fields))
	for _, f := range t.fields {
		m[f.Name] = slices.Clone(f.Positions)
	}
	return m
}

// FieldNames 按声明顺序返回字段名
func (t *Table) FieldNames() []string {
	names := make([]string, len(t.fields))
	for i, f := range t.fields {
		names[i] = f.Name
	}
	return names
}

// Positions 查找字段的位位置
func (t *Table) Positions(name string) ([]int, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(t.fields[i].Positions), true
}

// positions 内部只读访问，不复制
func (t *Table) positions(name string) ([]int, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.fields[i].Positions, true
}

// Bits 所有字段的位位置，按声明顺序拼接，保留重复
func (t *Table) Bits() []int {
	var bits []int
	for _, f := range t.fields {
		bits = append(bits, f.Positions...)
	}
	return bits
}

// UniqueBits 去重后的位位置，保持首次出现的顺序
func (t *Table) UniqueBits() []int {
	return uniqueInts(t.Bits())
}

// DistinctBitCount 不同位位置的数量
func (t *Table) DistinctBitCount() int {
	return t.distinct
}

// MaxBit 最大的位位置，空表返回 -1
func (t *Table) MaxBit() int {
	return t.maxBit
}

// Options 返回配置副本
func (t *Table) Options() Options {
	return t.options.clone()
}

// AttributeName 宿主属性名
func (t *Table) AttributeName() string {
	return t.options.AttributeName
}

// Default 默认值副本
func (t *Table) Default() *big.Int {
	return new(big.Int).Set(t.options.Default)
}

// Space 返回基于本表的取值空间，首次调用时构造
func (t *Table) Space() *ValueSpace {
	t.spaceOnce.Do(func() {
		t.space = NewValueSpace(t.fields,
			WithSpaceDefault(t.options.Default),
			WithSpaceBoolCaster(t.options.BoolCaster),
		)
	})
	return t.space
}

// View 将本表绑定到宿主实例
func (t *Table) View(host Host) *View {
	return newView(t, host)
}

func (t *Table) String() string {
	return fmt.Sprintf("#<Table name=%s fields=%v>", t.name, t.fields)
}

func uniqueInts(list []int) []int {
	seen := make(map[int]struct{}, len(list))
	out := make([]int, 0, len(list))
	for _, v := range list {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
