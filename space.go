package bitmagic

import (
	"fmt"
	"iter"
	"math/big"
	"reflect"
	"slices"

	"go.uber.org/atomic"

	"github.com/wildmap/bitmagic/xlog"
)

// defaultWarnThreshold AllValues 的默认告警阈值（位数），负数表示关闭告警
var defaultWarnThreshold = atomic.NewInt32(12)

// DefaultWarnThreshold 返回当前默认告警阈值
func DefaultWarnThreshold() int {
	return int(defaultWarnThreshold.Load())
}

// SetDefaultWarnThreshold 设置默认告警阈值，负数关闭告警
func SetDefaultWarnThreshold(n int) {
	defaultWarnThreshold.Store(int32(n))
}

// FieldValue 字段与目标值，用于相等查询
type FieldValue struct {
	Key   any // 字段名或位位置
	Value any // 目标值，整数或布尔
}

// ValueSpace 取值空间
//
// 由字段表派生，枚举位集合可达的所有整数，并为字段谓词生成取值列表与掩码。
// 外部适配器（如 SQL 过滤条件生成）只依赖这里的输出。
//
// 警告：取值数量随位数指数增长（2^n），枚举的时间与内存都是指数级的，
// 调用方需要自行控制位集合的大小。
type ValueSpace struct {
	fields []FieldSpec
	index  map[string]int
	bits   []int
	def    *big.Int
	caster BoolCaster
}

// SpaceOption 取值空间选项
type SpaceOption func(*ValueSpace)

// WithUniverse 覆盖默认的位集合（默认为所有字段位置去重）
func WithUniverse(bits []int) SpaceOption {
	return func(s *ValueSpace) {
		s.bits = uniqueInts(bits)
	}
}

// WithSpaceDefault 设置默认值，非零默认值总会出现在枚举结果中
func WithSpaceDefault(n *big.Int) SpaceOption {
	return func(s *ValueSpace) {
		if n != nil {
			s.def = new(big.Int).Set(n)
		}
	}
}

// WithSpaceBoolCaster 设置相等查询使用的布尔转换
func WithSpaceBoolCaster(fn BoolCaster) SpaceOption {
	return func(s *ValueSpace) {
		if fn != nil {
			s.caster = fn
		}
	}
}

// NewValueSpace 以字段列表构造取值空间，同名字段以先出现者为准
func NewValueSpace(fields []FieldSpec, opts ...SpaceOption) *ValueSpace {
	s := &ValueSpace{
		index:  make(map[string]int, len(fields)),
		def:    new(big.Int),
		caster: DefaultBoolCaster,
	}
	var all []int
	for _, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			continue
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, FieldSpec{Name: f.Name, Positions: slices.Clone(f.Positions)})
		all = append(all, f.Positions...)
	}
	s.bits = uniqueInts(all)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bits 位集合（去重，保持首次出现顺序）
func (s *ValueSpace) Bits() []int {
	return slices.Clone(s.bits)
}

// Length 位集合大小
func (s *ValueSpace) Length() int {
	return len(s.bits)
}

// Default 默认值副本
func (s *ValueSpace) Default() *big.Int {
	return new(big.Int).Set(s.def)
}

// PositionsFor 将字段名与位位置解析为位置列表
//
// 字段名展开为其位置（按顺序拼接，保留重复），整数原样保留，切片递归展开，
// 未知的字段名被静默忽略。
//
//	s.PositionsFor("is_cool", 5, 6) // [4 5 6]
//	s.PositionsFor("amount")        // [1 2 3]
func (s *ValueSpace) PositionsFor(keys ...any) []int {
	var bits []int
	for _, key := range keys {
		bits = append(bits, s.positionsFor(key)...)
	}
	return bits
}

func (s *ValueSpace) positionsFor(key any) []int {
	switch k := key.(type) {
	case nil:
		return nil
	case string:
		if i, ok := s.index[k]; ok {
			return s.fields[i].Positions
		}
		return nil
	case []int:
		return k
	}
	if p, ok := toPosition(key); ok {
		return []int{p}
	}
	rv := reflect.ValueOf(key)
	switch rv.Kind() {
	case reflect.String:
		return s.positionsFor(rv.String())
	case reflect.Slice, reflect.Array:
		var bits []int
		for i := 0; i < rv.Len(); i++ {
			bits = append(bits, s.positionsFor(rv.Index(i).Interface())...)
		}
		return bits
	}
	return nil
}

// EachValue 惰性枚举位集合可达的所有整数
//
// bits 为 nil 时使用完整位集合。依次产出：
//  1. 0
//  2. 非零的默认值（即使它不在位集合可达范围内）
//  3. 按组合大小 1..n 递增，同一大小内按 bits 给定顺序的字典序组合，每个组合各位或运算的结果
//
// 每次调用都会重新计算，可重复迭代。
func (s *ValueSpace) EachValue(bits []int) iter.Seq[*big.Int] {
	if bits == nil {
		bits = s.bits
	}
	bits = slices.Clone(bits)
	def := s.Default()

	return func(yield func(*big.Int) bool) {
		if !yield(new(big.Int)) {
			return
		}
		if def.Sign() != 0 && !yield(new(big.Int).Set(def)) {
			return
		}

		n := len(bits)
		for k := 1; k <= n; k++ {
			idx := make([]int, k)
			for i := range idx {
				idx[i] = i
			}
			for {
				num := new(big.Int)
				for _, i := range idx {
					if bits[i] >= 0 {
						num.SetBit(num, bits[i], 1)
					}
				}
				if !yield(num) {
					return
				}
				if !nextCombination(idx, n) {
					break
				}
			}
		}
	}
}

// nextCombination 将 idx 推进到 n 选 len(idx) 的下一个字典序组合
func nextCombination(idx []int, n int) bool {
	k := len(idx)
	i := k - 1
	for i >= 0 && idx[i] == n-k+i {
		i--
	}
	if i < 0 {
		return false
	}
	idx[i]++
	for j := i + 1; j < k; j++ {
		idx[j] = idx[j-1] + 1
	}
	return true
}

// AllValuesOption AllValues 选项
type AllValuesOption func(*allValuesConfig)

type allValuesConfig struct {
	warnThreshold int
}

// WithWarnThreshold 位数超过 n 时输出告警，负数关闭告警
func WithWarnThreshold(n int) AllValuesOption {
	return func(c *allValuesConfig) {
		c.warnThreshold = n
	}
}

// WithoutWarning 关闭告警
func WithoutWarning() AllValuesOption {
	return WithWarnThreshold(-1)
}

// AllValues 物化 EachValue 的结果
//
// 位数超过告警阈值时输出告警日志，但不会中止。
func (s *ValueSpace) AllValues(bits []int, opts ...AllValuesOption) Values {
	if bits == nil {
		bits = s.bits
	}
	cfg := allValuesConfig{warnThreshold: DefaultWarnThreshold()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.warnThreshold >= 0 && len(bits) > cfg.warnThreshold {
		total := new(big.Int).Lsh(big.NewInt(1), uint(len(bits)))
		xlog.Warnw(fmt.Sprintf("There are %d bits. You will have %s values in the result. "+
			"Please carefully benchmark the execution time and memory usage of your use-case.", len(bits), total),
			"bits", len(bits), "values", total.String(), "threshold", cfg.warnThreshold)
	}
	return collect(s.EachValue(bits))
}

// AnyOf 任意一位被设置的取值：value & mask > 0
func (s *ValueSpace) AnyOf(keys ...any) Values {
	if len(keys) == 0 {
		return nil
	}
	mask := NewMask(s.PositionsFor(keys...)...)
	return s.filter(func(v Mask) bool { return v.IncludeAny(mask) })
}

// AllOf 所有位都被设置的取值：value & mask == mask
func (s *ValueSpace) AllOf(keys ...any) Values {
	if len(keys) == 0 {
		return nil
	}
	mask := NewMask(s.PositionsFor(keys...)...)
	return s.filter(func(v Mask) bool { return v.Include(mask) })
}

// NoneOf 所有位都未设置的取值：value & mask == 0
func (s *ValueSpace) NoneOf(keys ...any) Values {
	if len(keys) == 0 {
		return nil
	}
	mask := NewMask(s.PositionsFor(keys...)...)
	return s.filter(func(v Mask) bool { return v.Disjoint(mask) })
}

// InsteadOf 至少一位未设置的取值：value & mask != mask，为 AllOf 的补集
func (s *ValueSpace) InsteadOf(keys ...any) Values {
	if len(keys) == 0 {
		return nil
	}
	mask := NewMask(s.PositionsFor(keys...)...)
	return s.filter(func(v Mask) bool { return !v.Include(mask) })
}

// EqualTo 各字段恰好等于目标值的取值
//
// 目标值超出字段位宽的高位被截断，例如单位字段写入2等价于0。
func (s *ValueSpace) EqualTo(pairs ...FieldValue) (Values, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	all, none, err := s.EqualToNumbers(pairs...)
	if err != nil {
		return nil, err
	}
	allMask, noneMask := Mask{v: all}, Mask{v: none}
	return s.filter(func(v Mask) bool { return v.Include(allMask) && v.Disjoint(noneMask) }), nil
}

// EqualToNumbers 返回两个掩码：all 中的位要求为1，none 中的位要求为0
//
//	// is_odd:[0] amount:[1,2,3] is_cool:[4]
//	s.EqualToNumbers(FieldValue{"amount", 5}) // 10, 4
func (s *ValueSpace) EqualToNumbers(pairs ...FieldValue) (all, none *big.Int, err error) {
	type target struct {
		bits  []int
		value *big.Int
	}
	var targets []target
	for _, pair := range pairs {
		bits := s.PositionsFor(pair.Key)
		if len(bits) == 0 {
			continue
		}
		n, err := targetInt(pair.Value)
		if err != nil {
			return nil, nil, err
		}
		i := slices.IndexFunc(targets, func(t target) bool { return slices.Equal(t.bits, bits) })
		if i >= 0 {
			targets[i].value = n
			continue
		}
		targets = append(targets, target{bits: bits, value: n})
	}

	all, none = new(big.Int), new(big.Int)
	for _, t := range targets {
		for i, bit := range t.bits {
			if bit < 0 {
				continue
			}
			if s.caster(int(t.value.Bit(i))) {
				all.SetBit(all, bit, 1)
			} else {
				none.SetBit(none, bit, 1)
			}
		}
	}
	return all, none, nil
}

// AnyOfNumber 给定字段所有位均为1的掩码
func (s *ValueSpace) AnyOfNumber(keys ...any) *big.Int {
	return NewMask(s.PositionsFor(keys...)...).Int()
}

// AllOfNumber 与 AnyOfNumber 相同，判断方式不同：(value & m) == m
func (s *ValueSpace) AllOfNumber(keys ...any) *big.Int {
	return s.AnyOfNumber(keys...)
}

// NoneOfNumber AnyOfNumber 的按位取反，通常为负数（补码表示）
func (s *ValueSpace) NoneOfNumber(keys ...any) *big.Int {
	return NewMask(s.PositionsFor(keys...)...).Complement().Int()
}

func (s *ValueSpace) filter(keep func(Mask) bool) Values {
	return Filter(s.EachValue(nil), func(n *big.Int) bool {
		return keep(Mask{v: n})
	})
}
