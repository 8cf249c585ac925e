// Package sqlfilter 根据字段表生成 SQL 过滤条件。
//
// 只消费 bitmagic.Table 与 bitmagic.ValueSpace 的输出（取值列表与掩码），不涉及任何位运算细节。
// 位数较少时使用 "col IN (...)" 按值查询，否则使用按位运算的条件。
package sqlfilter

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/wildmap/bitmagic"
)

// DefaultQueryByValueThreshold 位数不超过该值时默认按值查询
const DefaultQueryByValueThreshold = 8

// Clause 一段 WHERE 条件及其参数
type Clause struct {
	SQL  string
	Args []any
}

// nothing 不匹配任何行
var nothing = Clause{SQL: "1 = 0"}

func (c Clause) String() string {
	return fmt.Sprintf("%s %v", c.SQL, c.Args)
}

// Builder 条件生成器
type Builder struct {
	table    *bitmagic.Table
	space    *bitmagic.ValueSpace
	column   string
	relation string
	byValue  bool
	bindType int
	scopes   bool
}

// Option 生成器选项
type Option func(*builderConfig)

type builderConfig struct {
	column    string
	relation  string
	byValue   *bool
	threshold int
	bindType  int
	scopes    bool
}

// WithColumn 列名，默认为字段表的 attributeName
func WithColumn(column string) Option {
	return func(c *builderConfig) {
		c.column = column
	}
}

// WithTable 表名，设置后列名会带上表名限定
func WithTable(relation string) Option {
	return func(c *builderConfig) {
		c.relation = relation
	}
}

// WithQueryByValue 强制按值（true）或按位运算（false）查询
func WithQueryByValue(byValue bool) Option {
	return func(c *builderConfig) {
		c.byValue = &byValue
	}
}

// WithQueryByValueThreshold 位数不超过 n 时按值查询
func WithQueryByValueThreshold(n int) Option {
	return func(c *builderConfig) {
		c.threshold = n
	}
}

// WithBindType 占位符风格，取值为 sqlx.QUESTION、sqlx.DOLLAR 等
func WithBindType(bindType int) Option {
	return func(c *builderConfig) {
		c.bindType = bindType
	}
}

// WithNamedScopes 是否启用 Scope 命名条件，默认启用
func WithNamedScopes(enable bool) Option {
	return func(c *builderConfig) {
		c.scopes = enable
	}
}

// New 基于字段表创建条件生成器
func New(table *bitmagic.Table, opts ...Option) *Builder {
	cfg := builderConfig{
		column:    table.AttributeName(),
		threshold: DefaultQueryByValueThreshold,
		bindType:  sqlx.QUESTION,
		scopes:    true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	byValue := table.DistinctBitCount() <= cfg.threshold
	if cfg.byValue != nil {
		byValue = *cfg.byValue
	}
	return &Builder{
		table:    table,
		space:    table.Space(),
		column:   cfg.column,
		relation: cfg.relation,
		byValue:  byValue,
		bindType: cfg.bindType,
		scopes:   cfg.scopes,
	}
}

// ByValue 是否按值查询
func (b *Builder) ByValue() bool {
	return b.byValue
}

func (b *Builder) columnRef() string {
	if b.relation == "" {
		return b.column
	}
	return quoteIdent(b.relation) + "." + b.column
}

// WithAll 所有给定字段的所有位均为1
func (b *Builder) WithAll(keys ...any) (Clause, error) {
	if len(keys) == 0 {
		return nothing, nil
	}
	if b.byValue {
		return b.in(b.space.AllOf(keys...))
	}
	m := b.space.AllOfNumber(keys...)
	return b.bitwise("(%s & ?) = ?", m, m)
}

// WithAny 给定字段中任意一位为1
func (b *Builder) WithAny(keys ...any) (Clause, error) {
	if len(keys) == 0 {
		return nothing, nil
	}
	if b.byValue {
		return b.in(b.space.AnyOf(keys...))
	}
	return b.bitwise("(%s & ?) > 0", b.space.AnyOfNumber(keys...))
}

// WithoutAny 给定字段中至少一位为0
func (b *Builder) WithoutAny(keys ...any) (Clause, error) {
	if len(keys) == 0 {
		return nothing, nil
	}
	if b.byValue {
		return b.in(b.space.InsteadOf(keys...))
	}
	m := b.space.AnyOfNumber(keys...)
	return b.bitwise("(%s & ?) <> ?", m, m)
}

// WithoutAll 给定字段的所有位均为0
func (b *Builder) WithoutAll(keys ...any) (Clause, error) {
	if len(keys) == 0 {
		return nothing, nil
	}
	if b.byValue {
		return b.in(b.space.NoneOf(keys...))
	}
	return b.bitwise("(%s & ?) = 0", b.space.AnyOfNumber(keys...))
}

// Equals 字段恰好等于给定值，超出位宽的高位被截断
func (b *Builder) Equals(pairs ...bitmagic.FieldValue) (Clause, error) {
	if len(pairs) == 0 {
		return nothing, nil
	}
	if b.byValue {
		values, err := b.space.EqualTo(pairs...)
		if err != nil {
			return Clause{}, err
		}
		return b.in(values)
	}
	all, none, err := b.space.EqualToNumbers(pairs...)
	if err != nil {
		return Clause{}, err
	}
	return b.bitwise("(%[1]s & ?) = ? AND (%[1]s & ?) = 0", all, all, none)
}

// Scope 命名条件
//
//	<field>         等价于 WithAll(field)
//	not_<field>     等价于 WithoutAll(field)
//	<field>_equals  等价于 Equals(field => args[0])，仅多位字段可用
func (b *Builder) Scope(name string, args ...any) (Clause, error) {
	if !b.scopes {
		return Clause{}, errors.Wrapf(bitmagic.ErrInput, "named scopes are disabled, %q unavailable", name)
	}
	if _, ok := b.table.Positions(name); ok {
		return b.WithAll(name)
	}
	if field, ok := strings.CutPrefix(name, "not_"); ok {
		if _, known := b.table.Positions(field); known {
			return b.WithoutAll(field)
		}
	}
	if field, ok := strings.CutSuffix(name, "_equals"); ok {
		if positions, known := b.table.Positions(field); known && len(positions) > 1 {
			if len(args) != 1 {
				return Clause{}, errors.Wrapf(bitmagic.ErrInput, "scope %s expects exactly one value, got %d", name, len(args))
			}
			return b.Equals(bitmagic.FieldValue{Key: field, Value: args[0]})
		}
	}
	return Clause{}, errors.Wrapf(bitmagic.ErrInput, "unknown scope %q", name)
}

// Scopes 按声明顺序列出所有可用的命名条件，关闭时为空
func (b *Builder) Scopes() []string {
	if !b.scopes {
		return nil
	}
	var names []string
	for _, f := range b.table.Fields() {
		names = append(names, f.Name, "not_"+f.Name)
		if f.Width() > 1 {
			names = append(names, f.Name+"_equals")
		}
	}
	return names
}

// quoteIdent SQL 标识符引用，内部的双引号写两次
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (b *Builder) in(values bitmagic.Values) (Clause, error) {
	if len(values) == 0 {
		return nothing, nil
	}
	args, err := int64s(values...)
	if err != nil {
		return Clause{}, err
	}
	query, inArgs, err := sqlx.In(b.columnRef()+" IN (?)", args)
	if err != nil {
		return Clause{}, errors.Wrap(err, "expand IN clause")
	}
	return Clause{SQL: sqlx.Rebind(b.bindType, query), Args: inArgs}, nil
}

func (b *Builder) bitwise(format string, masks ...*big.Int) (Clause, error) {
	args, err := int64s(masks...)
	if err != nil {
		return Clause{}, err
	}
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a
	}
	query := fmt.Sprintf(format, b.columnRef())
	return Clause{SQL: sqlx.Rebind(b.bindType, query), Args: vals}, nil
}

// int64s SQL 整数列为 64 位，超出范围的值无法作为参数
func int64s(values ...*big.Int) ([]int64, error) {
	out := make([]int64, len(values))
	for i, v := range values {
		if !v.IsInt64() {
			return nil, errors.Wrapf(bitmagic.ErrInput, "value %s does not fit a 64-bit column", v)
		}
		out[i] = v.Int64()
	}
	return out, nil
}
