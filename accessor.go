package bitmagic

import (
	"math/big"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Accessor 单个字段的预生成访问器
//
// 字段表构造时一次性生成，替代运行时为宿主类型动态注入 name / name= / name? 方法。
type Accessor struct {
	Name      string // 字段名
	GoName    string // 驼峰形式，如 is_odd -> IsOdd
	Positions []int

	// Get 读取字段值
	Get func(v *View) (*big.Int, error)
	// Set 写入字段值，返回提交回调的结果
	Set func(v *View, value any) (any, error)
	// Is 仅单位字段存在，判断该位是否为1
	Is func(v *View) (bool, error)
}

func buildAccessors(t *Table) []Accessor {
	list := make([]Accessor, 0, len(t.fields))
	for _, f := range t.fields {
		name := f.Name
		a := Accessor{
			Name:      name,
			GoName:    ToCamelCase(name),
			Positions: slices.Clone(f.Positions),
			Get: func(v *View) (*big.Int, error) {
				return v.Read(name)
			},
			Set: func(v *View, value any) (any, error) {
				return v.Write(name, value)
			},
		}
		if len(f.Positions) == 1 {
			a.Is = func(v *View) (bool, error) {
				n, err := v.Read(name)
				if err != nil {
					return false, err
				}
				return n.Cmp(big.NewInt(1)) == 0, nil
			}
		}
		list = append(list, a)
	}
	return list
}

// Accessors 按声明顺序返回所有访问器，关闭 helpers 时为空
func (t *Table) Accessors() []Accessor {
	return slices.Clone(t.accessors)
}

// Accessor 按字段名或驼峰名查找访问器
func (t *Table) Accessor(name string) (Accessor, bool) {
	for _, a := range t.accessors {
		if a.Name == name || a.GoName == name {
			return a, true
		}
	}
	return Accessor{}, false
}

// ToCamelCase snake_case / kebab-case 转换为 CamelCase
//
//	ToCamelCase("is_odd")    // IsOdd
//	ToCamelCase("max-level") // MaxLevel
func ToCamelCase(s string) string {
	parts := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	// Caser 有状态，不能在 goroutine 间共享
	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	b.Grow(len(s))
	for _, part := range parts {
		b.WriteString(caser.String(part))
	}
	return b.String()
}
