package bitmagic

import (
	"reflect"
)

// Entry 声明中的一个键值对
//
// 键为位位置（整数）、位区间（Range）或位置列表（切片，可嵌套）时视为字段声明，值为字段名；
// 其余键视为选项，如 "attributeName"、"default"。
type Entry struct {
	Key   any
	Value any
}

// Field 声明一个字段，key 为位位置、Range 或位置列表
func Field(key any, name any) Entry {
	return Entry{Key: key, Value: name}
}

// Option 声明一个选项
func Option(key string, value any) Entry {
	return Entry{Key: key, Value: value}
}

// Range 连续的位区间，From 到 To 升序，Exclusive 为 true 时不包含 To
type Range struct {
	From      int
	To        int
	Exclusive bool
}

// Span 构造包含两端的区间
func Span(from, to int) Range {
	return Range{From: from, To: to}
}

// Positions 展开区间，降序或越界时返回空
func (r Range) Positions() []int {
	end := r.To
	if r.Exclusive {
		end--
	}
	if r.From < 0 || end < r.From {
		return nil
	}
	list := make([]int, 0, end-r.From+1)
	for i := r.From; i <= end; i++ {
		list = append(list, i)
	}
	return list
}

// normalizeKey 尝试把键解析为有序的位置列表
//
// fieldLike 表示键在形式上像字段声明（整数、区间或切片），
// ok 表示解析成功；fieldLike 为真而 ok 为假即为"看起来像字段却解析失败"的歧义键。
func normalizeKey(key any) (positions []int, fieldLike bool, ok bool) {
	switch k := key.(type) {
	case nil:
		return nil, false, false
	case Range:
		list := k.Positions()
		return list, true, len(list) > 0
	case *Range:
		if k == nil {
			return nil, true, false
		}
		list := k.Positions()
		return list, true, len(list) > 0
	case string:
		return nil, false, false
	}

	if p, isInt := toPosition(key); isInt {
		return []int{p}, true, p >= 0
	}
	if _, isInt := toBigInt(key); isInt {
		// 整数但超出 int 范围
		return nil, true, false
	}

	rv := reflect.ValueOf(key)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false, false
	}
	for i := 0; i < rv.Len(); i++ {
		sub, _, subOK := normalizeKey(rv.Index(i).Interface())
		if !subOK {
			return nil, true, false
		}
		positions = append(positions, sub...)
	}
	return positions, true, len(positions) > 0
}

// identifier 字段名必须为非空字符串（含自定义字符串类型）
func identifier(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return "", false
	}
	s := rv.String()
	return s, s != ""
}
