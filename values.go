package bitmagic

import (
	"iter"
	"math/big"
	"slices"
)

// Values 取值列表，顺序与枚举顺序一致
type Values []*big.Int

// Int64s 转换为 int64 切片，超出 int64 范围的值结果未定义
func (vs Values) Int64s() []int64 {
	out := make([]int64, len(vs))
	for i, v := range vs {
		out[i] = v.Int64()
	}
	return out
}

// Sorted 返回升序排列的副本
func (vs Values) Sorted() Values {
	out := slices.Clone(vs)
	slices.SortFunc(out, func(a, b *big.Int) int { return a.Cmp(b) })
	return out
}

// Contains 判断是否包含 n
func (vs Values) Contains(n int64) bool {
	target := big.NewInt(n)
	return slices.ContainsFunc(vs, func(v *big.Int) bool { return v.Cmp(target) == 0 })
}

// Filter 基于谓词函数过滤序列
// 参数: seq - 源序列, predicate - 过滤条件函数
// 返回: 包含所有满足条件元素的新切片
func Filter[T any](seq iter.Seq[T], predicate func(T) bool) []T {
	var filtered []T
	for item := range seq {
		if predicate(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

func collect(seq iter.Seq[*big.Int]) Values {
	var vs Values
	for v := range seq {
		vs = append(vs, v)
	}
	return vs
}
