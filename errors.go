package bitmagic

import (
	"github.com/pkg/errors"
)

// 错误定义
//
// 所有对外返回的错误都包装自以下两个哨兵错误之一，调用方使用 errors.Is 判断类别。
var (
	// ErrInput 输入值非法：原始值不是整数、写入位置为负、写入值不是布尔型等
	ErrInput = errors.New("bitmagic: input error")

	// ErrField 字段声明非法：字段名不是标识符、字段名重复、位置键无法解析等
	ErrField = errors.New("bitmagic: field error")
)

func inputErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrInput, format, args...)
}

func fieldErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrField, format, args...)
}
