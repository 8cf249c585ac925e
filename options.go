package bitmagic

import (
	"math/big"
	"reflect"
	"slices"
)

// 可识别的选项键
const (
	OptAttributeName     = "attributeName"
	OptDefault           = "default"
	OptUpdater           = "updater"
	OptBoolCaster        = "boolCaster"
	OptAllowFailedFields = "allowFailedFields"
	OptHelpers           = "helpers"
)

// DefaultAttributeName 默认的宿主属性名
const DefaultAttributeName = "flags"

// Updater 提交回调，在 View.Write 计算出新值后调用，其返回值即 Write 的返回值
type Updater func(v *View, value *big.Int) (any, error)

// DefaultUpdater 调用宿主的 SetAttribute 写回新值
func DefaultUpdater(v *View, value *big.Int) (any, error) {
	if err := v.Host().SetAttribute(v.AttributeName(), value); err != nil {
		return nil, err
	}
	return value, nil
}

// Options 字段表的配置，构造完成后不再变更
type Options struct {
	AttributeName     string     // 宿主属性名
	Default           *big.Int   // 宿主属性缺失时使用的默认值
	Updater           Updater    // 提交回调
	BoolCaster        BoolCaster // 写入时的布尔转换
	AllowFailedFields bool       // 解析失败的位置键是否降级为选项
	Helpers           bool       // 是否生成字段访问器
	Extras            []Entry    // 未识别的选项，按声明顺序原样保留
}

// DefaultOptions 返回默认配置
func DefaultOptions() Options {
	return Options{
		AttributeName: DefaultAttributeName,
		Default:       new(big.Int),
		Updater:       DefaultUpdater,
		BoolCaster:    DefaultBoolCaster,
		Helpers:       true,
	}
}

// Extra 查找未识别的选项
func (o Options) Extra(key any) (any, bool) {
	for _, e := range o.Extras {
		if reflect.DeepEqual(e.Key, key) {
			return e.Value, true
		}
	}
	return nil, false
}

func (o Options) clone() Options {
	c := o
	if o.Default != nil {
		c.Default = new(big.Int).Set(o.Default)
	}
	c.Extras = slices.Clone(o.Extras)
	return c
}

// apply 处理一个选项键值对，已识别的键类型不符时返回 ErrField
func (o *Options) apply(key any, value any) error {
	name, isString := key.(string)
	if !isString {
		o.Extras = append(o.Extras, Entry{Key: key, Value: value})
		return nil
	}

	switch name {
	case OptAttributeName:
		s, ok := identifier(value)
		if !ok {
			return fieldErrorf("option %s must be a non-empty string, %#v is not", name, value)
		}
		o.AttributeName = s
	case OptDefault:
		n, ok := toBigInt(value)
		if !ok {
			return fieldErrorf("option %s must be an integer, %#v is not", name, value)
		}
		o.Default = n
	case OptUpdater:
		switch fn := value.(type) {
		case Updater:
			o.Updater = fn
		case func(*View, *big.Int) (any, error):
			o.Updater = fn
		default:
			return fieldErrorf("option %s must be an Updater, %T is not", name, value)
		}
	case OptBoolCaster:
		switch fn := value.(type) {
		case BoolCaster:
			o.BoolCaster = fn
		case func(any) bool:
			o.BoolCaster = fn
		default:
			return fieldErrorf("option %s must be a BoolCaster, %T is not", name, value)
		}
	case OptAllowFailedFields, OptHelpers:
		b, ok := value.(bool)
		if !ok {
			return fieldErrorf("option %s must be a bool, %#v is not", name, value)
		}
		if name == OptHelpers {
			o.Helpers = b
		} else {
			o.AllowFailedFields = b
		}
	default:
		o.Extras = append(o.Extras, Entry{Key: key, Value: value})
	}
	return nil
}

// TableOption 字段表的函数式选项，在声明条目之后应用
type TableOption func(*Options)

// WithAttributeName 设置宿主属性名
func WithAttributeName(name string) TableOption {
	return func(o *Options) {
		if name != "" {
			o.AttributeName = name
		}
	}
}

// WithDefault 设置默认值
func WithDefault(n int64) TableOption {
	return func(o *Options) {
		o.Default = big.NewInt(n)
	}
}

// WithBigDefault 以任意精度整数设置默认值
func WithBigDefault(n *big.Int) TableOption {
	return func(o *Options) {
		if n != nil {
			o.Default = new(big.Int).Set(n)
		}
	}
}

// WithUpdater 设置提交回调
func WithUpdater(fn Updater) TableOption {
	return func(o *Options) {
		if fn != nil {
			o.Updater = fn
		}
	}
}

// WithBoolCaster 设置布尔转换
func WithBoolCaster(fn BoolCaster) TableOption {
	return func(o *Options) {
		if fn != nil {
			o.BoolCaster = fn
		}
	}
}

// WithAllowFailedFields 允许解析失败的位置键降级为选项
func WithAllowFailedFields(allow bool) TableOption {
	return func(o *Options) {
		o.AllowFailedFields = allow
	}
}

// WithHelpers 是否生成字段访问器
func WithHelpers(enable bool) TableOption {
	return func(o *Options) {
		o.Helpers = enable
	}
}
