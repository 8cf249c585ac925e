package bitmagic

import (
	"math/big"

	"github.com/wildmap/bitmagic/event"
)

// Change 一次成功提交的写入
type Change struct {
	Table  string
	View   *View
	Old    *big.Int // 写入前的值
	New    *big.Int // 提交给回调的新值
	Result any      // 回调返回值
}

// NotifyingUpdater 包装提交回调，next 成功后以表名为 key 抛出 Change 事件
//
//	facade := event.NewFacade[bitmagic.Change]()
//	facade.QuickRegister("settings", 0, func(c bitmagic.Change) { ... })
//	t, _ := bitmagic.NewTableWithOptions("settings", entries,
//	    bitmagic.WithUpdater(bitmagic.NotifyingUpdater(facade, nil)))
func NotifyingUpdater(f *event.Facade[Change], next Updater) Updater {
	if next == nil {
		next = DefaultUpdater
	}
	return func(v *View, value *big.Int) (any, error) {
		old, err := v.Value()
		if err != nil {
			return nil, err
		}
		result, err := next(v, value)
		if err != nil {
			return nil, err
		}
		f.Fire(v.table.name, Change{
			Table:  v.table.name,
			View:   v,
			Old:    old,
			New:    new(big.Int).Set(value),
			Result: result,
		})
		return result, nil
	}
}
