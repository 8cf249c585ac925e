package bitmagic

import (
	"reflect"
	"slices"
	"sync"
)

// Registry 显式的字段表注册中心
//
// 由宿主类型或模块持有并显式传递，替代按名字在宿主类型上的隐式查找。
// 同时缓存每个宿主实例对应的 View；缓存只影响性能，View 本身不缓存原始值。
// 只有指针类型的宿主会被缓存，缓存项在调用 Forget 或重新声明同名字段表之前一直保留，
// 长期存活的 Registry 在宿主实例不再使用时需要调用 Forget 释放。
// 并发安全。
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
	order  []string
	views  map[viewKey]*View
}

type viewKey struct {
	table *Table
	host  Host
}

func NewRegistry() *Registry {
	return &Registry{
		tables: make(map[string]*Table),
		views:  make(map[viewKey]*View),
	}
}

// Declare 构造并注册字段表，同名声明会替换旧表
func (r *Registry) Declare(name string, entries ...Entry) (*Table, error) {
	t, err := NewTable(name, entries...)
	if err != nil {
		return nil, err
	}
	r.DeclareTable(t)
	return t, nil
}

// DeclareTable 注册已构造的字段表
func (r *Registry) DeclareTable(t *Table) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.tables[t.name]; ok {
		for k := range r.views {
			if k.table == old {
				delete(r.views, k)
			}
		}
	} else {
		r.order = append(r.order, t.name)
	}
	r.tables[t.name] = t
}

// Table 按名称查找字段表
func (r *Registry) Table(name string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[name]
	return t, ok
}

// Names 按注册顺序返回所有名称
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

// View 返回宿主实例在指定字段表上的 View，可比较的宿主会被缓存
func (r *Registry) View(name string, host Host) (*View, error) {
	t, ok := r.Table(name)
	if !ok {
		return nil, inputErrorf("no bit field declaration named %q", name)
	}
	if !cacheable(host) {
		return t.View(host), nil
	}

	key := viewKey{table: t, host: host}
	r.mu.RLock()
	v, ok := r.views[key]
	r.mu.RUnlock()
	if ok {
		return v, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok = r.views[key]; !ok {
		v = t.View(host)
		r.views[key] = v
	}
	return v, nil
}

// Forget 丢弃宿主实例的 View 缓存
func (r *Registry) Forget(host Host) {
	if !cacheable(host) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.views {
		if k.host == host {
			delete(r.views, k)
		}
	}
}

// cacheable 只缓存指针宿主，值类型宿主即使静态类型可比较，动态字段也可能不可哈希
func cacheable(host Host) bool {
	return host != nil && reflect.TypeOf(host).Kind() == reflect.Pointer
}
