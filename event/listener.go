package event

import (
	"runtime/debug"
	"sort"

	"github.com/wildmap/bitmagic/xlog"
)

// Listener 监听器
type Listener[T any] struct {
	key      string  // 监听的事件
	priority int     // 优先级，值越小越先执行
	consume  func(T) // 回调
}

func NewListener[T any](key string, priority int, consume func(T)) *Listener[T] {
	return &Listener[T]{
		key:      key,
		priority: priority,
		consume:  consume,
	}
}

func (l *Listener[T]) Key() string {
	return l.key
}

func (l *Listener[T]) onEvent(i T) {
	defer func() {
		if r := recover(); r != nil {
			xlog.Errorf("%s key %d priority listener panic %v\n%s", l.key, l.priority, r, string(debug.Stack()))
		}
	}()
	l.consume(i)
}

// ------------------------------------------------------------------------------

// 监听器集合
type listenerSet[T any] struct {
	listeners []*Listener[T]
	sorted    bool
}

func newListenerSet[T any]() *listenerSet[T] {
	return &listenerSet[T]{
		sorted: true,
	}
}

func (set *listenerSet[T]) register(l *Listener[T]) {
	// 防止重复注册同一个监听器实例
	for _, existing := range set.listeners {
		if existing == l {
			return
		}
	}

	set.listeners = append(set.listeners, l)
	set.sorted = false
}

func (set *listenerSet[T]) unregister(l *Listener[T]) {
	for i := 0; i < len(set.listeners); i++ {
		if set.listeners[i] == l {
			copy(set.listeners[i:], set.listeners[i+1:])
			set.listeners[len(set.listeners)-1] = nil
			set.listeners = set.listeners[:len(set.listeners)-1]
			return
		}
	}
}

// snapshot 返回按优先级排序后的副本，调用方需持有写锁
func (set *listenerSet[T]) snapshot() []*Listener[T] {
	if !set.sorted {
		sort.Stable(set)
		set.sorted = true
	}
	listeners := make([]*Listener[T], len(set.listeners))
	copy(listeners, set.listeners)
	return listeners
}

// Len implement sort.Interface
func (set *listenerSet[T]) Len() int {
	return len(set.listeners)
}

// Swap implement sort.Interface
func (set *listenerSet[T]) Swap(i, j int) {
	set.listeners[i], set.listeners[j] = set.listeners[j], set.listeners[i]
}

// Less implement sort.Interface
func (set *listenerSet[T]) Less(i, j int) bool {
	return set.listeners[i].priority < set.listeners[j].priority
}
