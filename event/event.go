package event

import (
	"sync"
)

// Facade 事件中心，按 key 分组管理监听器，T 为事件负载类型
type Facade[T any] struct {
	mu           sync.RWMutex
	listenerSets map[string]*listenerSet[T]
}

func NewFacade[T any]() *Facade[T] {
	return &Facade[T]{
		listenerSets: make(map[string]*listenerSet[T]),
	}
}

// QuickRegister 快速注册
func (e *Facade[T]) QuickRegister(key string, priority int, consume func(T)) *Listener[T] {
	if consume == nil {
		return nil
	}

	l := NewListener(key, priority, consume)
	e.Register(l)
	return l
}

// Register 注册监听器
func (e *Facade[T]) Register(l *Listener[T]) {
	if l == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	set, ok := e.listenerSets[l.key]
	if !ok {
		set = newListenerSet[T]()
		e.listenerSets[l.key] = set
	}
	set.register(l)
}

// Unregister 反注册监听器
func (e *Facade[T]) Unregister(l *Listener[T]) {
	if l == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	set, ok := e.listenerSets[l.key]
	if ok {
		set.unregister(l)
		if set.Len() == 0 {
			delete(e.listenerSets, l.key)
		}
	}
}

// Fire 抛出事件，按优先级同步调用监听器
func (e *Facade[T]) Fire(key string, input T) {
	e.mu.Lock()
	set, ok := e.listenerSets[key]
	var listeners []*Listener[T]
	if ok {
		listeners = set.snapshot()
	}
	e.mu.Unlock()

	for _, l := range listeners {
		l.onEvent(input)
	}
}
