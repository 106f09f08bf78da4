// Package ecs 提供实体 ID 分配和实体注册表
//
// Registry 保存实体的有序序列，以及以 EntityID 为键的钩子附表。
// 注册顺序即迭代顺序；钩子表项与实体同生同灭。
package ecs

// Registry 实体注册表
// E 是实体类型，H 是每个实体对应的钩子集合类型。
type Registry[E Entity, H any] struct {
	entities []E
	index    map[EntityID]int // ID → entities 中的下标
	hooks    map[EntityID]*H
}

// NewRegistry 创建空注册表
func NewRegistry[E Entity, H any]() *Registry[E, H] {
	return &Registry[E, H]{
		index: make(map[EntityID]int),
		hooks: make(map[EntityID]*H),
	}
}

// Add 把实体追加到序列末尾
// 已注册的 ID 会被忽略，返回 false
func (r *Registry[E, H]) Add(e E) bool {
	id := e.ID()
	if _, ok := r.index[id]; ok {
		return false
	}
	r.index[id] = len(r.entities)
	r.entities = append(r.entities, e)
	return true
}

// Remove 移除实体及其钩子表项，未注册的实体不做任何事
func (r *Registry[E, H]) Remove(e E) bool {
	id := e.ID()
	i, ok := r.index[id]
	if !ok {
		return false
	}
	copy(r.entities[i:], r.entities[i+1:])
	var zero E
	r.entities[len(r.entities)-1] = zero
	r.entities = r.entities[:len(r.entities)-1]
	for j := i; j < len(r.entities); j++ {
		r.index[r.entities[j].ID()] = j
	}
	delete(r.index, id)
	delete(r.hooks, id)
	return true
}

// Clear 清空全部实体和钩子
func (r *Registry[E, H]) Clear() {
	clear(r.entities)
	r.entities = r.entities[:0]
	clear(r.index)
	clear(r.hooks)
}

// HooksFor 查询实体的钩子集合；不存在时返回 (nil, false)
func (r *Registry[E, H]) HooksFor(id EntityID) (*H, bool) {
	h, ok := r.hooks[id]
	return h, ok
}

// Hooks 返回实体的钩子集合，不存在则创建
// 只应在实体注册期间调用
func (r *Registry[E, H]) Hooks(id EntityID) *H {
	if h, ok := r.hooks[id]; ok {
		return h
	}
	h := new(H)
	r.hooks[id] = h
	return h
}

// List 按注册顺序返回实体的快照
// 调用方在迭代期间增删实体不会影响本次返回的切片
func (r *Registry[E, H]) List() []E {
	out := make([]E, len(r.entities))
	copy(out, r.entities)
	return out
}

// Each 按注册顺序遍历实体，fn 返回 false 时停止
// 遍历期间不得修改注册表，需要修改时使用 List
func (r *Registry[E, H]) Each(fn func(E) bool) {
	for _, e := range r.entities {
		if !fn(e) {
			return
		}
	}
}

// Len 返回已注册实体数量
func (r *Registry[E, H]) Len() int {
	return len(r.entities)
}

// Contains 检查 ID 是否已注册
func (r *Registry[E, H]) Contains(id EntityID) bool {
	_, ok := r.index[id]
	return ok
}
