package ecs

import "testing"

// 测试实体与钩子类型定义
type testEntity struct {
	id   EntityID
	name string
}

func (e *testEntity) ID() EntityID { return e.id }

type testHooks struct {
	calls []string
}

func newTestEntities(pool *IDPool, names ...string) []*testEntity {
	out := make([]*testEntity, 0, len(names))
	for _, n := range names {
		out = append(out, &testEntity{id: pool.CreateEntity(), name: n})
	}
	return out
}

func TestCreateEntity(t *testing.T) {
	pool := NewIDPool()
	id1 := pool.CreateEntity()
	id2 := pool.CreateEntity()

	// 测试实体ID唯一性
	if id1 == id2 {
		t.Error("Entity IDs should be unique")
	}

	// 测试ID从1开始
	if id1 != 1 {
		t.Errorf("First entity ID should be 1, got %d", id1)
	}

	if id2 != 2 {
		t.Errorf("Second entity ID should be 2, got %d", id2)
	}

	// 零值 IDPool 也不会分配无效ID
	var zero IDPool
	if id := zero.CreateEntity(); id == InvalidEntity {
		t.Error("Zero-value pool returned the invalid ID")
	}
}

// TestRegistryOrder 测试迭代顺序等于注册顺序
func TestRegistryOrder(t *testing.T) {
	r := NewRegistry[*testEntity, testHooks]()
	es := newTestEntities(NewIDPool(), "a", "b", "c")
	for _, e := range es {
		r.Add(e)
	}

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("Expected 3 entities, got %d", len(list))
	}
	for i, e := range list {
		if e != es[i] {
			t.Errorf("Position %d: expected %s, got %s", i, es[i].name, e.name)
		}
	}
}

// TestRegistryDuplicateAdd 测试重复注册被忽略
func TestRegistryDuplicateAdd(t *testing.T) {
	r := NewRegistry[*testEntity, testHooks]()
	e := &testEntity{id: 7}

	if !r.Add(e) {
		t.Error("First Add should succeed")
	}
	if r.Add(e) {
		t.Error("Duplicate Add should be ignored")
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 entity, got %d", r.Len())
	}
}

// TestRegistryRemove 测试移除实体同时删除其钩子表项
func TestRegistryRemove(t *testing.T) {
	r := NewRegistry[*testEntity, testHooks]()
	es := newTestEntities(NewIDPool(), "a", "b", "c")
	for _, e := range es {
		r.Add(e)
		r.Hooks(e.ID()).calls = append(r.Hooks(e.ID()).calls, e.name)
	}

	if !r.Remove(es[1]) {
		t.Error("Remove of registered entity should report true")
	}
	if _, ok := r.HooksFor(es[1].ID()); ok {
		t.Error("Hooks entry should be dropped with the entity")
	}
	if r.Contains(es[1].ID()) {
		t.Error("Removed entity still registered")
	}

	list := r.List()
	if len(list) != 2 || list[0] != es[0] || list[1] != es[2] {
		t.Errorf("Unexpected order after remove: %v", list)
	}

	// 移除未注册实体不做任何事
	if r.Remove(&testEntity{id: 99}) {
		t.Error("Remove of unknown entity should report false")
	}
	if r.Len() != 2 {
		t.Errorf("Expected 2 entities, got %d", r.Len())
	}
}

// TestRegistryRemoveThenAdd 测试移除中间实体后下标仍然正确
func TestRegistryRemoveThenAdd(t *testing.T) {
	r := NewRegistry[*testEntity, testHooks]()
	es := newTestEntities(NewIDPool(), "a", "b", "c", "d")
	for _, e := range es {
		r.Add(e)
	}

	r.Remove(es[1])
	// 后移的实体仍可被移除
	if !r.Remove(es[3]) {
		t.Fatal("Remove of shifted entity should report true")
	}
	if r.Add(es[2]) {
		t.Error("Duplicate add after remove should be ignored")
	}
	if !r.Add(es[1]) {
		t.Fatal("Re-adding a removed entity should succeed")
	}

	list := r.List()
	want := []string{"a", "c", "b"}
	if len(list) != len(want) {
		t.Fatalf("Expected %d entities, got %d", len(want), len(list))
	}
	for i, name := range want {
		if list[i].name != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, list[i].name)
		}
	}
	if r.Contains(es[3].ID()) {
		t.Error("Removed entity still registered")
	}
	for _, e := range list {
		if !r.Contains(e.ID()) {
			t.Errorf("Entity %s should be registered", e.name)
		}
	}

	r.Clear()
	if r.Contains(es[0].ID()) || !r.Add(es[0]) {
		t.Error("Clear should reset membership")
	}
}

// TestRegistryHooks 测试钩子的查询与按需创建
func TestRegistryHooks(t *testing.T) {
	r := NewRegistry[*testEntity, testHooks]()
	e := &testEntity{id: 1}
	r.Add(e)

	if h, ok := r.HooksFor(e.ID()); ok || h != nil {
		t.Error("HooksFor should report absence before any hook is registered")
	}

	h := r.Hooks(e.ID())
	h.calls = append(h.calls, "x")
	if again := r.Hooks(e.ID()); again != h {
		t.Error("Hooks should return the same set on repeated calls")
	}
	if got, ok := r.HooksFor(e.ID()); !ok || len(got.calls) != 1 {
		t.Error("HooksFor should return the created set")
	}
}

// TestRegistryClear 测试清空注册表
func TestRegistryClear(t *testing.T) {
	r := NewRegistry[*testEntity, testHooks]()
	for _, e := range newTestEntities(NewIDPool(), "a", "b") {
		r.Add(e)
		r.Hooks(e.ID())
	}

	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Expected empty registry, got %d", r.Len())
	}
	if _, ok := r.HooksFor(1); ok {
		t.Error("Hooks should be cleared")
	}
}

// TestRegistryListSnapshot 测试 List 返回的切片不受后续修改影响
func TestRegistryListSnapshot(t *testing.T) {
	r := NewRegistry[*testEntity, testHooks]()
	es := newTestEntities(NewIDPool(), "a", "b")
	for _, e := range es {
		r.Add(e)
	}

	snapshot := r.List()
	for _, e := range snapshot {
		r.Remove(e)
	}
	if len(snapshot) != 2 {
		t.Errorf("Snapshot should still hold 2 entities, got %d", len(snapshot))
	}
	if r.Len() != 0 {
		t.Errorf("Expected all entities removed, got %d", r.Len())
	}
}

func TestRegistryEachStops(t *testing.T) {
	r := NewRegistry[*testEntity, testHooks]()
	for _, e := range newTestEntities(NewIDPool(), "a", "b", "c") {
		r.Add(e)
	}

	visited := 0
	r.Each(func(e *testEntity) bool {
		visited++
		return e.name != "b"
	})
	if visited != 2 {
		t.Errorf("Expected Each to stop after 2 entities, visited %d", visited)
	}
}
