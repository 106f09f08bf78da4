package ecs

// EntityID 是实体的唯一标识符
// 0 保留为无效 ID
type EntityID uint64

// InvalidEntity 无效实体 ID
const InvalidEntity EntityID = 0

// Entity 由注册表管理的对象，只要求提供稳定的 ID
type Entity interface {
	ID() EntityID
}

// IDPool 分配实体 ID
type IDPool struct {
	nextID uint64
}

// NewIDPool 创建一个新的 IDPool 实例
func NewIDPool() *IDPool {
	return &IDPool{
		nextID: 1, // ID从1开始,0保留为无效ID
	}
}

// CreateEntity 返回一个新的唯一ID
func (p *IDPool) CreateEntity() EntityID {
	if p.nextID == 0 {
		p.nextID = 1
	}
	id := EntityID(p.nextID)
	p.nextID++
	return id
}
