// Package ref 提供"可观察单值单元"的最小实现
//
// 外部写入方（输入系统、时钟、摄像机控制等）可以在两帧之间随时更新值；
// 核心逻辑只在每个 tick/帧读取一次当前值，从不订阅变更通知。
package ref

// Ref 保存单个值的可变单元
type Ref[T any] struct {
	value   T
	version uint64
}

// New 创建一个初始值为 v 的 Ref
func New[T any](v T) *Ref[T] {
	return &Ref[T]{value: v}
}

// Get 返回当前值
func (r *Ref[T]) Get() T {
	return r.value
}

// Set 写入新值并递增版本号
func (r *Ref[T]) Set(v T) {
	r.value = v
	r.version++
}

// Version 返回写入次数，宿主可以据此廉价地判断值是否被改写过
func (r *Ref[T]) Version() uint64 {
	return r.version
}
