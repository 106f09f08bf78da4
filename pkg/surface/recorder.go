package surface

import "github.com/gonewx/gridworld/pkg/vec"

// OpKind 记录的绘制操作类型
type OpKind int

const (
	OpFillRect OpKind = iota
	OpStrokeRect
)

// String 实现 fmt.Stringer
func (k OpKind) String() string {
	if k == OpStrokeRect {
		return "strokeRect"
	}
	return "fillRect"
}

// Op 一次被记录下来的绘制操作，附带执行时的绘制状态
type Op struct {
	Kind       OpKind
	X, Y, W, H float64
	Paint      Paint
}

// Recorder 把所有绘制操作记录在内存中的 Surface
// 用于测试以及无窗口（headless）模式下统计每帧的绘制量
type Recorder struct {
	Ops []Op

	size  vec.Vec2
	paint *PaintStack
}

// NewRecorder 创建指定像素尺寸的记录表面
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{
		size:  vec.Vec2{X: width, Y: height},
		paint: NewPaintStack(),
	}
}

func (r *Recorder) Size() vec.Vec2 { return r.size }

// Resize 修改表面尺寸（模拟窗口大小变化）
func (r *Recorder) Resize(width, height float64) {
	r.size = vec.Vec2{X: width, Y: height}
}

func (r *Recorder) Save()    { r.paint.Save() }
func (r *Recorder) Restore() { r.paint.Restore() }

func (r *Recorder) SetFillStyle(style string)   { r.paint.Current.Fill = style }
func (r *Recorder) SetStrokeStyle(style string) { r.paint.Current.Stroke = style }
func (r *Recorder) SetLineWidth(width float64)  { r.paint.Current.LineWidth = width }

func (r *Recorder) FillRect(x, y, w, h float64) {
	r.Ops = append(r.Ops, Op{Kind: OpFillRect, X: x, Y: y, W: w, H: h, Paint: r.paint.Current})
}

func (r *Recorder) StrokeRect(x, y, w, h float64) {
	r.Ops = append(r.Ops, Op{Kind: OpStrokeRect, X: x, Y: y, W: w, H: h, Paint: r.paint.Current})
}

// SaveDepth 返回当前未恢复的 Save 次数，正常渲染结束后应为 0
func (r *Recorder) SaveDepth() int {
	return r.paint.Depth()
}

// Reset 清空已记录的操作
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
}

// Count 返回指定类型的操作数量
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
