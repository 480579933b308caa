package envelope

import (
	"math"
	"slices"
)

// OverlayBuilder 包络覆盖构建器
// 功能：把新构建的片段覆盖到基准包络上，未被覆盖的基准部分原样保留（必要时在覆盖边界处切分）
// 说明：覆盖片段必须按遍历方向依次添加且互不重叠
type OverlayBuilder struct {
	base      *Envelope
	direction Direction

	parts      []*Part // 按遍历方向排列的结果片段
	lastEndPos float64 // 上一个覆盖片段的终点（按方向），NaN表示还没有覆盖
}

// NewOverlayBuilder 创建覆盖构建器
func NewOverlayBuilder(base *Envelope, direction Direction) *OverlayBuilder {
	return &OverlayBuilder{base: base, direction: direction, lastEndPos: math.NaN()}
}

// NewForwardOverlay 正向覆盖构建器
func NewForwardOverlay(base *Envelope) *OverlayBuilder {
	return NewOverlayBuilder(base, Forward)
}

// NewBackwardOverlay 反向覆盖构建器
func NewBackwardOverlay(base *Envelope) *OverlayBuilder {
	return NewOverlayBuilder(base, Backward)
}

func (b *OverlayBuilder) Base() *Envelope {
	return b.base
}

// scanEndPos 上一个覆盖片段的终点，没有时为基准包络的起点（按方向）
func (b *OverlayBuilder) scanEndPos() float64 {
	if !math.IsNaN(b.lastEndPos) {
		return b.lastEndPos
	}
	if b.direction == Backward {
		return b.base.EndPos()
	}
	return b.base.BeginPos()
}

// sliceBase 把基准包络在[from, to]（按方向）之间的部分加入结果
func (b *OverlayBuilder) sliceBase(from, to float64) {
	begin, end := from, to
	if b.direction == Backward {
		begin, end = to, from
	}
	sliced := b.base.Slice(begin, end)
	if b.direction == Backward {
		slices.Reverse(sliced)
	}
	b.parts = append(b.parts, sliced...)
}

// AddPart 添加一个覆盖片段
// 说明：片段必须位于上一个覆盖片段之后（按方向），且在基准包络范围内
func (b *OverlayBuilder) AddPart(part *Part) {
	start, end := part.BeginPos(), part.EndPos()
	if b.direction == Backward {
		start, end = end, start
	}
	scanEnd := b.scanEndPos()
	if b.direction.ComparePos(start, scanEnd) < 0 {
		log.Panicf("overlay starting at %f overlaps the previous overlay ending at %f (%v)", start, scanEnd, b.direction)
	}
	if part.BeginPos() < b.base.BeginPos() || part.EndPos() > b.base.EndPos() {
		log.Panicf("overlay [%f, %f] is outside of base envelope [%f, %f]",
			part.BeginPos(), part.EndPos(), b.base.BeginPos(), b.base.EndPos())
	}
	b.sliceBase(scanEnd, start)
	b.parts = append(b.parts, part)
	b.lastEndPos = end
}

// Build 生成覆盖后的新包络
func (b *OverlayBuilder) Build() *Envelope {
	envelopeEnd := b.base.EndPos()
	if b.direction == Backward {
		envelopeEnd = b.base.BeginPos()
	}
	parts := slices.Clone(b.parts)
	scanEnd := b.scanEndPos()
	begin, end := scanEnd, envelopeEnd
	if b.direction == Backward {
		begin, end = end, begin
	}
	tail := b.base.Slice(begin, end)
	if b.direction == Backward {
		slices.Reverse(tail)
	}
	parts = append(parts, tail...)
	if b.direction == Backward {
		slices.Reverse(parts)
	}
	return MakeEnvelope(parts...)
}
