package envelope

import (
	"math"
	"slices"
)

// StepConsumer 接收积分器逐步产生的数据点
type StepConsumer interface {
	// InitEnvelopePart 设置片段起点，返回false表示起点不可用
	InitEnvelopePart(position, speed float64, direction Direction) bool
	// AddStep 添加一个数据点，返回false表示片段已经结束，调用方必须停止添加
	AddStep(position, speed float64) bool
}

// PartBuilder 包络片段构建器
// 功能：按构建方向累积位置和速度，步长时间由物理内核推导
// 说明：反向构建的片段在Build时翻转为位置递增
type PartBuilder struct {
	meta      PartMeta
	direction Direction

	positions  []float64
	speeds     []float64
	timeDeltas []float64
}

// NewPartBuilder 创建片段构建器
func NewPartBuilder(meta PartMeta) *PartBuilder {
	return &PartBuilder{meta: meta, direction: Forward}
}

// SetMeta 修改片段元数据
func (b *PartBuilder) SetMeta(meta PartMeta) {
	b.meta = meta
}

func (b *PartBuilder) Meta() PartMeta {
	return b.meta
}

func (b *PartBuilder) Direction() Direction {
	return b.direction
}

// InitEnvelopePart 设置片段起点
func (b *PartBuilder) InitEnvelopePart(position, speed float64, direction Direction) bool {
	if len(b.positions) != 0 {
		log.Panicf("envelope part builder was already initialized at %f", b.positions[0])
	}
	b.direction = direction
	b.positions = append(b.positions, position)
	b.speeds = append(b.speeds, speed)
	return true
}

// AddStep 添加数据点，时间由物理内核计算
func (b *PartBuilder) AddStep(position, speed float64) bool {
	lastPos, lastSpeed := b.LastPos(), b.LastSpeed()
	time := InterpolateStepTime(lastPos, position, lastSpeed, speed, position-lastPos)
	b.AddStepWithTime(position, speed, time)
	return true
}

// AddStepWithTime 添加数据点及其步长时间
func (b *PartBuilder) AddStepWithTime(position, speed, time float64) {
	if len(b.positions) == 0 {
		log.Panic("envelope part builder must be initialized before adding steps")
	}
	if b.direction.ComparePos(position, b.LastPos()) <= 0 {
		log.Panicf("envelope part builder going %v cannot add step %f after %f", b.direction, position, b.LastPos())
	}
	b.positions = append(b.positions, position)
	b.speeds = append(b.speeds, speed)
	b.timeDeltas = append(b.timeDeltas, time)
}

// StepCount 已累积的步长数
func (b *PartBuilder) StepCount() int {
	return len(b.timeDeltas)
}

// IsEmpty 是否没有任何步长
func (b *PartBuilder) IsEmpty() bool {
	return len(b.timeDeltas) == 0
}

// LastPos 最后一个数据点的位置，未初始化时为NaN
func (b *PartBuilder) LastPos() float64 {
	if len(b.positions) == 0 {
		return math.NaN()
	}
	return b.positions[len(b.positions)-1]
}

// LastSpeed 最后一个数据点的速度，未初始化时为NaN
func (b *PartBuilder) LastSpeed() float64 {
	if len(b.speeds) == 0 {
		return math.NaN()
	}
	return b.speeds[len(b.speeds)-1]
}

// Reverse 翻转已累积的数据点
func (b *PartBuilder) Reverse() {
	slices.Reverse(b.positions)
	slices.Reverse(b.speeds)
	slices.Reverse(b.timeDeltas)
	b.direction = b.direction.Reverse()
}

// Build 冻结为包络片段
// 说明：反向构建的数据点会先被翻转为位置递增；没有任何步长时panic
func (b *PartBuilder) Build() *Part {
	if b.IsEmpty() {
		log.Panicf("cannot build an empty envelope part (%v)", b.meta)
	}
	positions := slices.Clone(b.positions)
	speeds := slices.Clone(b.speeds)
	timeDeltas := slices.Clone(b.timeDeltas)
	if b.direction == Backward {
		slices.Reverse(positions)
		slices.Reverse(speeds)
		slices.Reverse(timeDeltas)
	}
	return NewPart(b.meta, positions, speeds, timeDeltas)
}
