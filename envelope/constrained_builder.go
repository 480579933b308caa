package envelope

import "math"

// ConstrainedPartBuilder 带约束的片段构建器
// 功能：每个候选步长都交给全部约束检查，在第一个违反约束的点处截断片段
// 说明：
//   - 多个约束同时截断时，沿构建方向最早的截断点生效
//   - 截断后片段结束，AddStep返回false，调用方必须停止添加
type ConstrainedPartBuilder struct {
	sink        *PartBuilder
	constraints []*Constraint

	direction        Direction
	lastPos          float64
	lastSpeed        float64
	lastIntersection int // 截断片段的约束下标，-1表示没有截断
}

// NewConstrainedPartBuilder 创建带约束的片段构建器
func NewConstrainedPartBuilder(sink *PartBuilder, constraints ...*Constraint) *ConstrainedPartBuilder {
	return &ConstrainedPartBuilder{
		sink:             sink,
		constraints:      constraints,
		direction:        Forward,
		lastPos:          math.NaN(),
		lastSpeed:        math.NaN(),
		lastIntersection: -1,
	}
}

func (b *ConstrainedPartBuilder) LastPos() float64   { return b.lastPos }
func (b *ConstrainedPartBuilder) LastSpeed() float64 { return b.lastSpeed }

// LastIntersection 截断片段的约束在约束列表中的下标，没有截断时为-1
func (b *ConstrainedPartBuilder) LastIntersection() int {
	return b.lastIntersection
}

// InitEnvelopePart 检查并设置片段起点
// 返回：任一约束拒绝起点时返回false，且不会初始化底层构建器
func (b *ConstrainedPartBuilder) InitEnvelopePart(position, speed float64, direction Direction) bool {
	for _, constraint := range b.constraints {
		if !constraint.InitCheck(direction, position, speed) {
			return false
		}
	}
	b.direction = direction
	b.lastPos = position
	b.lastSpeed = speed
	return b.sink.InitEnvelopePart(position, speed, direction)
}

// AddStep 检查并添加一个数据点
// 返回：步长完整添加时返回true；被约束截断（或没有前进）时返回false
func (b *ConstrainedPartBuilder) AddStep(position, speed float64) bool {
	if math.IsNaN(b.lastPos) {
		log.Panic("constrained part builder must be initialized before adding steps")
	}
	if b.direction.ComparePos(position, b.lastPos) <= 0 {
		return false
	}

	cut, found := EnvelopePoint{}, false
	for i, constraint := range b.constraints {
		point, ok := constraint.StepCheck(b.lastPos, b.lastSpeed, position, speed)
		if !ok {
			continue
		}
		if !found || b.direction.ComparePos(point.Position, cut.Position) < 0 {
			cut, found = point, true
			b.lastIntersection = i
		}
	}

	if !found {
		b.addStep(position, speed)
		return true
	}
	// 截断点与最后一个点重合时不再添加步长
	if b.direction.ComparePos(cut.Position, b.lastPos) > 0 {
		b.addStep(cut.Position, cut.Speed)
	}
	return false
}

func (b *ConstrainedPartBuilder) addStep(position, speed float64) {
	b.sink.AddStep(position, speed)
	b.lastPos = position
	b.lastSpeed = speed
}
