package pipeline

import (
	"fmt"
	"math"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/envelope"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/sim"
)

// skipDistance 无法保持速度又无法追赶时，游标向前跳过的距离（米）
const skipDistance = 1.

// maxEffortBuilder 最大能力包络的构建状态
type maxEffortBuilder struct {
	ctx      *sim.Context
	maxSpeed *envelope.Envelope
	builder  *envelope.OverlayBuilder
	cursor   *envelope.Cursor
}

// newAccelerationBuilder 以0为下限、以最高速度包络为上限的加速片段构建器
func (b *maxEffortBuilder) newAccelerationBuilder(profile envelope.Profile) (*envelope.PartBuilder, *envelope.ConstrainedPartBuilder) {
	partBuilder := envelope.NewPartBuilder(envelope.MetaWithProfile(profile))
	return partBuilder, envelope.NewConstrainedPartBuilder(
		partBuilder,
		envelope.NewSpeedConstraint(0, envelope.Floor),
		envelope.NewEnvelopeConstraint(b.maxSpeed, envelope.Ceiling),
	)
}

// accelerate 从(position, speed)开始加入一段加速曲线
// 返回：加速曲线的终点，没有生成任何步长时ok为false
func (b *maxEffortBuilder) accelerate(profile envelope.Profile, position, speed float64) (lastPos float64, ok bool) {
	partBuilder, consumer := b.newAccelerationBuilder(profile)
	sim.Accelerate(b.ctx, position, speed, consumer, envelope.Forward)
	if partBuilder.IsEmpty() {
		return position, false
	}
	part := partBuilder.Build()
	log.Debugf("%v curve from (%.3f, %.3f) to (%.3f, %.3f)",
		profile, part.BeginPos(), part.BeginSpeed(), part.EndPos(), part.EndSpeed())
	b.builder.AddPart(part)
	return consumer.LastPos(), true
}

// plateau 在匀速片段上尝试保持速度
// 算法说明：
// 1. 以EQUAL速度约束和片段位置范围约束积分保持速度
// 2. 未能到达片段终点时，从失败处以最大牵引追赶（CATCHING_UP），直到重新回到最高速度
// 3. 追赶也没有生成步长时，游标向前跳过skipDistance，避免死循环
func (b *maxEffortBuilder) plateau(part *envelope.Part) {
	position, speed := b.cursor.Position(), b.cursor.Speed()
	end := part.EndPos()

	partBuilder := envelope.NewPartBuilder(envelope.MetaWithProfile(envelope.ProfileConstantSpeed))
	consumer := envelope.NewConstrainedPartBuilder(
		partBuilder,
		envelope.NewSpeedConstraint(speed, envelope.Equal),
		envelope.NewPositionConstraint(part.BeginPos(), end),
	)
	sim.Maintain(b.ctx, position, speed, consumer, envelope.Forward)
	lastPos := position
	if !partBuilder.IsEmpty() {
		b.builder.AddPart(partBuilder.Build())
		lastPos = consumer.LastPos()
	}
	if lastPos >= end || envelope.ArePositionsEqual(lastPos, end) {
		b.cursor.FindPosition(end)
		return
	}

	log.Debugf("speed %.3f cannot be maintained after %.3f", speed, lastPos)
	if catchUpPos, ok := b.accelerate(envelope.ProfileCatchingUp, lastPos, speed); ok {
		b.cursor.FindPosition(catchUpPos)
		return
	}
	b.cursor.FindPosition(min(lastPos+skipDistance, end))
}

// MaxEffortEnvelope 最大能力包络
// 功能：在最高速度包络上加入加速曲线，并验证匀速区段能否保持
// 参数：ctx-仿真上下文，initialSpeed-初速度，maxSpeed-最高速度包络
// 返回：连续的最大能力包络
// 算法说明：
// 1. 初速度低于包络起点速度时，从起点开始加速；一步都无法加速说明牵引力不足以启动
// 2. 正向游标遍历包络：匀速片段尝试保持速度；片段交界处速度升高时加速；其他片段直接跳过
// 3. 结果不连续说明存在无法恢复的停车，返回错误
func MaxEffortEnvelope(ctx *sim.Context, initialSpeed float64, maxSpeed *envelope.Envelope) (*envelope.Envelope, error) {
	if math.IsNaN(initialSpeed) || initialSpeed < 0 {
		return nil, fmt.Errorf("%w: initial speed %f must not be negative", sim.ErrInvalidInput, initialSpeed)
	}
	beginPos, beginSpeed := maxSpeed.BeginPos(), maxSpeed.BeginSpeed()
	if initialSpeed > beginSpeed && !envelope.AreSpeedsEqual(initialSpeed, beginSpeed) {
		return nil, fmt.Errorf("%w: initial speed %f exceeds the max speed %f at the start of the path",
			sim.ErrInvalidInput, initialSpeed, beginSpeed)
	}

	b := &maxEffortBuilder{
		ctx:      ctx,
		maxSpeed: maxSpeed,
		builder:  envelope.NewForwardOverlay(maxSpeed),
		cursor:   envelope.ForwardCursor(maxSpeed),
	}

	if initialSpeed < beginSpeed && !envelope.AreSpeedsEqual(initialSpeed, beginSpeed) {
		lastPos, ok := b.accelerate(envelope.ProfileAccelerating, beginPos, initialSpeed)
		if !ok {
			return nil, &sim.ImpossibleSimulationError{Reason: "not enough traction to start", Position: beginPos}
		}
		b.cursor.FindPosition(lastPos)
	}

	for !b.cursor.HasReachedEnd() {
		part := b.cursor.Part()
		position := b.cursor.Position()

		if position == part.EndPos() {
			nextIndex := b.cursor.NextPartIndex()
			if nextIndex == -1 {
				b.cursor.MoveToEnd()
				break
			}
			next := maxSpeed.Get(nextIndex)
			if next.BeginSpeed() > part.EndSpeed() && !envelope.AreSpeedsEqual(next.BeginSpeed(), part.EndSpeed()) {
				lastPos, ok := b.accelerate(envelope.ProfileAccelerating, position, part.EndSpeed())
				if !ok {
					return nil, &sim.ImpossibleSimulationError{Reason: "not enough traction to accelerate", Position: position}
				}
				b.cursor.FindPosition(lastPos)
				continue
			}
			b.cursor.NextPart()
			continue
		}

		if part.IsConstantSpeed() {
			b.plateau(part)
			continue
		}
		b.cursor.FindPosition(part.EndPos())
	}

	result := b.builder.Build()
	if !result.Continuous() {
		return nil, &sim.ImpossibleSimulationError{
			Reason:   "the train stops and cannot resume",
			Position: firstDiscontinuity(result),
		}
	}
	return result, nil
}

// firstDiscontinuity 第一个速度不连续的片段交界位置
func firstDiscontinuity(e *envelope.Envelope) float64 {
	for i := 0; i < e.Size()-1; i++ {
		if !envelope.AreSpeedsEqual(e.Get(i).EndSpeed(), e.Get(i+1).BeginSpeed()) {
			return e.Get(i).EndPos()
		}
	}
	return math.NaN()
}
