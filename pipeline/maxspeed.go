package pipeline

import (
	"math"

	"github.com/samber/lo"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/envelope"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/sim"
)

// increase 片段交界处速度沿方向升高
func increase(_, prevSpeed, _, nextSpeed float64) bool {
	return prevSpeed < nextSpeed
}

// newBrakingBuilder 以0为下限、以base为上限的制动片段构建器
func newBrakingBuilder(meta envelope.PartMeta, base *envelope.Envelope) (*envelope.PartBuilder, *envelope.ConstrainedPartBuilder) {
	partBuilder := envelope.NewPartBuilder(meta)
	return partBuilder, envelope.NewConstrainedPartBuilder(
		partBuilder,
		envelope.NewSpeedConstraint(0, envelope.Floor),
		envelope.NewEnvelopeConstraint(base, envelope.Ceiling),
	)
}

// addBrakingCurves 在MRSP每个降速点之前加入制动曲线
// 算法说明：
// 1. 反向游标查找沿反方向速度升高的片段交界（即正向降速点）
// 2. 从交界处较低的速度出发反向积分最大制动，直到与MRSP相交
// 3. 游标跳到制动曲线的终点，被制动曲线覆盖的交界不再处理
func addBrakingCurves(ctx *sim.Context, mrsp *envelope.Envelope) *envelope.Envelope {
	builder := envelope.NewBackwardOverlay(mrsp)
	cursor := envelope.BackwardCursor(mrsp)
	for cursor.FindPartTransition(increase) {
		startPos, startSpeed := cursor.Position(), cursor.Speed()
		partBuilder, consumer := newBrakingBuilder(envelope.MetaWithProfile(envelope.ProfileBraking), mrsp)
		sim.Decelerate(ctx, startPos, startSpeed, consumer, envelope.Backward)
		if partBuilder.IsEmpty() {
			if !cursor.NextPart() {
				break
			}
			continue
		}
		part := partBuilder.Build()
		log.Debugf("braking curve from (%.3f, %.3f) to (%.3f, %.3f)",
			part.EndPos(), part.EndSpeed(), part.BeginPos(), part.BeginSpeed())
		builder.AddPart(part)
		if !cursor.FindPosition(consumer.LastPos()) {
			break
		}
	}
	return builder.Build()
}

// addStopBrakingCurves 为每个停车点加入制动到0的曲线
// 说明：位置相同的停车点只保留第一个编号的制动曲线
func addStopBrakingCurves(ctx *sim.Context, stops []float64, base *envelope.Envelope) (*envelope.Envelope, error) {
	done := make([]float64, 0, len(stops))
	for i, stop := range stops {
		if stop == 0 {
			continue
		}
		if stop > base.EndPos() && envelope.ArePositionsEqual(stop, base.EndPos()) {
			stop = base.EndPos()
		}
		if stop < base.BeginPos() || stop > base.EndPos() || math.IsNaN(stop) {
			return nil, &sim.StopOutOfRangeError{Index: i, Position: stop, PathLength: base.EndPos()}
		}
		if lo.ContainsBy(done, func(p float64) bool { return envelope.ArePositionsEqual(p, stop) }) {
			log.Warnf("stop %d at %.3f duplicates an earlier stop, ignored", i, stop)
			continue
		}
		done = append(done, stop)

		meta := envelope.MetaWithProfile(envelope.ProfileBraking).WithStop(i)
		partBuilder, consumer := newBrakingBuilder(meta, base)
		sim.Decelerate(ctx, stop, 0, consumer, envelope.Backward)
		if partBuilder.IsEmpty() {
			log.Warnf("stop %d at %.3f does not need any braking", i, stop)
			continue
		}
		part := partBuilder.Build()
		log.Debugf("stop %d braking curve from %.3f to %.3f", i, part.BeginPos(), part.EndPos())
		builder := envelope.NewBackwardOverlay(base)
		builder.AddPart(part)
		base = builder.Build()
	}
	return base, nil
}

// MaxSpeedEnvelope 最高速度包络
// 功能：在MRSP上加入降速点前的制动曲线和停车点前的制动曲线
// 参数：ctx-仿真上下文，stops-停车点位置（按输入顺序编号），mrsp-最严格限速曲线
// 返回：最高速度包络；停车点超出路径范围时返回StopOutOfRangeError
func MaxSpeedEnvelope(ctx *sim.Context, stops []float64, mrsp *envelope.Envelope) (*envelope.Envelope, error) {
	maxSpeed := addBrakingCurves(ctx, mrsp)
	return addStopBrakingCurves(ctx, stops, maxSpeed)
}
