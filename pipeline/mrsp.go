package pipeline

import (
	"fmt"
	"math"
	"slices"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/envelope"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/sim"
)

// SpeedLimit 线路限速区段
type SpeedLimit struct {
	Begin float64 `yaml:"begin" bson:"begin"` // 起点（米）
	End   float64 `yaml:"end" bson:"end"`     // 终点（米）
	Speed float64 `yaml:"speed" bson:"speed"` // 限速（米/秒）
}

// MRSP 构建最严格限速曲线
// 功能：把线路限速与列车最高速度合并为一条分段常速的包络
// 参数：pathLength-路径长度，limits-限速区段，rollingStock-列车
// 返回：每个片段为CONSTANT_SPEED的包络，限速来源记录在Limit中
// 算法说明：
// 1. 限速区段的终点向后延长一个车长，列车尾部离开区段前不能提速
// 2. 用所有区段端点把路径切分为若干区间，每个区间取覆盖它的最低限速
// 3. 合并速度与来源都相同的相邻区间
func MRSP(pathLength float64, limits []SpeedLimit, rollingStock sim.RollingStock) (*envelope.Envelope, error) {
	if pathLength <= 0 || math.IsInf(pathLength, 0) || math.IsNaN(pathLength) {
		return nil, fmt.Errorf("%w: path length %f must be positive", sim.ErrInvalidInput, pathLength)
	}
	if rollingStock.MaxSpeed() <= 0 {
		return nil, fmt.Errorf("%w: train max speed %f must be positive", sim.ErrInvalidInput, rollingStock.MaxSpeed())
	}

	type interval struct {
		begin, end, speed float64
	}
	extended := make([]interval, 0, len(limits))
	for i, limit := range limits {
		if !(limit.Begin < limit.End) || !(limit.Speed > 0) || math.IsInf(limit.Speed, 0) {
			return nil, fmt.Errorf("%w: speed limit %d [%f, %f] at %f is invalid",
				sim.ErrInvalidInput, i, limit.Begin, limit.End, limit.Speed)
		}
		begin := lo.Clamp(limit.Begin, 0, pathLength)
		end := lo.Clamp(limit.End+rollingStock.Length(), 0, pathLength)
		if begin >= end {
			continue
		}
		extended = append(extended, interval{begin: begin, end: end, speed: limit.Speed})
	}

	points := []float64{0, pathLength}
	for _, it := range extended {
		points = append(points, it.begin, it.end)
	}
	points = lo.Uniq(points)
	slices.Sort(points)

	merged := make([]interval, 0, len(points))
	kinds := make([]envelope.LimitKind, 0, len(points))
	for i := 0; i < len(points)-1; i++ {
		begin, end := points[i], points[i+1]
		speed, kind := mathutil.INF, envelope.LimitNone
		if rollingStock.MaxSpeed() < speed {
			speed, kind = rollingStock.MaxSpeed(), envelope.TrainLimit
		}
		for _, it := range extended {
			if it.begin <= begin && it.end >= end && it.speed < speed {
				speed, kind = it.speed, envelope.SpeedLimit
			}
		}
		if n := len(merged); n > 0 && merged[n-1].speed == speed && kinds[n-1] == kind {
			merged[n-1].end = end
			continue
		}
		merged = append(merged, interval{begin: begin, end: end, speed: speed})
		kinds = append(kinds, kind)
	}

	parts := make([]*envelope.Part, len(merged))
	for i, it := range merged {
		meta := envelope.MetaWithProfile(envelope.ProfileConstantSpeed)
		meta.Limit = kinds[i]
		parts[i] = envelope.NewPartGenerateTimes(
			meta,
			[]float64{it.begin, it.end},
			[]float64{it.speed, it.speed},
		)
	}
	log.Debugf("built MRSP of %d parts over %.3fm", len(parts), pathLength)
	return envelope.MakeEnvelope(parts...), nil
}
