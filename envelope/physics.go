package envelope

import (
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
)

const (
	PositionEpsilon = 1e-6 // 位置比较容差（米）
	SpeedEpsilon    = 1e-6 // 速度比较容差（米/秒）
)

// ArePositionsEqual 在容差范围内比较两个位置
func ArePositionsEqual(a, b float64) bool {
	return mathutil.Abs(a-b) < PositionEpsilon
}

// AreSpeedsEqual 在容差范围内比较两个速度
func AreSpeedsEqual(a, b float64) bool {
	return mathutil.Abs(a-b) < SpeedEpsilon
}

// StepAcceleration 计算一个步长内的加速度
// 功能：假设加速度在时间上恒定，根据步长两端的位置和速度求加速度
// 参数：lastPos,nextPos-步长起止位置，lastSpeed,nextSpeed-步长起止速度
// 返回：加速度（米/秒²），位置不变时返回0
// 算法说明：v1² = v0² + 2·a·Δx => a = (v1² - v0²) / (2·Δx)
func StepAcceleration(lastPos, nextPos, lastSpeed, nextSpeed float64) float64 {
	if lastPos == nextPos {
		if lastSpeed != nextSpeed {
			log.Panicf("degenerate step at %f changes speed from %f to %f", lastPos, lastSpeed, nextSpeed)
		}
		return 0
	}
	return (nextSpeed*nextSpeed - lastSpeed*lastSpeed) / 2 / (nextPos - lastPos)
}

// interpolateSpeed 由加速度、初速度和位移求末速度
func interpolateSpeed(acceleration, lastSpeed, positionDelta float64) float64 {
	radicand := lastSpeed*lastSpeed + 2*acceleration*positionDelta
	if radicand < 0 {
		// 浮点误差导致的负数视为0
		if radicand > -SpeedEpsilon {
			return 0
		}
		log.Panicf("negative radicand %f (a=%f, v0=%f, dx=%f)", radicand, acceleration, lastSpeed, positionDelta)
	}
	return math.Sqrt(radicand)
}

// InterpolateStepSpeed 在步长内插值速度
// 功能：计算从步长起点出发行驶positionDelta后的速度
// 参数：lastPos,nextPos,lastSpeed,nextSpeed-步长定义，positionDelta-相对起点的位移
// 返回：插值速度
func InterpolateStepSpeed(lastPos, nextPos, lastSpeed, nextSpeed, positionDelta float64) float64 {
	if positionDelta == 0 {
		return lastSpeed
	}
	if positionDelta == nextPos-lastPos {
		return nextSpeed
	}
	acceleration := StepAcceleration(lastPos, nextPos, lastSpeed, nextSpeed)
	return interpolateSpeed(acceleration, lastSpeed, positionDelta)
}

// InterpolateStepTime 在步长内插值时间
// 功能：计算从步长起点出发行驶positionDelta所需的时间
// 参数：lastPos,nextPos,lastSpeed,nextSpeed-步长定义，positionDelta-相对起点的位移
// 返回：所需时间（秒），总为非负
// 算法说明：
// 1. 加速度为0时，t = |Δx / v0|
// 2. 否则先插值得到末速度，t = |(v - v0) / a|
func InterpolateStepTime(lastPos, nextPos, lastSpeed, nextSpeed, positionDelta float64) float64 {
	acceleration := StepAcceleration(lastPos, nextPos, lastSpeed, nextSpeed)
	if acceleration == 0 {
		return mathutil.Abs(positionDelta / lastSpeed)
	}
	speed := interpolateSpeed(acceleration, lastSpeed, positionDelta)
	return mathutil.Abs((speed - lastSpeed) / acceleration)
}

// IntersectStepWithSpeed 求步长到达目标速度的位置
// 功能：在恒定加速度的步长内，求速度等于speed的位置
// 参数：lastPos,lastSpeed-步长起点，nextPos,nextSpeed-步长终点，speed-目标速度
// 返回：位置，限制在步长的位置范围内
func IntersectStepWithSpeed(lastPos, lastSpeed, nextPos, nextSpeed, speed float64) float64 {
	if lastSpeed == speed {
		return lastPos
	}
	if nextSpeed == speed {
		return nextPos
	}
	acceleration := StepAcceleration(lastPos, nextPos, lastSpeed, nextSpeed)
	if acceleration == 0 {
		// 匀速步长不会到达其它速度
		return nextPos
	}
	position := lastPos + (speed*speed-lastSpeed*lastSpeed)/2/acceleration
	return lo.Clamp(position, math.Min(lastPos, nextPos), math.Max(lastPos, nextPos))
}

// IntersectSteps 求两个步长的交点
// 功能：两个步长均为时间上的匀加速运动，求其速度-位置曲线的交点
// 参数：a0Pos,a0Speed,a1Pos,a1Speed-步长A，b0Pos,b0Speed,b1Pos,b1Speed-步长B
// 返回：交点（位置、速度）
// 算法说明：
// 1. 任一步长为匀速时，退化为IntersectStepWithSpeed
// 2. 两步长加速度相同时（v²空间平行），返回A在重叠区间起点处的点
// 3. 否则解 vA0² + 2aA(x - xA0) = vB0² + 2aB(x - xB0)
// 4. 结果限制在两个步长位置范围与速度范围的交集内
func IntersectSteps(
	a0Pos, a0Speed, a1Pos, a1Speed float64,
	b0Pos, b0Speed, b1Pos, b1Speed float64,
) EnvelopePoint {
	aAcc := StepAcceleration(a0Pos, a1Pos, a0Speed, a1Speed)
	bAcc := StepAcceleration(b0Pos, b1Pos, b0Speed, b1Speed)

	var position, speed float64
	switch {
	case aAcc == 0 && bAcc == 0:
		position = math.Max(math.Min(a0Pos, a1Pos), math.Min(b0Pos, b1Pos))
		speed = a0Speed
	case aAcc == 0:
		speed = a0Speed
		position = IntersectStepWithSpeed(b0Pos, b0Speed, b1Pos, b1Speed, speed)
	case bAcc == 0:
		speed = b0Speed
		position = IntersectStepWithSpeed(a0Pos, a0Speed, a1Pos, a1Speed, speed)
	case aAcc == bAcc:
		position = math.Max(math.Min(a0Pos, a1Pos), math.Min(b0Pos, b1Pos))
		position = lo.Clamp(position, math.Min(a0Pos, a1Pos), math.Max(a0Pos, a1Pos))
		speed = InterpolateStepSpeed(a0Pos, a1Pos, a0Speed, a1Speed, position-a0Pos)
	default:
		numerator := b0Speed*b0Speed - a0Speed*a0Speed + 2*aAcc*a0Pos - 2*bAcc*b0Pos
		position = numerator / (2 * (aAcc - bAcc))
		position = lo.Clamp(position, math.Min(a0Pos, a1Pos), math.Max(a0Pos, a1Pos))
		speed = interpolateSpeed(aAcc, a0Speed, position-a0Pos)
	}

	minPos := math.Max(math.Min(a0Pos, a1Pos), math.Min(b0Pos, b1Pos))
	maxPos := math.Min(math.Max(a0Pos, a1Pos), math.Max(b0Pos, b1Pos))
	minSpeed := math.Max(math.Min(a0Speed, a1Speed), math.Min(b0Speed, b1Speed))
	maxSpeed := math.Min(math.Max(a0Speed, a1Speed), math.Max(b0Speed, b1Speed))
	if minPos <= maxPos {
		position = lo.Clamp(position, minPos, maxPos)
	}
	if minSpeed <= maxSpeed {
		speed = lo.Clamp(speed, minSpeed, maxSpeed)
	}
	return EnvelopePoint{Position: position, Speed: speed}
}
