package sim

import (
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/envelope"
)

// Gravity 重力加速度（米/秒²）
const Gravity = 9.81

// Action 司机操作
type Action int

const (
	ActionAccelerate Action = iota // 最大牵引
	ActionBrake                    // 最大制动
	ActionMaintain                 // 保持速度
	ActionCoast                    // 惰行
)

func (a Action) String() string {
	switch a {
	case ActionAccelerate:
		return "ACCELERATE"
	case ActionBrake:
		return "BRAKE"
	case ActionMaintain:
		return "MAINTAIN"
	default:
		return "COAST"
	}
}

// IntegrationStep 一个积分步长的结果
type IntegrationStep struct {
	TimeDelta     float64 // 步长时间（秒），始终非负
	PositionDelta float64 // 位移，沿积分方向带符号
	Speed         float64 // 步长终点速度
	Acceleration  float64 // 步长内的平均加速度（时间正向）
}

// WeightForce 坡道附加力
// 功能：根据列车所在区间[车尾, 车头]的平均坡度计算重力沿轨道方向的分量
// 参数：position-车头位置
// 返回：力（牛顿），上坡为负
func (ctx *Context) WeightForce(position float64) float64 {
	rs := ctx.RollingStock
	head := lo.Clamp(position, 0, ctx.Path.Length())
	tail := lo.Clamp(position-rs.Length(), 0, ctx.Path.Length())
	grade := ctx.Path.AverageGrade(tail, head)
	// 千分比换算为角度
	angle := math.Atan(grade / 1000)
	return -rs.Mass() * Gravity * math.Sin(angle)
}

// forcesAcceleration 合力除以惯性质量
// 说明：静止时阻力与制动力是静摩擦，其他力不足以克服时列车保持静止
func forcesAcceleration(speed, traction, braking, weight, resistance, inertia float64) float64 {
	opposite := resistance + braking
	if speed == 0 {
		total := traction + weight
		if mathutil.Abs(total) < opposite {
			return 0
		}
		return (total + math.Copysign(opposite, -total)) / inertia
	}
	return (traction + weight - opposite) / inertia
}

// Acceleration 给定操作下列车的加速度
// 参数：position-车头位置，speed-速度，action-操作
// 返回：时间正向的加速度（米/秒²）
// 说明：
//   - 恒定减速度制动直接返回-gamma，最大制动力制动不考虑静摩擦
//   - 保持速度时，所需的牵引力或制动力在列车能力范围内则返回0，否则以最大能力计算
func (ctx *Context) Acceleration(position, speed float64, action Action) float64 {
	rs := ctx.RollingStock
	weight := ctx.WeightForce(position)
	resistance := rs.RollingResistance(speed)
	inertia := rs.Inertia()

	switch action {
	case ActionAccelerate:
		acc := forcesAcceleration(speed, rs.MaxEffort(speed), 0, weight, resistance, inertia)
		if comfort := rs.ComfortAcceleration(); comfort > 0 && acc > comfort {
			acc = comfort
		}
		return acc
	case ActionBrake:
		if rs.GammaType() == GammaConst {
			return -rs.Deceleration()
		}
		// 制动力只在运动时存在，反向积分从静止出发时也按运动计算
		return (weight - resistance - rs.MaxBrakingForce(speed)) / inertia
	case ActionMaintain:
		// 匀速所需的牵引力，负数表示需要制动
		required := resistance - weight
		if required >= 0 {
			if maxEffort := rs.MaxEffort(speed); required > maxEffort {
				return forcesAcceleration(speed, maxEffort, 0, weight, resistance, inertia)
			}
			return 0
		}
		if maxBraking := rs.MaxBrakingForce(speed); -required > maxBraking {
			return forcesAcceleration(speed, 0, maxBraking, weight, resistance, inertia)
		}
		return 0
	default:
		return forcesAcceleration(speed, 0, 0, weight, resistance, inertia)
	}
}

// newtonStep 匀加速推进一个时间步长
// 参数：timeStep-时间步长，speed-初速度，acceleration-时间正向加速度，direction-积分方向，maxDistance-最大位移
// 算法说明：
// 1. 反向积分时速度变化取反，即 v' = v + direction·a·dt
// 2. 速度降到0时只积分到停车时刻
// 3. 位移超过maxDistance时，求解到达maxDistance的时间与速度
func newtonStep(timeStep, speed, acceleration float64, direction envelope.Direction, maxDistance float64) IntegrationStep {
	signed := float64(direction) * acceleration
	newSpeed := speed + signed*timeStep
	timeDelta := timeStep
	if signed < 0 && newSpeed <= 0 {
		timeDelta = -speed / signed
		newSpeed = 0
	}
	distance := speed*timeDelta + 0.5*signed*timeDelta*timeDelta

	if distance > maxDistance {
		distance = maxDistance
		radicand := math.Max(0, speed*speed+2*signed*distance)
		if mathutil.Abs(signed) < 1e-9 {
			timeDelta = distance / speed
		} else {
			timeDelta = (math.Sqrt(radicand) - speed) / signed
		}
		newSpeed = math.Sqrt(radicand)
	}
	return IntegrationStep{
		TimeDelta:     timeDelta,
		PositionDelta: float64(direction) * distance,
		Speed:         newSpeed,
		Acceleration:  acceleration,
	}
}

// Step 四阶龙格-库塔积分一个时间步长
// 参数：position-车头位置，speed-速度，action-操作，direction-积分方向
// 返回：积分结果，位移不会越过路径端点
func (ctx *Context) Step(position, speed float64, action Action, direction envelope.Direction) IntegrationStep {
	maxDistance := ctx.Path.Length() - position
	if direction == envelope.Backward {
		maxDistance = position
	}
	maxDistance = math.Max(0, maxDistance)

	dt := ctx.TimeStep
	k1 := ctx.Acceleration(position, speed, action)
	s1 := newtonStep(dt/2, speed, k1, direction, maxDistance)
	k2 := ctx.Acceleration(position+s1.PositionDelta, s1.Speed, action)
	s2 := newtonStep(dt/2, speed, k2, direction, maxDistance)
	k3 := ctx.Acceleration(position+s2.PositionDelta, s2.Speed, action)
	s3 := newtonStep(dt, speed, k3, direction, maxDistance)
	k4 := ctx.Acceleration(position+s3.PositionDelta, s3.Speed, action)

	mean := (k1 + 2*k2 + 2*k3 + k4) / 6
	return newtonStep(dt, speed, mean, direction, maxDistance)
}
