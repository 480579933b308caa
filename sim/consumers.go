package sim

import (
	"github.com/tsinghua-fib-lab/envelope-sim-oss/envelope"
)

// integrate 以固定操作逐步积分，把数据点交给consumer
// 说明：consumer拒绝起点、拒绝数据点或列车不再移动时结束
func (ctx *Context) integrate(
	position, speed float64, action Action,
	consumer envelope.StepConsumer, direction envelope.Direction,
) {
	if !consumer.InitEnvelopePart(position, speed, direction) {
		return
	}
	bound := ctx.Path.Length()
	if direction == envelope.Backward {
		bound = 0
	}
	for {
		step := ctx.Step(position, speed, action, direction)
		if step.PositionDelta == 0 {
			return
		}
		position += step.PositionDelta
		if envelope.ArePositionsEqual(position, bound) {
			position = bound
		}
		speed = step.Speed
		if !consumer.AddStep(position, speed) {
			return
		}
	}
}

// Decelerate 以最大制动力生成数据点
func Decelerate(ctx *Context, position, speed float64, consumer envelope.StepConsumer, direction envelope.Direction) {
	ctx.integrate(position, speed, ActionBrake, consumer, direction)
}

// Accelerate 以最大牵引力生成数据点
func Accelerate(ctx *Context, position, speed float64, consumer envelope.StepConsumer, direction envelope.Direction) {
	ctx.integrate(position, speed, ActionAccelerate, consumer, direction)
}

// Maintain 尝试保持速度生成数据点
func Maintain(ctx *Context, position, speed float64, consumer envelope.StepConsumer, direction envelope.Direction) {
	ctx.integrate(position, speed, ActionMaintain, consumer, direction)
}

// Coast 惰行生成数据点
func Coast(ctx *Context, position, speed float64, consumer envelope.StepConsumer, direction envelope.Direction) {
	ctx.integrate(position, speed, ActionCoast, consumer, direction)
}
