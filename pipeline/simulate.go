package pipeline

import (
	"fmt"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/envelope"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/sim"
)

// Input 一次仿真的线路输入
type Input struct {
	Limits       []SpeedLimit `yaml:"limits" bson:"limits"`               // 线路限速
	Stops        []float64    `yaml:"stops" bson:"stops"`                 // 停车点位置（米）
	InitialSpeed float64      `yaml:"initial_speed" bson:"initial_speed"` // 初速度（米/秒）
}

// Result 仿真各阶段的包络
type Result struct {
	MRSP      *envelope.Envelope
	MaxSpeed  *envelope.Envelope
	MaxEffort *envelope.Envelope
}

// Simulate 依次构建MRSP、最高速度包络和最大能力包络
func Simulate(ctx *sim.Context, input Input) (*Result, error) {
	mrsp, err := MRSP(ctx.Path.Length(), input.Limits, ctx.RollingStock)
	if err != nil {
		return nil, fmt.Errorf("build MRSP: %w", err)
	}
	maxSpeed, err := MaxSpeedEnvelope(ctx, input.Stops, mrsp)
	if err != nil {
		return nil, fmt.Errorf("build max speed envelope: %w", err)
	}
	initialSpeed := min(input.InitialSpeed, maxSpeed.BeginSpeed())
	if input.InitialSpeed > maxSpeed.BeginSpeed() {
		log.Warnf("initial speed %.3f is above the max speed %.3f, clamped", input.InitialSpeed, maxSpeed.BeginSpeed())
	}
	maxEffort, err := MaxEffortEnvelope(ctx, initialSpeed, maxSpeed)
	if err != nil {
		return nil, fmt.Errorf("build max effort envelope: %w", err)
	}
	log.Infof("simulation finished: %d parts, %.3f s over %.3f m",
		maxEffort.Size(), maxEffort.TotalTime(), maxEffort.TotalDistance())
	return &Result{MRSP: mrsp, MaxSpeed: maxSpeed, MaxEffort: maxEffort}, nil
}
