package envelope

import "fmt"

// EnvelopePoint 速度-位置平面上的一个点
type EnvelopePoint struct {
	Position float64 // 位置（米）
	Speed    float64 // 速度（米/秒）
}

func (p EnvelopePoint) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", p.Position, p.Speed)
}

// TimedPoint 带有累计时间的点，用于输出整条包络
type TimedPoint struct {
	Time     float64 `yaml:"time"`     // 从包络起点开始的累计时间（秒）
	Position float64 `yaml:"position"` // 位置（米）
	Speed    float64 `yaml:"speed"`    // 速度（米/秒）
}
