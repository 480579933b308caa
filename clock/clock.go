package clock

import (
	"fmt"
)

// Clock 列车运行时钟
// 功能：把包络上的运行时间换算为一天中的时刻
// 说明：T为从0点起的秒数，Departure为出发时刻
type Clock struct {
	Departure float64 // 出发时刻（秒）
	T         float64 // 当前时刻（秒）
}

// New 以出发时刻创建时钟
func New(departure float64) *Clock {
	c := &Clock{Departure: departure}
	c.Init()
	return c
}

// Init 把时钟重置到出发时刻
func (c *Clock) Init() {
	c.T = c.Departure
}

// Set 设置自出发以来经过的时间
// 参数：elapsed-运行时间（秒），通常来自Envelope.InterpolateTotalTime
func (c *Clock) Set(elapsed float64) {
	c.T = c.Departure + elapsed
}

// Elapsed 自出发以来经过的时间（秒）
func (c *Clock) Elapsed() float64 {
	return c.T - c.Departure
}

// String 获取时钟的字符串表示
// 功能：将当前时间格式化为可读的字符串
// 返回：格式化的时间字符串（HH:MM:SS）
// 算法说明：
// 1. 将总秒数转换为小时、分钟、秒
// 2. 格式化为标准时间格式
func (c *Clock) String() string {
	t := c.T
	h := int(t / 3600)
	t -= float64(h * 3600)
	m := int(t / 60)
	t -= float64(m * 60)
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
// 功能：将当前时间分解为小时、分钟、秒三个部分
// 返回：小时、分钟、秒（秒为浮点数，支持亚秒级精度）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	hour := int(c.T) / 3600
	minute := int(c.T) % 3600 / 60
	second := c.T - float64(hour*3600+minute*60)
	return hour, minute, second
}
