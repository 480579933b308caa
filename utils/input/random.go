package input

import (
	"fmt"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/pipeline"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/sim"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/utils/randengine"
)

const (
	minLimitLength = 200. // 随机限速区段的最短长度（米）
	stopMargin     = 50.  // 停车点与限速区段端点的最小距离（米）
	maxLimitCount  = 6
)

var (
	randomSpeeds       = []float64{10, 20, 30, 40} // 米/秒
	randomSpeedWeights = []float64{1, 2, 2, 1}
	randomGrades       = []float64{-5, -2, 2, 5} // 千分比
)

// randomRollingStock 随机场景使用的动车组参数
func randomRollingStock() sim.SimpleRollingStock {
	return sim.SimpleRollingStock{
		Name:               "random-emu",
		TrainLength:        100,
		TrainMass:          400000,
		InertiaCoefficient: 1.05,
		TrainMaxSpeed:      40,
		ComfortAccel:       1,
		A:                  2000,
		B:                  30,
		C:                  6,
		Gamma:              0.8,
		GammaKind:          sim.GammaConst,
		Effort: []sim.EffortPoint{
			{Speed: 0, Force: 300000},
			{Speed: 20, Force: 300000},
			{Speed: 40, Force: 150000},
		},
	}
}

// Random 按种子生成随机场景
// 功能：生成可复现的限速区段、坡度区段和停车点，用于压力测试与演示
// 参数：seed-随机数种子，length-路径长度（米），不小于400
// 返回：场景，列车为固定参数的动车组
// 算法说明：
// 1. 把路径随机切分为2~6个不短于200米的限速区段，限速按权重抽取
// 2. 每个区段以一定概率设置坡度，以一定概率在区段内部设置停车点
// 3. 终点以一半的概率设置停车点
func Random(seed uint64, length float64) *Scenario {
	engine := randengine.New(seed)
	maxCount := min(maxLimitCount, int(length/minLimitLength))
	n := 2 + engine.Intn(maxCount-1)
	points := engine.Partition(length, n, minLimitLength)

	s := &Scenario{
		Name:         fmt.Sprintf("random-%d", seed),
		PathLength:   length,
		RollingStock: randomRollingStock(),
	}
	for i := 0; i < n; i++ {
		begin, end := points[i], points[i+1]
		speed := randomSpeeds[engine.DiscreteDistribution(randomSpeedWeights)]
		s.Limits = append(s.Limits, pipeline.SpeedLimit{Begin: begin, End: end, Speed: speed})
		if engine.PTrue(0.3) {
			grade := randomGrades[engine.Intn(len(randomGrades))]
			s.Grades = append(s.Grades, sim.GradeSection{Begin: begin, End: end, Grade: grade})
		}
		if engine.PTrue(0.4) {
			s.Stops = append(s.Stops, engine.Uniform(begin+stopMargin, end-stopMargin))
		}
	}
	if engine.PTrue(0.5) {
		s.Stops = append(s.Stops, length)
	}
	log.Debugf("random scenario %q: %d speed limits, %d grade sections, %d stops",
		s.Name, len(s.Limits), len(s.Grades), len(s.Stops))
	return s
}
