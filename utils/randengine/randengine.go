// 随机数引擎，包装了golang.org/x/exp/rand，用于生成随机线路场景
package randengine

import (
	"flag"
	"log"
	"slices"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成功能（非线程安全）
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 功能：初始化一个新的随机数引擎实例
// 参数：seed-随机数种子
// 返回：随机数引擎指针
// 说明：种子偏移量允许在不修改代码的情况下调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// DiscreteDistribution 按给定概率分布生成随机数
// 功能：根据权重数组生成离散分布的随机数
// 参数：weight-权重数组，每个元素表示对应索引的概率权重
// 返回：随机生成的索引值（0到len(weight)-1）
// 算法说明：
// 1. 计算总权重
// 2. 在[0, 总权重)范围内生成随机数
// 3. 累积权重直到超过随机数，返回对应索引
func (e *Engine) DiscreteDistribution(weight []float64) int32 {
	random := .0
	for _, w := range weight {
		random += w
	}
	random *= e.Float64()
	sum := 0.
	for i, w := range weight {
		sum += w
		if sum > random {
			return int32(i)
		}
	}
	log.Panicf("randengine: DiscreteDistribution: sum: %f random: %f", sum, random)
	return -1
}

// PTrue 以指定概率返回true
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// Uniform [lo, hi)上的均匀分布
func (e *Engine) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*e.Float64()
}

// Partition 把[0, length]随机切分为n段
// 返回：n+1个递增的切分点，首项为0，末项为length
// 说明：每段长度不小于minLength，n*minLength超过length时panic
func (e *Engine) Partition(length float64, n int, minLength float64) []float64 {
	if n <= 0 || float64(n)*minLength > length {
		log.Panicf("randengine: Partition: cannot split %f into %d parts of at least %f", length, n, minLength)
	}
	free := length - float64(n)*minLength
	cuts := make([]float64, n-1)
	for i := range cuts {
		cuts[i] = free * e.Float64()
	}
	slices.Sort(cuts)
	points := make([]float64, 0, n+1)
	points = append(points, 0)
	for i, cut := range cuts {
		points = append(points, cut+float64(i+1)*minLength)
	}
	return append(points, length)
}
