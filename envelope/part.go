package envelope

import (
	"fmt"
	"math"
	"slices"
)

// Part 包络片段
// 功能：速度-位置平面上的一条折线，每个步长都是时间上的匀加速运动
// 说明：
//   - 至少包含两个点，位置严格递增（反向构建的片段在构建时翻转）
//   - 速度非负，步长时间由物理内核推导且为正
//   - 构造完成后不可变，缓存字段均在构造时计算
type Part struct {
	meta PartMeta

	positions  []float64 // N个位置
	speeds     []float64 // N个速度
	timeDeltas []float64 // N-1个步长时间

	totalTimes []float64 // 从片段起点到每个点的累计时间
	minSpeed   float64
	maxSpeed   float64
	// 速度严格单调时才能由速度反查位置
	strictlyMonotonicSpeeds bool
}

// NewPart 创建包络片段
// 功能：校验并冻结一组位置、速度和步长时间
// 参数：meta-元数据，positions-位置，speeds-速度，timeDeltas-步长时间
// 返回：片段指针
// 说明：输入切片会被复制；数据不合法属于调用方违约，直接panic
func NewPart(meta PartMeta, positions, speeds, timeDeltas []float64) *Part {
	if len(positions) < 2 {
		log.Panicf("attempted to create an envelope part with %d points", len(positions))
	}
	if len(positions) != len(speeds) {
		log.Panicf("there must be the same number of points (%d) and speeds (%d)", len(positions), len(speeds))
	}
	if len(timeDeltas) != len(positions)-1 {
		log.Panicf("there must be as many time deltas (%d) as steps (%d)", len(timeDeltas), len(positions)-1)
	}
	for i, pos := range positions {
		if math.IsNaN(pos) || math.IsInf(pos, 0) {
			log.Panicf("invalid position %f at point %d", pos, i)
		}
		if i > 0 && positions[i-1] >= pos {
			log.Panicf("non strictly increasing positions at point %d: %f >= %f", i, positions[i-1], pos)
		}
	}
	for i, speed := range speeds {
		if math.IsNaN(speed) || speed < 0 {
			log.Panicf("invalid speed %f at point %d", speed, i)
		}
	}
	for i, dt := range timeDeltas {
		if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
			log.Panicf("invalid time delta %f at step %d", dt, i)
		}
	}

	p := &Part{
		meta:       meta,
		positions:  slices.Clone(positions),
		speeds:     slices.Clone(speeds),
		timeDeltas: slices.Clone(timeDeltas),
		minSpeed:   slices.Min(speeds),
		maxSpeed:   slices.Max(speeds),
	}
	p.totalTimes = make([]float64, len(positions))
	for i, dt := range p.timeDeltas {
		p.totalTimes[i+1] = p.totalTimes[i] + dt
	}
	p.strictlyMonotonicSpeeds = isStrictlyMonotonic(p.speeds)
	return p
}

// NewPartGenerateTimes 创建包络片段，步长时间由物理内核计算
func NewPartGenerateTimes(meta PartMeta, positions, speeds []float64) *Part {
	return NewPart(meta, positions, speeds, computeTimes(positions, speeds))
}

func computeTimes(positions, speeds []float64) []float64 {
	if len(positions) < 2 || len(positions) != len(speeds) {
		log.Panicf("cannot compute times of %d positions and %d speeds", len(positions), len(speeds))
	}
	times := make([]float64, len(positions)-1)
	for i := range times {
		times[i] = InterpolateStepTime(
			positions[i], positions[i+1],
			speeds[i], speeds[i+1],
			positions[i+1]-positions[i],
		)
	}
	return times
}

func isStrictlyMonotonic(values []float64) bool {
	increasing, decreasing := true, true
	for i := 0; i < len(values)-1; i++ {
		if values[i] >= values[i+1] {
			increasing = false
		}
		if values[i] <= values[i+1] {
			decreasing = false
		}
	}
	return increasing || decreasing
}

func (p *Part) Meta() PartMeta {
	return p.meta
}

// HasProfile 判断片段是否为给定工况
func (p *Part) HasProfile(profile Profile) bool {
	return p.meta.Profile == profile
}

// PointCount 点数
func (p *Part) PointCount() int {
	return len(p.positions)
}

// StepCount 步长数
func (p *Part) StepCount() int {
	return len(p.positions) - 1
}

func (p *Part) MinSpeed() float64 { return p.minSpeed }
func (p *Part) MaxSpeed() float64 { return p.maxSpeed }

// IsConstantSpeed 片段是否为匀速平台
func (p *Part) IsConstantSpeed() bool {
	return p.minSpeed == p.maxSpeed
}

func (p *Part) StepBeginPos(stepIndex int) float64   { return p.positions[stepIndex] }
func (p *Part) StepEndPos(stepIndex int) float64     { return p.positions[stepIndex+1] }
func (p *Part) StepBeginSpeed(stepIndex int) float64 { return p.speeds[stepIndex] }
func (p *Part) StepEndSpeed(stepIndex int) float64   { return p.speeds[stepIndex+1] }
func (p *Part) StepTime(stepIndex int) float64       { return p.timeDeltas[stepIndex] }
func (p *Part) PointPos(pointIndex int) float64      { return p.positions[pointIndex] }
func (p *Part) PointSpeed(pointIndex int) float64    { return p.speeds[pointIndex] }

func (p *Part) BeginPos() float64   { return p.positions[0] }
func (p *Part) EndPos() float64     { return p.positions[len(p.positions)-1] }
func (p *Part) BeginSpeed() float64 { return p.speeds[0] }
func (p *Part) EndSpeed() float64   { return p.speeds[len(p.speeds)-1] }

// Positions 返回位置的副本
func (p *Part) Positions() []float64 { return slices.Clone(p.positions) }

// Speeds 返回速度的副本
func (p *Part) Speeds() []float64 { return slices.Clone(p.speeds) }

// TimeDeltas 返回步长时间的副本
func (p *Part) TimeDeltas() []float64 { return slices.Clone(p.timeDeltas) }

// TotalTime 片段总时间（秒）
func (p *Part) TotalTime() float64 {
	return p.totalTimes[len(p.totalTimes)-1]
}

// TotalTimeAt 从片段起点到某个点的累计时间
func (p *Part) TotalTimeAt(pointIndex int) float64 {
	return p.totalTimes[pointIndex]
}

// FindLeft 查找包含position的步长，交界处取左侧
func (p *Part) FindLeft(position float64) int {
	return findLeft(p.positions, position)
}

// FindRight 查找包含position的步长，交界处取右侧
func (p *Part) FindRight(position float64) int {
	return findRight(p.positions, position)
}

func (p *Part) checkPosition(stepIndex int, position float64) {
	if position < p.positions[stepIndex] || position > p.positions[stepIndex+1] {
		log.Panicf("position %f is outside of step %d [%f, %f]",
			position, stepIndex, p.positions[stepIndex], p.positions[stepIndex+1])
	}
}

// InterpolateSpeed 给定位置插值速度
func (p *Part) InterpolateSpeed(position float64) float64 {
	stepIndex := p.FindLeft(position)
	if stepIndex == -1 {
		log.Panicf("position %f is outside of part [%f, %f]", position, p.BeginPos(), p.EndPos())
	}
	return p.InterpolateSpeedAt(stepIndex, position)
}

// InterpolateSpeedAt 在指定步长内插值速度
func (p *Part) InterpolateSpeedAt(stepIndex int, position float64) float64 {
	p.checkPosition(stepIndex, position)
	if position == p.positions[stepIndex] {
		return p.speeds[stepIndex]
	}
	if position == p.positions[stepIndex+1] {
		return p.speeds[stepIndex+1]
	}
	return InterpolateStepSpeed(
		p.positions[stepIndex], p.positions[stepIndex+1],
		p.speeds[stepIndex], p.speeds[stepIndex+1],
		position-p.positions[stepIndex],
	)
}

// InterpolateTimeDelta 从步长起点到position的时间
func (p *Part) InterpolateTimeDelta(stepIndex int, position float64) float64 {
	p.checkPosition(stepIndex, position)
	if position == p.positions[stepIndex] {
		return 0
	}
	if position == p.positions[stepIndex+1] {
		return p.timeDeltas[stepIndex]
	}
	return InterpolateStepTime(
		p.positions[stepIndex], p.positions[stepIndex+1],
		p.speeds[stepIndex], p.speeds[stepIndex+1],
		position-p.positions[stepIndex],
	)
}

// InterpolateTotalTime 从片段起点到position的累计时间
func (p *Part) InterpolateTotalTime(position float64) float64 {
	stepIndex := p.FindLeft(position)
	if stepIndex == -1 {
		log.Panicf("position %f is outside of part [%f, %f]", position, p.BeginPos(), p.EndPos())
	}
	return p.totalTimes[stepIndex] + p.InterpolateTimeDelta(stepIndex, position)
}

// InterpolatePosition 给定速度反查位置
// 功能：从startIndex步长开始，查找速度等于speed的第一个位置
// 返回：位置，ok为false表示没有找到
// 说明：片段速度必须严格单调
func (p *Part) InterpolatePosition(startIndex int, speed float64) (position float64, ok bool) {
	if !p.strictlyMonotonicSpeeds {
		log.Panicf("cannot interpolate positions on a part with non monotonic speeds (%v)", p.meta)
	}
	for i := startIndex; i < p.StepCount(); i++ {
		lo, hi := math.Min(p.speeds[i], p.speeds[i+1]), math.Max(p.speeds[i], p.speeds[i+1])
		if lo <= speed && speed <= hi {
			return IntersectStepWithSpeed(p.positions[i], p.speeds[i], p.positions[i+1], p.speeds[i+1], speed), true
		}
	}
	return 0, false
}

// SliceIndex 复制[beginStepIndex, endStepIndex)范围内的步长，为空时返回nil
func (p *Part) SliceIndex(beginStepIndex, endStepIndex int) *Part {
	if beginStepIndex < 0 || endStepIndex > p.StepCount() || beginStepIndex > endStepIndex {
		log.Panicf("invalid step range [%d, %d) for part of %d steps", beginStepIndex, endStepIndex, p.StepCount())
	}
	if endStepIndex-beginStepIndex <= 0 {
		return nil
	}
	return NewPart(
		p.meta,
		p.positions[beginStepIndex:endStepIndex+1],
		p.speeds[beginStepIndex:endStepIndex+1],
		p.timeDeltas[beginStepIndex:endStepIndex],
	)
}

// Slice 截取[beginPosition, endPosition]范围，必要时插值新的端点
func (p *Part) Slice(beginPosition, endPosition float64) *Part {
	return p.SliceWithSpeeds(beginPosition, math.NaN(), endPosition, math.NaN())
}

// SliceWithSpeeds 截取片段并强制端点速度（NaN表示插值）
func (p *Part) SliceWithSpeeds(beginPosition, beginSpeed, endPosition, endSpeed float64) *Part {
	beginIndex := 0
	if beginPosition <= p.BeginPos() {
		beginPosition = math.Inf(-1)
	} else {
		beginIndex = p.FindRight(beginPosition)
	}
	endIndex := p.StepCount() - 1
	if endPosition >= p.EndPos() {
		endPosition = math.Inf(1)
	} else {
		endIndex = p.FindLeft(endPosition)
	}
	if beginIndex == -1 || endIndex == -1 {
		return nil
	}
	return p.SliceSteps(beginIndex, beginPosition, beginSpeed, endIndex, endPosition, endSpeed)
}

// SliceBeginning 保留片段开头直到endPosition
func (p *Part) SliceBeginning(endIndex int, endPosition, endSpeed float64) *Part {
	return p.SliceSteps(0, math.Inf(-1), math.NaN(), endIndex, endPosition, endSpeed)
}

// SliceEnd 保留从beginPosition开始的片段结尾
func (p *Part) SliceEnd(beginIndex int, beginPosition, beginSpeed float64) *Part {
	return p.SliceSteps(beginIndex, beginPosition, beginSpeed, p.StepCount()-1, math.Inf(1), math.NaN())
}

// SliceSteps 截取片段
// 功能：在给定步长内截断片段的两端，必要时插值端点
// 参数：
//   - beginStepIndex,beginPosition: 起点所在步长及位置，-Inf表示不截断
//   - beginSpeed: 强制的起点速度，NaN表示插值
//   - endStepIndex,endPosition: 终点所在步长及位置，+Inf表示不截断
//   - endSpeed: 强制的终点速度，NaN表示插值
//
// 返回：截取后的片段，范围为空时返回nil；未发生任何改变时返回片段本身
func (p *Part) SliceSteps(
	beginStepIndex int, beginPosition, beginSpeed float64,
	endStepIndex int, endPosition, endSpeed float64,
) *Part {
	if endStepIndex < 0 || endStepIndex >= p.StepCount() || beginStepIndex < 0 || beginStepIndex >= p.StepCount() {
		log.Panicf("invalid slice steps [%d, %d] for part of %d steps", beginStepIndex, endStepIndex, p.StepCount())
	}

	// 与已有点的距离小于PositionEpsilon的截断点吸附到该点，避免退化的步长
	if ArePositionsEqual(endPosition, p.StepBeginPos(endStepIndex)) {
		endPosition = math.Inf(1)
		endStepIndex--
	} else if ArePositionsEqual(endPosition, p.StepEndPos(endStepIndex)) {
		endPosition = math.Inf(1)
	}
	if ArePositionsEqual(beginPosition, p.StepEndPos(beginStepIndex)) {
		beginPosition = math.Inf(-1)
		beginStepIndex++
	} else if ArePositionsEqual(beginPosition, p.StepBeginPos(beginStepIndex)) {
		beginPosition = math.Inf(-1)
	}

	if beginStepIndex == 0 && endStepIndex == p.StepCount()-1 &&
		math.IsInf(beginPosition, -1) && math.IsInf(endPosition, 1) &&
		math.IsNaN(beginSpeed) && math.IsNaN(endSpeed) {
		return p
	}
	if endStepIndex < beginStepIndex {
		return nil
	}
	if beginStepIndex == endStepIndex && !math.IsInf(beginPosition, -1) && !math.IsInf(endPosition, 1) &&
		endPosition-beginPosition < PositionEpsilon {
		return nil
	}

	positions := slices.Clone(p.positions[beginStepIndex : endStepIndex+2])
	speeds := slices.Clone(p.speeds[beginStepIndex : endStepIndex+2])
	times := slices.Clone(p.timeDeltas[beginStepIndex : endStepIndex+1])
	last := len(positions) - 1

	if !math.IsInf(endPosition, 1) {
		if math.IsNaN(endSpeed) {
			endSpeed = p.InterpolateSpeedAt(endStepIndex, endPosition)
		}
		times[last-1] = p.InterpolateTimeDelta(endStepIndex, endPosition)
		positions[last] = endPosition
	}
	if !math.IsInf(beginPosition, -1) {
		if math.IsNaN(beginSpeed) {
			beginSpeed = p.InterpolateSpeedAt(beginStepIndex, beginPosition)
		}
		times[0] -= p.InterpolateTimeDelta(beginStepIndex, beginPosition)
		positions[0] = beginPosition
	}
	if !math.IsNaN(beginSpeed) {
		speeds[0] = beginSpeed
	}
	if !math.IsNaN(endSpeed) {
		speeds[last] = endSpeed
	}
	return NewPart(p.meta, positions, speeds, times)
}

// Equal 比较两个片段的元数据与全部数据点
func (p *Part) Equal(other *Part) bool {
	if p == other {
		return true
	}
	if other == nil {
		return false
	}
	return p.meta.Equal(other.meta) &&
		slices.Equal(p.positions, other.positions) &&
		slices.Equal(p.speeds, other.speeds) &&
		slices.Equal(p.timeDeltas, other.timeDeltas)
}

func (p *Part) String() string {
	return fmt.Sprintf("Part{%v [%.3f, %.3f] %d steps}", p.meta, p.BeginPos(), p.EndPos(), p.StepCount())
}
