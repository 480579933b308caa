package envelope

import (
	"iter"
	"math"

	"github.com/samber/lo"
)

// Envelope 速度包络
// 功能：按位置顺序首尾相接的一组包络片段
// 说明：
//   - 位置连续是强制要求，速度连续只做记录（Continuous）
//   - 构造后不可变，可以被多个读者同时访问
type Envelope struct {
	parts      []*Part
	continuous bool

	partPositions []float64 // 所有片段交界处的位置，包括首尾
	minSpeed      float64
	maxSpeed      float64
	cumulative    []float64 // 从包络起点到每个片段起点的累计时间，最后一项为总时间
}

// MakeEnvelope 由片段创建包络
// 功能：检查位置连续性，记录速度连续性，计算缓存
// 参数：parts-按位置排序的片段
// 返回：包络指针
// 说明：没有片段或片段之间存在位置间隙时panic
func MakeEnvelope(parts ...*Part) *Envelope {
	if len(parts) == 0 {
		log.Panic("attempted to create an empty envelope")
	}
	continuous := true
	for i := 0; i < len(parts)-1; i++ {
		if !ArePositionsEqual(parts[i].EndPos(), parts[i+1].BeginPos()) {
			log.Panicf("envelope parts are not contiguous: part %d ends at %f, part %d begins at %f",
				i, parts[i].EndPos(), i+1, parts[i+1].BeginPos())
		}
		if !AreSpeedsEqual(parts[i].EndSpeed(), parts[i+1].BeginSpeed()) {
			continuous = false
		}
	}

	e := &Envelope{
		parts:         append([]*Part(nil), parts...),
		continuous:    continuous,
		partPositions: make([]float64, len(parts)+1),
		cumulative:    make([]float64, len(parts)+1),
		minSpeed:      math.Inf(1),
		maxSpeed:      math.Inf(-1),
	}
	e.partPositions[0] = parts[0].BeginPos()
	for i, part := range parts {
		e.partPositions[i+1] = part.EndPos()
		e.cumulative[i+1] = e.cumulative[i] + part.TotalTime()
		e.minSpeed = math.Min(e.minSpeed, part.MinSpeed())
		e.maxSpeed = math.Max(e.maxSpeed, part.MaxSpeed())
	}
	return e
}

// Size 片段数
func (e *Envelope) Size() int {
	return len(e.parts)
}

// Get 获取第i个片段
func (e *Envelope) Get(i int) *Part {
	return e.parts[i]
}

// Parts 返回片段列表的副本
func (e *Envelope) Parts() []*Part {
	return append([]*Part(nil), e.parts...)
}

// All 按顺序遍历片段
func (e *Envelope) All() iter.Seq2[int, *Part] {
	return func(yield func(int, *Part) bool) {
		for i, part := range e.parts {
			if !yield(i, part) {
				return
			}
		}
	}
}

// Continuous 相邻片段的速度是否连续
func (e *Envelope) Continuous() bool {
	return e.continuous
}

func (e *Envelope) BeginPos() float64      { return e.parts[0].BeginPos() }
func (e *Envelope) EndPos() float64        { return e.parts[len(e.parts)-1].EndPos() }
func (e *Envelope) BeginSpeed() float64    { return e.parts[0].BeginSpeed() }
func (e *Envelope) EndSpeed() float64      { return e.parts[len(e.parts)-1].EndSpeed() }
func (e *Envelope) MinSpeed() float64      { return e.minSpeed }
func (e *Envelope) MaxSpeed() float64      { return e.maxSpeed }
func (e *Envelope) TotalDistance() float64 { return e.EndPos() - e.BeginPos() }

// PartPositions 返回片段交界位置的副本
func (e *Envelope) PartPositions() []float64 {
	return append([]float64(nil), e.partPositions...)
}

// FindLeft 查找包含position的片段，交界处取左侧；越界返回-1
func (e *Envelope) FindLeft(position float64) int {
	return findLeft(e.partPositions, position)
}

// FindRight 查找包含position的片段，交界处取右侧；越界返回-1
func (e *Envelope) FindRight(position float64) int {
	return findRight(e.partPositions, position)
}

// FindLeftDir 沿direction方向查找，交界处取来时的片段
func (e *Envelope) FindLeftDir(position float64, direction Direction) int {
	if direction > 0 {
		return e.FindLeft(position)
	}
	return e.FindRight(position)
}

// FindRightDir 沿direction方向查找，交界处取将要进入的片段
func (e *Envelope) FindRightDir(position float64, direction Direction) int {
	if direction > 0 {
		return e.FindRight(position)
	}
	return e.FindLeft(position)
}

func (e *Envelope) mustFind(index int, position float64) int {
	if index == -1 {
		log.Panicf("position %f is outside of envelope [%f, %f]", position, e.BeginPos(), e.EndPos())
	}
	return index
}

// InterpolateSpeed 插值给定位置的速度
// 说明：交界处取左侧片段，仅对速度连续的包络有意义
func (e *Envelope) InterpolateSpeed(position float64) float64 {
	index := e.mustFind(e.FindLeft(position), position)
	return e.parts[index].InterpolateSpeed(position)
}

// InterpolateSpeedLeftDir 沿direction方向插值速度，交界处取来时的片段
func (e *Envelope) InterpolateSpeedLeftDir(position float64, direction Direction) float64 {
	index := e.mustFind(e.FindLeftDir(position, direction), position)
	return e.parts[index].InterpolateSpeed(position)
}

// InterpolateSpeedRightDir 沿direction方向插值速度，交界处取将要进入的片段
func (e *Envelope) InterpolateSpeedRightDir(position float64, direction Direction) float64 {
	index := e.mustFind(e.FindRightDir(position, direction), position)
	return e.parts[index].InterpolateSpeed(position)
}

// MaxSpeedInRange 求[beginPos, endPos]范围内的最高速度
// 说明：端点位于片段交界处时只考虑范围内侧的片段
func (e *Envelope) MaxSpeedInRange(beginPos, endPos float64) float64 {
	beginIndex := e.mustFind(e.FindRight(beginPos), beginPos)
	endIndex := e.mustFind(e.FindLeft(endPos), endPos)
	maxSpeed := e.parts[beginIndex].InterpolateSpeed(beginPos)
	for i := beginIndex + 1; i < endIndex; i++ {
		maxSpeed = math.Max(maxSpeed, e.parts[i].MaxSpeed())
	}
	return math.Max(maxSpeed, e.parts[endIndex].InterpolateSpeed(endPos))
}

// CumulativeTime 从包络起点到第transitionIndex个片段起点的时间
// 说明：transitionIndex等于Size()时返回总时间
func (e *Envelope) CumulativeTime(transitionIndex int) float64 {
	return e.cumulative[transitionIndex]
}

// TotalTime 包络总时间（秒）
func (e *Envelope) TotalTime() float64 {
	return e.cumulative[len(e.cumulative)-1]
}

// InterpolateTotalTime 从包络起点到position的时间
func (e *Envelope) InterpolateTotalTime(position float64) float64 {
	index := e.mustFind(e.FindLeft(position), position)
	return e.cumulative[index] + e.parts[index].InterpolateTotalTime(position)
}

// InterpolateTotalTimeClamp 同InterpolateTotalTime，位置先限制在包络范围内
func (e *Envelope) InterpolateTotalTimeClamp(position float64) float64 {
	return e.InterpolateTotalTime(lo.Clamp(position, e.BeginPos(), e.EndPos()))
}

// TimeBetween 两个位置之间的行驶时间
func (e *Envelope) TimeBetween(beginPos, endPos float64) float64 {
	return e.InterpolateTotalTime(endPos) - e.InterpolateTotalTime(beginPos)
}

// Slice 截取[beginPosition, endPosition]范围内的片段，必要时插值新的端点
func (e *Envelope) Slice(beginPosition, endPosition float64) []*Part {
	return e.SliceWithSpeeds(beginPosition, math.NaN(), endPosition, math.NaN())
}

// SliceWithSpeeds 截取片段并强制端点速度（NaN表示插值）
// 说明：beginPosition为-Inf、endPosition为+Inf时表示不截断
func (e *Envelope) SliceWithSpeeds(beginPosition, beginSpeed, endPosition, endSpeed float64) []*Part {
	if beginPosition >= endPosition {
		return nil
	}
	if beginPosition <= e.BeginPos() {
		beginPosition = math.Inf(-1)
	}
	if endPosition >= e.EndPos() {
		endPosition = math.Inf(1)
	}
	beginPartIndex, beginStepIndex := 0, 0
	if !math.IsInf(beginPosition, -1) {
		beginPartIndex = e.mustFind(e.FindRight(beginPosition), beginPosition)
		beginStepIndex = e.parts[beginPartIndex].FindRight(beginPosition)
	}
	endPartIndex := len(e.parts) - 1
	endStepIndex := e.parts[endPartIndex].StepCount() - 1
	if !math.IsInf(endPosition, 1) {
		endPartIndex = e.mustFind(e.FindLeft(endPosition), endPosition)
		endStepIndex = e.parts[endPartIndex].FindLeft(endPosition)
	}
	return e.SliceIndexed(
		beginPartIndex, beginStepIndex, beginPosition, beginSpeed,
		endPartIndex, endStepIndex, endPosition, endSpeed,
	)
}

// SliceIndexed 按片段和步长下标截取包络
// 功能：首尾片段按位置截断，中间片段原样保留
// 返回：截取得到的片段，可能为空
func (e *Envelope) SliceIndexed(
	beginPartIndex, beginStepIndex int, beginPosition, beginSpeed float64,
	endPartIndex, endStepIndex int, endPosition, endSpeed float64,
) []*Part {
	if beginPartIndex > endPartIndex {
		log.Panicf("invalid part range [%d, %d]", beginPartIndex, endPartIndex)
	}
	if beginPartIndex == endPartIndex {
		sliced := e.parts[beginPartIndex].SliceSteps(
			beginStepIndex, beginPosition, beginSpeed,
			endStepIndex, endPosition, endSpeed,
		)
		if sliced == nil {
			return nil
		}
		return []*Part{sliced}
	}

	res := make([]*Part, 0, endPartIndex-beginPartIndex+1)
	if sliced := e.parts[beginPartIndex].SliceEnd(beginStepIndex, beginPosition, beginSpeed); sliced != nil {
		res = append(res, sliced)
	}
	res = append(res, e.parts[beginPartIndex+1:endPartIndex]...)
	if sliced := e.parts[endPartIndex].SliceBeginning(endStepIndex, endPosition, endSpeed); sliced != nil {
		res = append(res, sliced)
	}
	return res
}

// IteratePoints 输出包络上所有数据点及其累计时间
// 说明：片段交界处的点会出现两次（分别属于前后两个片段）
func (e *Envelope) IteratePoints() []TimedPoint {
	res := make([]TimedPoint, 0)
	time := 0.
	for _, part := range e.parts {
		for i := 0; i < part.PointCount(); i++ {
			res = append(res, TimedPoint{Time: time, Position: part.PointPos(i), Speed: part.PointSpeed(i)})
			if i < part.StepCount() {
				time += part.StepTime(i)
			}
		}
	}
	return res
}
