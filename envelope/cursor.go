package envelope

import "math"

// Direction 遍历方向
type Direction int

const (
	Forward  Direction = 1  // 位置递增
	Backward Direction = -1 // 位置递减
)

// ComparePos 沿方向比较两个位置
// 返回：正数表示a在b之后，负数表示a在b之前
func (d Direction) ComparePos(a, b float64) float64 {
	return float64(d) * (a - b)
}

// Reverse 反方向
func (d Direction) Reverse() Direction {
	return -d
}

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// NextStepResult 游标移动到下一个步长的结果
type NextStepResult int

const (
	NextStepContinue   NextStepResult = iota // 仍在同一片段内
	NextStepPart                             // 进入了下一个片段
	NextStepReachedEnd                       // 到达包络终点
)

// TransitionPredicate 判断从(prevPos, prevSpeed)到(nextPos, nextSpeed)的过渡是否满足条件
type TransitionPredicate func(prevPos, prevSpeed, nextPos, nextSpeed float64) bool

// SpeedComparison FindSpeed使用的比较方式
type SpeedComparison int

const (
	StrictlyHigher SpeedComparison = iota
	StrictlyLower
)

func (c SpeedComparison) compare(a, b float64) bool {
	if c == StrictlyHigher {
		return a > b
	}
	return a < b
}

func (c SpeedComparison) partBound(part *Part) float64 {
	if c == StrictlyHigher {
		return part.MaxSpeed()
	}
	return part.MinSpeed()
}

// Cursor 包络游标
// 功能：沿给定方向在包络上单调移动，维护当前片段、步长与位置
// 说明：
//   - 所有"起点/终点"均按遍历方向定义，反向游标的步长起点是片段中较大的位置
//   - 到达终点后partIndex与stepIndex为-1，位置为NaN
//   - 每次移动都会递增revision，便于调用方检测游标是否被移动过
type Cursor struct {
	envelope  *Envelope
	direction Direction

	part      *Part
	partIndex int
	stepIndex int
	position  float64
	speed     float64 // 强制速度，NaN表示插值
	revision  int
}

// NewCursor 在包络的起点（按方向）创建游标
func NewCursor(envelope *Envelope, direction Direction) *Cursor {
	c := &Cursor{
		envelope:  envelope,
		direction: direction,
		speed:     math.NaN(),
	}
	c.partIndex = c.firstIndex(envelope.Size())
	c.part = envelope.Get(c.partIndex)
	c.stepIndex = c.firstIndex(c.part.StepCount())
	c.position = c.StepBeginPos()
	return c
}

// ForwardCursor 正向游标
func ForwardCursor(envelope *Envelope) *Cursor {
	return NewCursor(envelope, Forward)
}

// BackwardCursor 反向游标
func BackwardCursor(envelope *Envelope) *Cursor {
	return NewCursor(envelope, Backward)
}

func (c *Cursor) Envelope() *Envelope  { return c.envelope }
func (c *Cursor) Direction() Direction { return c.direction }
func (c *Cursor) Revision() int        { return c.revision }
func (c *Cursor) HasReachedEnd() bool  { return c.partIndex == -1 }

// ComparePos 沿游标方向比较两个位置
func (c *Cursor) ComparePos(a, b float64) float64 {
	return c.direction.ComparePos(a, b)
}

func (c *Cursor) checkNotEnded() {
	if c.HasReachedEnd() {
		log.Panic("cursor has reached the end of the envelope")
	}
}

func (c *Cursor) StepIndex() int {
	c.checkNotEnded()
	return c.stepIndex
}

func (c *Cursor) PartIndex() int {
	c.checkNotEnded()
	return c.partIndex
}

func (c *Cursor) Position() float64 {
	c.checkNotEnded()
	return c.position
}

func (c *Cursor) Part() *Part {
	c.checkNotEnded()
	return c.part
}

func (c *Cursor) firstIndex(size int) int {
	if c.direction == Backward {
		return size - 1
	}
	return 0
}

func (c *Cursor) lastIndex(size int) int {
	if c.direction == Backward {
		return 0
	}
	return size - 1
}

// nextIndex 下一个下标，越界返回-1
func (c *Cursor) nextIndex(cur, size int) int {
	res := cur + int(c.direction)
	if res < 0 || res >= size {
		return -1
	}
	return res
}

func (c *Cursor) stepBeginPos(part *Part, stepIndex int) float64 {
	if c.direction == Backward {
		return part.StepEndPos(stepIndex)
	}
	return part.StepBeginPos(stepIndex)
}

func (c *Cursor) stepEndPos(part *Part, stepIndex int) float64 {
	if c.direction == Backward {
		return part.StepBeginPos(stepIndex)
	}
	return part.StepEndPos(stepIndex)
}

func (c *Cursor) stepBeginSpeed(part *Part, stepIndex int) float64 {
	if c.direction == Backward {
		return part.StepEndSpeed(stepIndex)
	}
	return part.StepBeginSpeed(stepIndex)
}

func (c *Cursor) stepEndSpeed(part *Part, stepIndex int) float64 {
	if c.direction == Backward {
		return part.StepBeginSpeed(stepIndex)
	}
	return part.StepEndSpeed(stepIndex)
}

// StepBeginPos 当前步长的起点位置（按方向）
func (c *Cursor) StepBeginPos() float64 { return c.stepBeginPos(c.part, c.stepIndex) }

// StepEndPos 当前步长的终点位置（按方向）
func (c *Cursor) StepEndPos() float64 { return c.stepEndPos(c.part, c.stepIndex) }

func (c *Cursor) StepBeginSpeed() float64 { return c.stepBeginSpeed(c.part, c.stepIndex) }
func (c *Cursor) StepEndSpeed() float64   { return c.stepEndSpeed(c.part, c.stepIndex) }

func (c *Cursor) partEndPos() float64 {
	return c.stepEndPos(c.part, c.lastIndex(c.part.StepCount()))
}

// EnvelopeEndPos 包络终点位置（按方向）
func (c *Cursor) EnvelopeEndPos() float64 {
	if c.direction == Backward {
		return c.envelope.BeginPos()
	}
	return c.envelope.EndPos()
}

// EnvelopeEndSpeed 包络终点速度（按方向）
func (c *Cursor) EnvelopeEndSpeed() float64 {
	if c.direction == Backward {
		return c.envelope.BeginSpeed()
	}
	return c.envelope.EndSpeed()
}

// Speed 当前位置的速度，存在强制速度时直接返回
func (c *Cursor) Speed() float64 {
	c.checkNotEnded()
	if !math.IsNaN(c.speed) {
		return c.speed
	}
	return c.part.InterpolateSpeedAt(c.stepIndex, c.position)
}

// setPosition 设置位置和强制速度，并递增revision
func (c *Cursor) setPosition(newPosition, newSpeed float64) {
	// 位置不变时不覆盖已经强制的速度
	if newPosition == c.position && !math.IsNaN(c.speed) && math.IsNaN(newSpeed) {
		return
	}
	if math.IsInf(newPosition, 0) {
		log.Panicf("cannot move cursor to an infinite position")
	}
	if !math.IsNaN(newPosition) && !math.IsNaN(c.position) && c.ComparePos(c.position, newPosition) > PositionEpsilon {
		log.Panicf("cursor can only move %v: %f -> %f", c.direction, c.position, newPosition)
	}
	c.position = newPosition
	c.speed = newSpeed
	c.revision++
}

// MoveToEnd 将游标移动到包络终点之后
func (c *Cursor) MoveToEnd() {
	c.part = nil
	c.partIndex = -1
	c.stepIndex = -1
	c.setPosition(math.NaN(), math.NaN())
}

// NextPartIndex 下一个片段的下标，不存在时返回-1
func (c *Cursor) NextPartIndex() int {
	if c.HasReachedEnd() {
		return -1
	}
	return c.nextIndex(c.partIndex, c.envelope.Size())
}

// NextPart 移动到下一个片段的起点
// 返回：是否仍在包络内
func (c *Cursor) NextPart() bool {
	if c.HasReachedEnd() {
		return false
	}
	c.partIndex = c.NextPartIndex()
	if c.partIndex == -1 {
		c.MoveToEnd()
		return false
	}
	c.part = c.envelope.Get(c.partIndex)
	c.stepIndex = c.firstIndex(c.part.StepCount())
	c.setPosition(c.StepBeginPos(), math.NaN())
	return true
}

// NextStep 移动到下一个步长的起点
func (c *Cursor) NextStep() NextStepResult {
	if c.HasReachedEnd() {
		return NextStepReachedEnd
	}
	c.stepIndex = c.nextIndex(c.stepIndex, c.part.StepCount())
	if c.stepIndex == -1 {
		if c.NextPart() {
			return NextStepPart
		}
		return NextStepReachedEnd
	}
	c.setPosition(c.StepBeginPos(), math.NaN())
	return NextStepContinue
}

// FindPosition 将游标移动到给定位置
// 功能：沿方向查找包含newPosition的片段和步长
// 返回：是否找到；越过包络终点时返回false
// 说明：newPosition不能位于当前位置之前
func (c *Cursor) FindPosition(newPosition float64) bool {
	if c.HasReachedEnd() {
		return false
	}
	if c.ComparePos(newPosition, c.position) < -PositionEpsilon {
		log.Panicf("cursor can only move %v: %f -> %f", c.direction, c.position, newPosition)
	}

	for c.ComparePos(c.partEndPos(), newPosition) < 0 {
		if !c.NextPart() {
			return false
		}
	}
	for c.ComparePos(c.StepEndPos(), newPosition) < 0 {
		if c.NextStep() == NextStepReachedEnd {
			return false
		}
	}
	c.setPosition(newPosition, math.NaN())
	return true
}

// FindStep 查找满足predicate的步长，游标停在该步长起点
func (c *Cursor) FindStep(predicate TransitionPredicate) bool {
	if c.HasReachedEnd() {
		return false
	}
	for {
		if predicate(c.StepBeginPos(), c.StepBeginSpeed(), c.StepEndPos(), c.StepEndSpeed()) {
			return true
		}
		if c.NextStep() == NextStepReachedEnd {
			return false
		}
	}
}

// FindPart 查找满足predicate的片段
func (c *Cursor) FindPart(predicate func(*Part) bool) bool {
	if c.HasReachedEnd() {
		return false
	}
	for {
		if predicate(c.part) {
			return true
		}
		if !c.NextPart() {
			return false
		}
	}
}

// FindPartTransition 查找满足predicate的片段交界
// 功能：依次把游标移到当前片段终点，用当前片段终点与下一片段起点测试predicate
// 返回：找到时游标停在交界处（当前片段的最后一个步长内）
func (c *Cursor) FindPartTransition(predicate TransitionPredicate) bool {
	if c.HasReachedEnd() {
		return false
	}
	for {
		nextPartIndex := c.NextPartIndex()
		if nextPartIndex == -1 {
			return false
		}
		nextPart := c.envelope.Get(nextPartIndex)

		curEndIndex := c.lastIndex(c.part.StepCount())
		nextStartIndex := c.firstIndex(nextPart.StepCount())

		curPos := c.stepEndPos(c.part, curEndIndex)
		curSpeed := c.stepEndSpeed(c.part, curEndIndex)
		nextPos := c.stepBeginPos(nextPart, nextStartIndex)
		nextSpeed := c.stepBeginSpeed(nextPart, nextStartIndex)

		c.stepIndex = curEndIndex
		c.setPosition(curPos, math.NaN())

		if predicate(curPos, curSpeed, nextPos, nextSpeed) {
			return true
		}
		if !c.NextPart() {
			return false
		}
	}
}

// FindSpeed 查找速度满足比较条件的下一个位置
// 功能：跳过不可能满足条件的片段，在步长内求与speed的交点
// 返回：是否找到；找到时游标停在该位置并强制速度为speed（不连续处除外）
func (c *Cursor) FindSpeed(speed float64, cmp SpeedComparison) bool {
	if c.HasReachedEnd() {
		return false
	}
	partPredicate := func(part *Part) bool {
		return cmp.compare(cmp.partBound(part), speed)
	}
	if !c.FindPart(partPredicate) {
		return false
	}

	for !cmp.compare(c.Speed(), speed) && !cmp.compare(c.StepEndSpeed(), speed) {
		switch c.NextStep() {
		case NextStepReachedEnd:
			return false
		case NextStepPart:
			if !c.FindPart(partPredicate) {
				return false
			}
		}
	}

	// 步长起点已经满足条件，说明这里存在不连续
	if cmp.compare(c.Speed(), speed) {
		return true
	}
	position := IntersectStepWithSpeed(
		c.StepBeginPos(), c.StepBeginSpeed(), c.StepEndPos(), c.StepEndSpeed(), speed,
	)
	c.setPosition(position, speed)
	return true
}
