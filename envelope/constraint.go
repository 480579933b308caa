package envelope

import (
	"math"
)

// DefaultIntersectionTolerance 包络约束判定"交点恰好位于端点"时使用的速度差阈值
const DefaultIntersectionTolerance = 1e-8

// ConstraintKind 约束种类
type ConstraintKind int

const (
	PositionConstraintKind ConstraintKind = iota // 位置范围
	SpeedConstraintKind                          // 固定速度上下限
	EnvelopeConstraintKind                       // 相对于另一条包络的上下限
)

// ConstraintType 约束方向
type ConstraintType int

const (
	Ceiling ConstraintType = iota // 不得高于
	Floor                         // 不得低于
	Equal                         // 必须等于
)

func (t ConstraintType) String() string {
	switch t {
	case Ceiling:
		return "CEILING"
	case Floor:
		return "FLOOR"
	default:
		return "EQUAL"
	}
}

// nextPointKind 包络约束中，沿方向先出现的数据点属于哪条曲线
type nextPointKind int

const (
	basePoint    nextPointKind = iota // 基准包络的点先出现
	overlayPoint                      // 新片段的点先出现
	bothPoints                        // 两者位置相同
)

type nextPoint struct {
	kind         nextPointKind
	position     float64
	baseSpeed    float64
	overlaySpeed float64
}

// Constraint 片段构建约束
// 功能：在构建新片段时逐步检查，给出第一个违反约束的点
// 说明：
//   - 种类是封闭集合（位置、速度、包络），通过kind分派
//   - 包络约束持有自己的游标，是有状态的，只能用于一个片段
type Constraint struct {
	kind ConstraintKind
	typ  ConstraintType

	// 位置约束
	begin, end float64
	// 速度约束
	speed float64
	// 包络约束
	base      *Envelope
	cursor    *Cursor
	tolerance float64
}

// NewPositionConstraint 位置范围约束，片段离开[begin, end]时在越过的边界处截断
func NewPositionConstraint(begin, end float64) *Constraint {
	if begin > end {
		log.Panicf("invalid position constraint range [%f, %f]", begin, end)
	}
	return &Constraint{kind: PositionConstraintKind, begin: begin, end: end}
}

// NewSpeedConstraint 固定速度约束
func NewSpeedConstraint(speed float64, typ ConstraintType) *Constraint {
	return &Constraint{kind: SpeedConstraintKind, typ: typ, speed: speed}
}

// NewEnvelopeConstraint 包络约束，typ只能是Ceiling或Floor
func NewEnvelopeConstraint(base *Envelope, typ ConstraintType) *Constraint {
	if typ == Equal {
		log.Panic("envelope constraints cannot be of type EQUAL")
	}
	return &Constraint{
		kind:      EnvelopeConstraintKind,
		typ:       typ,
		base:      base,
		tolerance: DefaultIntersectionTolerance,
	}
}

// WithTolerance 设置包络约束的交点判定阈值
func (c *Constraint) WithTolerance(tolerance float64) *Constraint {
	c.tolerance = tolerance
	return c
}

func (c *Constraint) Kind() ConstraintKind { return c.kind }
func (c *Constraint) Type() ConstraintType { return c.typ }

// InitCheck 检查新片段的起点
// 参数：direction-构建方向，position,speed-起点
// 返回：起点是否满足约束
func (c *Constraint) InitCheck(direction Direction, position, speed float64) bool {
	switch c.kind {
	case PositionConstraintKind:
		return position >= c.begin && position <= c.end
	case SpeedConstraintKind:
		return c.checkSpeed(speed, c.speed)
	default:
		return c.envelopeInitCheck(direction, position, speed)
	}
}

// StepCheck 检查一个候选步长
// 参数：startPos,startSpeed-步长起点（已在片段中），endPos,endSpeed-候选终点
// 返回：第一个违反约束的点（不含起点，含终点），ok为false表示整个步长满足约束
func (c *Constraint) StepCheck(startPos, startSpeed, endPos, endSpeed float64) (point EnvelopePoint, ok bool) {
	switch c.kind {
	case PositionConstraintKind:
		return c.positionStepCheck(startPos, startSpeed, endPos, endSpeed)
	case SpeedConstraintKind:
		return c.speedStepCheck(startPos, startSpeed, endPos, endSpeed)
	default:
		return c.envelopeStepCheck(startPos, startSpeed, endPos, endSpeed)
	}
}

// checkSpeed 判断speed相对bound是否满足约束
func (c *Constraint) checkSpeed(speed, bound float64) bool {
	switch c.typ {
	case Ceiling:
		return speed <= bound
	case Floor:
		return speed >= bound
	default:
		return AreSpeedsEqual(speed, bound)
	}
}

func (c *Constraint) positionStepCheck(startPos, startSpeed, endPos, endSpeed float64) (EnvelopePoint, bool) {
	var bound float64
	switch {
	case endPos > c.end:
		bound = c.end
	case endPos < c.begin:
		bound = c.begin
	default:
		return EnvelopePoint{}, false
	}
	speed := InterpolateStepSpeed(startPos, endPos, startSpeed, endSpeed, bound-startPos)
	return EnvelopePoint{Position: bound, Speed: speed}, true
}

func (c *Constraint) speedStepCheck(startPos, startSpeed, endPos, endSpeed float64) (EnvelopePoint, bool) {
	if c.checkSpeed(endSpeed, c.speed) {
		return EnvelopePoint{}, false
	}
	if c.typ == Equal {
		// 速度无法保持，在步长起点截断
		return EnvelopePoint{Position: startPos, Speed: startSpeed}, true
	}
	position := IntersectStepWithSpeed(startPos, startSpeed, endPos, endSpeed, c.speed)
	return EnvelopePoint{Position: position, Speed: c.speed}, true
}

// speedDelta 新片段相对基准包络越界的程度，正数表示越界
func (c *Constraint) speedDelta(overlaySpeed, baseSpeed float64) float64 {
	if c.typ == Floor {
		return baseSpeed - overlaySpeed
	}
	return overlaySpeed - baseSpeed
}

func (c *Constraint) envelopeInitCheck(direction Direction, position, speed float64) bool {
	c.cursor = NewCursor(c.base, direction)
	if !c.cursor.FindPosition(position) {
		return false
	}
	// 起点恰好位于基准的数据点上时，移动到下一个步长，避免与上一个步长求交
	if position == c.cursor.StepEndPos() {
		if c.cursor.NextStep() == NextStepReachedEnd {
			return false
		}
	}
	return c.speedDelta(speed, c.cursor.Speed()) <= 0
}

// nextPoint 比较新片段步长终点与基准步长终点，返回沿方向先出现的点
func (c *Constraint) nextPoint(lastPos, lastSpeed, position, speed float64) nextPoint {
	cursor := c.cursor
	baseStepEnd := cursor.StepEndPos()
	delta := cursor.ComparePos(position, baseStepEnd)
	switch {
	case delta == 0:
		return nextPoint{
			kind:         bothPoints,
			position:     position,
			baseSpeed:    cursor.StepEndSpeed(),
			overlaySpeed: speed,
		}
	case delta < 0:
		baseBeginPos := cursor.StepBeginPos()
		return nextPoint{
			kind:     overlayPoint,
			position: position,
			baseSpeed: InterpolateStepSpeed(
				baseBeginPos, baseStepEnd,
				cursor.StepBeginSpeed(), cursor.StepEndSpeed(),
				position-baseBeginPos,
			),
			overlaySpeed: speed,
		}
	default:
		return nextPoint{
			kind:         basePoint,
			position:     baseStepEnd,
			baseSpeed:    cursor.StepEndSpeed(),
			overlaySpeed: InterpolateStepSpeed(lastPos, position, lastSpeed, speed, baseStepEnd-lastPos),
		}
	}
}

// intersect 在当前基准步长内查找交点
func (c *Constraint) intersect(lastPos, lastSpeed, position, speed float64) (EnvelopePoint, bool) {
	cursor := c.cursor
	baseBeginSpeed, baseEndSpeed := cursor.StepBeginSpeed(), cursor.StepEndSpeed()

	// 速度范围不重叠时不可能相交
	if c.typ == Floor {
		if math.Min(lastSpeed, speed) > math.Max(baseBeginSpeed, baseEndSpeed) {
			return EnvelopePoint{}, false
		}
	} else if math.Max(lastSpeed, speed) < math.Min(baseBeginSpeed, baseEndSpeed) {
		return EnvelopePoint{}, false
	}

	event := c.nextPoint(lastPos, lastSpeed, position, speed)
	delta := c.speedDelta(event.overlaySpeed, event.baseSpeed)
	if delta < -c.tolerance {
		return EnvelopePoint{}, false
	}
	if delta <= c.tolerance {
		if event.kind != basePoint {
			return EnvelopePoint{Position: position, Speed: speed}, true
		}
		return EnvelopePoint{Position: event.position, Speed: event.overlaySpeed}, true
	}

	return IntersectSteps(
		lastPos, lastSpeed, position, speed,
		cursor.StepBeginPos(), baseBeginSpeed, cursor.StepEndPos(), baseEndSpeed,
	), true
}

// handleNewPart 基准进入新片段时，检查新片段在基准片段起点处是否已经越界
func (c *Constraint) handleNewPart(lastPos, lastSpeed, position, speed float64) (EnvelopePoint, bool) {
	partStart := c.cursor.StepBeginPos()
	partStartSpeed := c.cursor.StepBeginSpeed()
	overlaySpeed := InterpolateStepSpeed(lastPos, position, lastSpeed, speed, partStart-lastPos)
	if c.speedDelta(overlaySpeed, partStartSpeed) < 0 {
		return EnvelopePoint{}, false
	}
	return EnvelopePoint{Position: partStart, Speed: overlaySpeed}, true
}

// envelopeStepCheck 包络约束的步长检查
// 算法说明：
// 1. 依次遍历与候选步长位置范围重叠的基准步长，在每个基准步长内求交
// 2. 跨入新的基准片段时，检查片段起点处是否越界（基准可能不连续）
// 3. 候选步长超出基准终点时，在基准终点处截断
func (c *Constraint) envelopeStepCheck(startPos, startSpeed, endPos, endSpeed float64) (EnvelopePoint, bool) {
	cursor := c.cursor
	if cursor == nil {
		log.Panic("envelope constraint used before InitCheck")
	}
	if cursor.HasReachedEnd() {
		return EnvelopePoint{Position: startPos, Speed: startSpeed}, true
	}
	for cursor.ComparePos(endPos, cursor.StepBeginPos()) > 0 {
		if point, ok := c.intersect(startPos, startSpeed, endPos, endSpeed); ok {
			return point, true
		}

		stepEndPos := cursor.StepEndPos()
		if cursor.ComparePos(endPos, stepEndPos) < 0 {
			break
		}

		switch cursor.NextStep() {
		case NextStepPart:
			if point, ok := c.handleNewPart(startPos, startSpeed, endPos, endSpeed); ok {
				return point, true
			}
		case NextStepReachedEnd:
			speed := InterpolateStepSpeed(startPos, endPos, startSpeed, endSpeed, stepEndPos-startPos)
			return EnvelopePoint{Position: stepEndPos, Speed: speed}, true
		}
	}
	return EnvelopePoint{}, false
}
