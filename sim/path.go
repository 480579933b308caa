package sim

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/envelope"
)

// PhysicsPath 仿真路径
// 功能：提供路径长度与区间平均坡度（千分比，上坡为正）
type PhysicsPath interface {
	Length() float64
	AverageGrade(begin, end float64) float64
}

// FlatPath 没有坡度的路径
type FlatPath struct {
	PathLength float64
}

func (p FlatPath) Length() float64 {
	return p.PathLength
}

func (p FlatPath) AverageGrade(_, _ float64) float64 {
	return 0
}

// GradeSection 坡度区段
type GradeSection struct {
	Begin float64 `yaml:"begin" bson:"begin"` // 起点（米）
	End   float64 `yaml:"end" bson:"end"`     // 终点（米）
	Grade float64 `yaml:"grade" bson:"grade"` // 坡度（千分比）
}

// GradePath 分段常坡度路径
// 功能：通过坡度的累计和在O(log n)时间内计算任意区间的平均坡度
type GradePath struct {
	length    float64
	positions []float64 // 坡度变化点，首项为0，末项为路径长度
	grades    []float64 // 相邻变化点之间的坡度
	cumSum    []float64 // 每个变化点处坡度乘以距离的累计和
}

// NewGradePath 由坡度区段创建路径
// 参数：length-路径长度，sections-坡度区段，未覆盖的部分视为平坡
// 返回：路径指针，区段重叠或越界时返回错误
func NewGradePath(length float64, sections []GradeSection) (*GradePath, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: path length %f must be positive", ErrInvalidInput, length)
	}
	sorted := slices.Clone(sections)
	slices.SortFunc(sorted, func(a, b GradeSection) int { return cmp.Compare(a.Begin, b.Begin) })

	positions := []float64{0}
	grades := []float64{}
	for i, s := range sorted {
		if s.Begin >= s.End {
			return nil, fmt.Errorf("%w: grade section %d [%f, %f] is empty", ErrInvalidInput, i, s.Begin, s.End)
		}
		if s.Begin < 0 || s.End > length+envelope.PositionEpsilon {
			return nil, fmt.Errorf("%w: grade section %d [%f, %f] is outside of path [0, %f]", ErrInvalidInput, i, s.Begin, s.End, length)
		}
		last := positions[len(positions)-1]
		if s.Begin < last {
			return nil, fmt.Errorf("%w: grade section %d [%f, %f] overlaps the previous section", ErrInvalidInput, i, s.Begin, s.End)
		}
		if s.Begin > last {
			// 区段之间的空隙视为平坡
			positions = append(positions, s.Begin)
			grades = append(grades, 0)
		}
		positions = append(positions, min(s.End, length))
		grades = append(grades, s.Grade)
	}
	if last := positions[len(positions)-1]; last < length {
		positions = append(positions, length)
		grades = append(grades, 0)
	}

	p := &GradePath{
		length:    length,
		positions: positions,
		grades:    grades,
		cumSum:    make([]float64, len(positions)),
	}
	for i := range grades {
		p.cumSum[i+1] = p.cumSum[i] + grades[i]*(positions[i+1]-positions[i])
	}
	return p, nil
}

func (p *GradePath) Length() float64 {
	return p.length
}

// cumGrade 从路径起点到position的坡度累计和
func (p *GradePath) cumGrade(position float64) float64 {
	position = lo.Clamp(position, 0, p.length)
	i := sort.SearchFloat64s(p.positions, position)
	if i < len(p.positions) && p.positions[i] == position {
		return p.cumSum[i]
	}
	rangeIndex := i - 1
	return p.cumSum[rangeIndex] + p.grades[rangeIndex]*(position-p.positions[rangeIndex])
}

// gradeAt position所在区段的坡度
func (p *GradePath) gradeAt(position float64) float64 {
	position = lo.Clamp(position, 0, p.length)
	i := sort.SearchFloat64s(p.positions, position)
	if i < len(p.positions) && p.positions[i] == position {
		return p.grades[min(i, len(p.grades)-1)]
	}
	return p.grades[i-1]
}

// AverageGrade [begin, end]区间的平均坡度
func (p *GradePath) AverageGrade(begin, end float64) float64 {
	if mathutil.Abs(end-begin) < envelope.PositionEpsilon {
		return p.gradeAt(begin)
	}
	return (p.cumGrade(end) - p.cumGrade(begin)) / (end - begin)
}
