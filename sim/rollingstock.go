package sim

import (
	"cmp"
	"fmt"
	"slices"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
)

// GammaType 减速度的给定方式
type GammaType string

const (
	GammaConst GammaType = "CONST" // 恒定减速度
	GammaMax   GammaType = "MAX"   // 最大制动力对应的减速度
)

// RollingStock 列车物理参数
// 功能：仿真所需的只读列车特性，力的单位为牛顿，速度为米/秒
type RollingStock interface {
	Length() float64              // 车长（米）
	Mass() float64                // 质量（千克）
	Inertia() float64             // 惯性质量（质量乘以惯性系数）
	MaxSpeed() float64            // 最高速度
	ComfortAcceleration() float64 // 舒适加速度上限，0表示不限制
	Deceleration() float64        // 制动减速度（正数）
	GammaType() GammaType
	RollingResistance(speed float64) float64 // 运行阻力，始终与运动方向相反
	MaxEffort(speed float64) float64         // 最大牵引力
	MaxBrakingForce(speed float64) float64   // 最大制动力
}

// EffortPoint 牵引特性曲线上的一个点
type EffortPoint struct {
	Speed float64 `yaml:"speed" bson:"speed"` // 速度（米/秒）
	Force float64 `yaml:"force" bson:"force"` // 牵引力（牛顿）
}

// SimpleRollingStock 基于Davis阻力公式与分段线性牵引特性的列车
type SimpleRollingStock struct {
	Name               string        `yaml:"name" bson:"name"`
	TrainLength        float64       `yaml:"length" bson:"length"`                             // 车长（米）
	TrainMass          float64       `yaml:"mass" bson:"mass"`                                 // 质量（千克）
	InertiaCoefficient float64       `yaml:"inertia_coefficient" bson:"inertia_coefficient"`   // 惯性系数，未指定时为1
	TrainMaxSpeed      float64       `yaml:"max_speed" bson:"max_speed"`                       // 最高速度（米/秒）
	ComfortAccel       float64       `yaml:"comfort_acceleration" bson:"comfort_acceleration"` // 舒适加速度，0表示不限制
	A                  float64       `yaml:"a" bson:"a"`                                       // 牛顿
	B                  float64       `yaml:"b" bson:"b"`                                       // 牛顿/(米/秒)
	C                  float64       `yaml:"c" bson:"c"`                                       // 牛顿/(米/秒)²
	Gamma              float64       `yaml:"gamma" bson:"gamma"`                               // 制动减速度（米/秒²）
	GammaKind          GammaType     `yaml:"gamma_type" bson:"gamma_type"`                     // 未指定时为CONST
	Effort             []EffortPoint `yaml:"effort" bson:"effort"`                             // 按速度递增排列的牵引特性曲线
}

// Validate 检查参数是否合法，并补全默认值
func (r *SimpleRollingStock) Validate() error {
	if r.TrainMass <= 0 {
		return fmt.Errorf("%w: rolling stock %q has non positive mass %f", ErrInvalidInput, r.Name, r.TrainMass)
	}
	if r.TrainLength < 0 {
		return fmt.Errorf("%w: rolling stock %q has negative length %f", ErrInvalidInput, r.Name, r.TrainLength)
	}
	if r.TrainMaxSpeed <= 0 {
		return fmt.Errorf("%w: rolling stock %q has non positive max speed %f", ErrInvalidInput, r.Name, r.TrainMaxSpeed)
	}
	if r.Gamma <= 0 {
		return fmt.Errorf("%w: rolling stock %q has non positive gamma %f", ErrInvalidInput, r.Name, r.Gamma)
	}
	if r.A < 0 || r.B < 0 || r.C < 0 {
		return fmt.Errorf("%w: rolling stock %q has negative resistance coefficients", ErrInvalidInput, r.Name)
	}
	if len(r.Effort) == 0 {
		return fmt.Errorf("%w: rolling stock %q has no tractive effort curve", ErrInvalidInput, r.Name)
	}
	if !slices.IsSortedFunc(r.Effort, func(a, b EffortPoint) int {
		return cmp.Compare(a.Speed, b.Speed)
	}) {
		return fmt.Errorf("%w: rolling stock %q tractive effort curve is not sorted by speed", ErrInvalidInput, r.Name)
	}
	if lo.SomeBy(r.Effort, func(p EffortPoint) bool { return p.Force < 0 || p.Speed < 0 }) {
		return fmt.Errorf("%w: rolling stock %q tractive effort curve has negative values", ErrInvalidInput, r.Name)
	}
	if r.InertiaCoefficient == 0 {
		r.InertiaCoefficient = 1
	}
	if r.GammaKind == "" {
		r.GammaKind = GammaConst
	}
	if r.GammaKind != GammaConst && r.GammaKind != GammaMax {
		return fmt.Errorf("%w: rolling stock %q has unknown gamma type %q", ErrInvalidInput, r.Name, r.GammaKind)
	}
	return nil
}

func (r *SimpleRollingStock) Length() float64              { return r.TrainLength }
func (r *SimpleRollingStock) Mass() float64                { return r.TrainMass }
func (r *SimpleRollingStock) Inertia() float64             { return r.TrainMass * r.InertiaCoefficient }
func (r *SimpleRollingStock) MaxSpeed() float64            { return r.TrainMaxSpeed }
func (r *SimpleRollingStock) ComfortAcceleration() float64 { return r.ComfortAccel }
func (r *SimpleRollingStock) Deceleration() float64        { return r.Gamma }
func (r *SimpleRollingStock) GammaType() GammaType         { return r.GammaKind }

// RollingResistance Davis公式 A + B·v + C·v²
func (r *SimpleRollingStock) RollingResistance(speed float64) float64 {
	speed = mathutil.Abs(speed)
	return r.A + r.B*speed + r.C*speed*speed
}

// MaxEffort 给定速度下的最大牵引力
// 算法说明：在牵引特性曲线上线性插值，超出曲线范围时取端点值
func (r *SimpleRollingStock) MaxEffort(speed float64) float64 {
	speed = mathutil.Abs(speed)
	curve := r.Effort
	if len(curve) == 0 {
		return 0
	}
	if speed <= curve[0].Speed {
		return curve[0].Force
	}
	last := curve[len(curve)-1]
	if speed >= last.Speed {
		return last.Force
	}
	i, _ := slices.BinarySearchFunc(curve, speed, func(p EffortPoint, s float64) int {
		return cmp.Compare(p.Speed, s)
	})
	lower, upper := curve[i-1], curve[i]
	if upper.Speed == lower.Speed {
		return upper.Force
	}
	ratio := lo.Clamp((speed-lower.Speed)/(upper.Speed-lower.Speed), 0, 1)
	return lower.Force + ratio*(upper.Force-lower.Force)
}

// MaxBrakingForce 最大制动力 gamma·惯性质量
func (r *SimpleRollingStock) MaxBrakingForce(float64) float64 {
	return r.Gamma * r.Inertia()
}
