package sim

import "fmt"

// DefaultTimeStep 默认积分时间步长（秒）
const DefaultTimeStep = 2.

// Context 仿真上下文
// 功能：一次包络计算所需的列车、路径和积分步长，只读
type Context struct {
	RollingStock RollingStock
	Path         PhysicsPath
	TimeStep     float64
}

// NewContext 创建仿真上下文
// 参数：rollingStock-列车，path-路径，timeStep-积分步长（秒），不大于0时使用默认值
// 返回：上下文指针，参数不合法时返回错误
func NewContext(rollingStock RollingStock, path PhysicsPath, timeStep float64) (*Context, error) {
	if rollingStock == nil {
		return nil, fmt.Errorf("%w: missing rolling stock", ErrInvalidInput)
	}
	if path == nil {
		return nil, fmt.Errorf("%w: missing path", ErrInvalidInput)
	}
	if path.Length() <= 0 {
		return nil, fmt.Errorf("%w: path length %f must be positive", ErrInvalidInput, path.Length())
	}
	if timeStep <= 0 {
		timeStep = DefaultTimeStep
	}
	return &Context{RollingStock: rollingStock, Path: path, TimeStep: timeStep}, nil
}
