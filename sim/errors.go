package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrImpossibleSimulation 列车在物理上无法完成运行（例如牵引力不足以启动）
	ErrImpossibleSimulation = errors.New("impossible simulation")
	// ErrInvalidInput 输入数据不合法
	ErrInvalidInput = errors.New("invalid input")
)

// ImpossibleSimulationError 带有位置信息的无法仿真错误
type ImpossibleSimulationError struct {
	Reason   string  // 原因
	Position float64 // 出错的位置（米）
}

func (e *ImpossibleSimulationError) Error() string {
	return fmt.Sprintf("%v at position %.3f: %s", ErrImpossibleSimulation, e.Position, e.Reason)
}

func (e *ImpossibleSimulationError) Unwrap() error {
	return ErrImpossibleSimulation
}

// StopOutOfRangeError 停车点不在路径范围内
type StopOutOfRangeError struct {
	Index      int     // 停车点下标
	Position   float64 // 停车点位置
	PathLength float64 // 路径长度
}

func (e *StopOutOfRangeError) Error() string {
	return fmt.Sprintf("stop %d at position %.3f is out of path range [0, %.3f]", e.Index, e.Position, e.PathLength)
}

func (e *StopOutOfRangeError) Unwrap() error {
	return ErrInvalidInput
}
