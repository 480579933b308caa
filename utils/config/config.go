package config

import (
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/sim"
)

// MinRandomLength 随机场景的最短路径长度（米），至少能切分出两个限速区段
const MinRandomLength = 400.

// RuntimeConfig 运行时配置
// 功能：存储补全默认值之后的配置
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// Parse 解析YAML配置
// 功能：严格解析配置内容，未知字段视为错误
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("config parse err: %w", err)
	}
	return c, nil
}

// Validate 检查输入来源是否完整以及控制参数是否合法
func (c Config) Validate() error {
	if c.Control.InitialSpeed != nil && *c.Control.InitialSpeed < 0 {
		return fmt.Errorf("config err: control.initial_speed must not be negative")
	}
	if c.Input.Scenario.File != "" {
		return nil
	}
	if r := c.Input.Random; r != nil {
		if r.Length < MinRandomLength {
			return fmt.Errorf("config err: input.random.length must be at least %.0f", MinRandomLength)
		}
		return nil
	}
	if c.Input.URI == "" || c.Input.Scenario.DB == "" || c.Input.Scenario.Col == "" || c.Input.Scenario.Name == "" {
		return fmt.Errorf("config err: input.scenario.file or input.uri with input.scenario.db/col/name must be specified")
	}
	return nil
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：补全默认值
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针
// 算法说明：
// 1. 未指定积分步长时使用sim.DefaultTimeStep
// 2. 初速度保持未指定，由场景决定
func NewRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{}

	if config.Control.TimeStep <= 0 {
		config.Control.TimeStep = sim.DefaultTimeStep
	}
	rc.All = config
	rc.C = config.Control

	return rc
}
