package task

import (
	"fmt"
	"time"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/clock"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/pipeline"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/sim"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/utils/input"
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态
// 说明：管理配置、场景、坡度缓存、时钟与计算结果
type Context struct {
	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
	// 时钟
	clock *clock.Clock
	// 坡度路径缓存，可以在多个任务之间共享
	gradeCache *sim.GradeCache

	// 用于初始化的输入
	scenario *input.Scenario
	// 仿真上下文
	simCtx *sim.Context
	// 计算结果
	result *pipeline.Result
}

// NewContext 创建新的仿真任务上下文
// 参数：
//   - c: 配置对象
//   - gradeCache: 坡度路径缓存，为nil时创建新的缓存
//
// 返回：初始化完成的Context实例
func NewContext(c config.Config, gradeCache *sim.GradeCache) *Context {
	if gradeCache == nil {
		gradeCache = sim.NewGradeCache()
	}
	ctx := &Context{
		runtimeConfig: config.NewRuntimeConfig(c),
		gradeCache:    gradeCache,
	}
	ctx.clock = clock.New(ctx.runtimeConfig.C.Departure)
	return ctx
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) Scenario() *input.Scenario {
	return ctx.scenario
}

func (ctx *Context) Result() *pipeline.Result {
	return ctx.result
}

// Init 加载场景并构建仿真上下文
// 算法说明：
// 1. 加载场景数据（文件或MongoDB）
// 2. 通过坡度缓存获取路径，以场景名作为缓存键
// 3. 配置中指定的初速度覆盖场景中的初速度
func (ctx *Context) Init() error {
	scenario, err := input.Init(ctx.runtimeConfig.All)
	if err != nil {
		return err
	}
	return ctx.InitScenario(scenario)
}

// InitScenario 使用已经加载的场景构建仿真上下文
func (ctx *Context) InitScenario(scenario *input.Scenario) error {
	if err := scenario.Validate(); err != nil {
		return err
	}
	if speed := ctx.runtimeConfig.C.InitialSpeed; speed != nil {
		scenario.InitialSpeed = *speed
	}
	path, err := ctx.gradeCache.Path(scenario.Name, scenario.PathLength, scenario.Grades)
	if err != nil {
		return fmt.Errorf("build path of scenario %q: %w", scenario.Name, err)
	}
	simCtx, err := sim.NewContext(&scenario.RollingStock, path, ctx.runtimeConfig.C.TimeStep)
	if err != nil {
		return err
	}
	ctx.scenario = scenario
	ctx.simCtx = simCtx
	return nil
}

// Run 计算包络并生成报告
// 返回：仿真报告；列车无法完成运行或输入非法时返回错误
func (ctx *Context) Run() (*Report, error) {
	if ctx.simCtx == nil {
		log.Panic("task context must be initialized before running")
	}
	start := time.Now()
	result, err := pipeline.Simulate(ctx.simCtx, ctx.scenario.Input)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", ctx.scenario.Name, err)
	}
	ctx.result = result
	log.Infof("scenario %q computed in %v", ctx.scenario.Name, time.Since(start))

	report := ctx.newReport()
	log.Infof("departure %s, arrival %s, running time %.1f s", report.Departure, report.Arrival, report.RunningTime)
	for _, stop := range report.Stops {
		log.Infof("stop %d at %.1f m: %s", stop.Index, stop.Position, stop.Arrival)
	}
	if file := ctx.runtimeConfig.All.Output.File; file != "" {
		if err := report.WriteFile(file); err != nil {
			return nil, err
		}
		log.Infof("report written to %s", file)
	}
	return report, nil
}
