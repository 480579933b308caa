package task

import (
	"fmt"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v2"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/envelope"
)

// PartReport 最大能力包络的一个片段
type PartReport struct {
	Begin      float64 `yaml:"begin"`
	End        float64 `yaml:"end"`
	BeginSpeed float64 `yaml:"begin_speed"`
	EndSpeed   float64 `yaml:"end_speed"`
	Profile    string  `yaml:"profile"`
	Stop       *int    `yaml:"stop,omitempty"` // 以停车为目标的制动片段对应的停车点下标
	Time       float64 `yaml:"time"`           // 片段运行时间（秒）
}

// StopReport 到达停车点的时刻
type StopReport struct {
	Index    int     `yaml:"index"`
	Position float64 `yaml:"position"`
	Elapsed  float64 `yaml:"elapsed"` // 自出发以来的时间（秒）
	Arrival  string  `yaml:"arrival"` // HH:MM:SS
}

// Report 仿真报告
type Report struct {
	Scenario    string                `yaml:"scenario"`
	Distance    float64               `yaml:"distance"`
	RunningTime float64               `yaml:"running_time"`
	Departure   string                `yaml:"departure"`
	Arrival     string                `yaml:"arrival"`
	Parts       []PartReport          `yaml:"parts"`
	Stops       []StopReport          `yaml:"stops,omitempty"`
	Points      []envelope.TimedPoint `yaml:"points,omitempty"`
}

// newReport 根据最大能力包络生成报告
func (ctx *Context) newReport() *Report {
	maxEffort := ctx.result.MaxEffort
	ctx.clock.Init()
	report := &Report{
		Scenario:    ctx.scenario.Name,
		Distance:    maxEffort.TotalDistance(),
		RunningTime: maxEffort.TotalTime(),
		Departure:   ctx.clock.String(),
	}
	ctx.clock.Set(maxEffort.TotalTime())
	report.Arrival = ctx.clock.String()

	report.Parts = lo.Map(maxEffort.Parts(), func(part *envelope.Part, _ int) PartReport {
		r := PartReport{
			Begin:      part.BeginPos(),
			End:        part.EndPos(),
			BeginSpeed: part.BeginSpeed(),
			EndSpeed:   part.EndSpeed(),
			Profile:    part.Meta().Profile.String(),
			Time:       part.TotalTime(),
		}
		if index, ok := part.Meta().StopIndex(); ok {
			r.Stop = &index
		}
		return r
	})
	for i, stop := range ctx.scenario.Stops {
		if stop == 0 {
			continue
		}
		elapsed := maxEffort.InterpolateTotalTimeClamp(stop)
		ctx.clock.Set(elapsed)
		report.Stops = append(report.Stops, StopReport{
			Index:    i,
			Position: stop,
			Elapsed:  elapsed,
			Arrival:  ctx.clock.String(),
		})
	}
	if ctx.runtimeConfig.All.Output.Points {
		report.Points = maxEffort.IteratePoints()
	}
	return report
}

// WriteFile 以YAML格式写出报告
func (r *Report) WriteFile(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
