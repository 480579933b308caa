package input

import (
	"context"
	"fmt"
	"os"

	"git.fiblab.net/general/common/v2/mongoutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/yaml.v2"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/pipeline"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/sim"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/utils/config"
)

// Scenario 一次仿真的场景数据
// 功能：线路长度与坡度、列车参数、限速和停车点
// 说明：YAML文件与MongoDB文档使用相同的字段名
type Scenario struct {
	Name         string                 `yaml:"name" bson:"name"`
	PathLength   float64                `yaml:"path_length" bson:"path_length"`     // 路径长度（米）
	Grades       []sim.GradeSection     `yaml:"grades,omitempty" bson:"grades"`     // 坡度区段
	RollingStock sim.SimpleRollingStock `yaml:"rolling_stock" bson:"rolling_stock"` // 列车

	pipeline.Input `yaml:",inline" bson:",inline"` // 限速、停车点与初速度
}

// Validate 检查场景数据
func (s *Scenario) Validate() error {
	if s.PathLength <= 0 {
		return fmt.Errorf("%w: scenario %q has non positive path length %f", sim.ErrInvalidInput, s.Name, s.PathLength)
	}
	if s.InitialSpeed < 0 {
		return fmt.Errorf("%w: scenario %q has negative initial speed %f", sim.ErrInvalidInput, s.Name, s.InitialSpeed)
	}
	return s.RollingStock.Validate()
}

// Init 加载场景数据
// 功能：根据配置从文件或MongoDB加载场景
// 参数：c-配置对象
// 返回：通过检查的场景
// 算法说明：
// 1. 配置了文件时从YAML文件加载
// 2. 配置了随机场景时按种子生成
// 3. 否则连接MongoDB，在集合中按name查找场景文档
// 4. 检查场景数据，并补全列车的默认参数
func Init(c config.Config) (*Scenario, error) {
	var (
		scenario *Scenario
		err      error
	)
	if c.Input.Scenario.File != "" {
		scenario, err = loadFile(c.Input.Scenario.File)
	} else if r := c.Input.Random; r != nil {
		scenario = Random(r.Seed, r.Length)
	} else {
		client := mongoutil.NewClient(c.Input.URI)
		defer client.Disconnect(context.Background())
		scenario, err = loadMongo(context.Background(), client, c.Input.Scenario)
	}
	if err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	log.Infof("scenario %q: path %.1f m, %d grade sections, %d speed limits, %d stops",
		scenario.Name, scenario.PathLength, len(scenario.Grades), len(scenario.Limits), len(scenario.Stops))
	return scenario, nil
}

// loadFile 从YAML文件加载场景
func loadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario from file: %w", err)
	}
	return Parse(data)
}

// Parse 解析YAML格式的场景
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	return &s, nil
}

// loadMongo 从MongoDB加载场景
func loadMongo(ctx context.Context, client *mongo.Client, path config.InputPath) (*Scenario, error) {
	coll := mongoutil.GetMongoColl(client, path)
	log.Infof("start fetching %q from %s.%s", path.Name, path.DB, path.Col)
	var s Scenario
	if err := coll.FindOne(ctx, bson.M{"name": path.Name}).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to download scenario %q: %w", path.Name, err)
	}
	log.Infof("finish fetching %q from %s.%s", path.Name, path.DB, path.Col)
	return &s, nil
}
