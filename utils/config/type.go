package config

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 功能：定义场景数据的来源，文件优先于MongoDB
type InputPath struct {
	DB   string `yaml:"db,omitempty"`   // 数据库名
	Col  string `yaml:"col,omitempty"`  // 集合名
	Name string `yaml:"name,omitempty"` // 场景名，MongoDB中按name字段查找
	File string `yaml:"file,omitempty"` // 文件路径（优先级高于MongoDB）
}

// GetDb 获取数据库名
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p InputPath) GetColl() string {
	return p.Col
}

// RandomScenario 随机生成场景
type RandomScenario struct {
	Seed   uint64  `yaml:"seed"`
	Length float64 `yaml:"length"` // 路径长度（米）
}

// Input 指定模拟器所有输入数据的配置项
type Input struct {
	URI      string          `yaml:"uri,omitempty"`    // MongoDB连接字符串
	Scenario InputPath       `yaml:"scenario"`         // 线路、列车、限速与停车点
	Random   *RandomScenario `yaml:"random,omitempty"` // 不为空时忽略MongoDB，按种子生成场景
}

// Control 模拟器控制配置
// 功能：定义积分步长、初速度与出发时刻
type Control struct {
	TimeStep     float64  `yaml:"time_step,omitempty"`     // 积分时间步长（秒），未指定时为2
	InitialSpeed *float64 `yaml:"initial_speed,omitempty"` // 初速度（米/秒），指定时覆盖场景中的初速度
	Departure    float64  `yaml:"departure,omitempty"`     // 出发时刻（从0点起的秒数）
}

// Output 仿真结果输出配置
type Output struct {
	File   string `yaml:"file,omitempty"`   // 报告文件路径，为空时只输出日志
	Points bool   `yaml:"points,omitempty"` // 报告中是否包含最大能力包络的全部数据点
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
// 说明：包含输入、控制、输出等所有配置项
type Config struct {
	Input   Input   `yaml:"input"`            // 输入
	Control Control `yaml:"control"`          // 模拟过程控制
	Output  Output  `yaml:"output,omitempty"` // 输出
}
