package main

import (
	"encoding/base64"
	"flag"
	"os"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/tsinghua-fib-lab/envelope-sim-oss/task"
	"github.com/tsinghua-fib-lab/envelope-sim-oss/utils/config"
)

var (
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 报告输出路径，覆盖配置文件中的output.file
	outputPath = flag.String("output", "", "report output path (overrides output.file)")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "envelope-sim")
)

// 环境变量ENVELOPE_SIM_MONGO_URI覆盖配置文件中的input.uri
const mongoURIEnv = "ENVELOPE_SIM_MONGO_URI"

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	// 获取配置
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		log.Panic("config file or config data must be specified")
	}
	c, err := config.Parse(file)
	if err != nil {
		log.Panicf("%v", err)
	}
	if uri := os.Getenv(mongoURIEnv); uri != "" {
		c.Input.URI = uri
	}
	if *outputPath != "" {
		c.Output.File = *outputPath
	}
	if err := c.Validate(); err != nil {
		log.Panicf("%v", err)
	}
	log.Infof("%+v", c)

	t := task.NewContext(c, nil)
	if err := t.Init(); err != nil {
		log.Fatalf("init failed: %v", err)
	}
	if _, err := t.Run(); err != nil {
		log.Fatalf("simulation failed: %v", err)
	}
}
