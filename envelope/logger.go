package envelope

import "github.com/sirupsen/logrus"

// log 包络模块的日志记录器
// 说明：契约被破坏时通过log.Panicf报告，带有"module"字段
var log = logrus.WithField("module", "envelope")
