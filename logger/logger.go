// Package logger 提供 goalscan 服务的标准输出/标准错误日志对。
// 长驻组件 (AMQP 发布器、数据清理任务) 用它把错误流与正常流分开,
// 轮询周期日志仍走标准库 log。
package logger

import (
	"log"
	"os"
)

var (
	// Info 正常日志，输出到 stdout
	Info *log.Logger

	// Error 错误日志，输出到 stderr
	Error *log.Logger
)

func init() {
	Info = log.New(os.Stdout, "", log.LstdFlags)
	Error = log.New(os.Stderr, "", log.LstdFlags)
}

// Println 输出正常日志到 stdout
func Println(v ...interface{}) {
	Info.Println(v...)
}

// Printf 格式化输出正常日志到 stdout
func Printf(format string, v ...interface{}) {
	Info.Printf(format, v...)
}

// Errorln 输出错误日志到 stderr
func Errorln(v ...interface{}) {
	Error.Println(v...)
}

// Errorf 格式化输出错误日志到 stderr
func Errorf(format string, v ...interface{}) {
	Error.Printf(format, v...)
}

// Fatalf 输出致命错误并退出程序
func Fatalf(format string, v ...interface{}) {
	Error.Fatalf(format, v...)
}
