package logger

import (
	"io"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateConfig 日志轮转配置
type RotateConfig struct {
	Filename string `yaml:"filename" json:"filename" ini:"filename"`

	// 按大小轮转
	MaxSize    int  `yaml:"max_size" json:"max_size" ini:"max_size"`          // 单文件上限(MB)
	MaxBackups int  `yaml:"max_backups" json:"max_backups" ini:"max_backups"` // 保留的旧文件数
	Compress   bool `yaml:"compress" json:"compress" ini:"compress"`

	// 按时间轮转
	MaxAge       int           `yaml:"max_age" json:"max_age" ini:"max_age"` // 保留天数
	RotationTime time.Duration `yaml:"rotation_time" json:"rotation_time" ini:"rotation_time"`

	LocalTime bool `yaml:"local_time" json:"local_time" ini:"local_time"`
}

// NewProductionRotateBySize 生产环境默认的按大小轮转: 100MB, 保留30天/30个, 压缩
func NewProductionRotateBySize(filename string) io.Writer {
	return NewRotateBySize(&RotateConfig{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 30,
		MaxAge:     30,
		Compress:   true,
		LocalTime:  true,
	})
}

// NewRotateBySize 按大小轮转
func NewRotateBySize(cfg *RotateConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  cfg.LocalTime,
	}
}

// NewRotateByTime 按时间轮转，文件名追加 .YYYYmmddHH 后缀，并维护指向最新文件的软链
func NewRotateByTime(cfg *RotateConfig) (io.Writer, error) {
	rotationTime := cfg.RotationTime
	if rotationTime <= 0 {
		rotationTime = 24 * time.Hour
	}
	maxAge := time.Duration(cfg.MaxAge) * 24 * time.Hour
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}

	opts := []rotatelogs.Option{
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationTime(rotationTime),
		rotatelogs.WithLinkName(cfg.Filename),
	}
	if !cfg.LocalTime {
		opts = append(opts, rotatelogs.WithClock(rotatelogs.UTC))
	}
	return rotatelogs.New(cfg.Filename+".%Y%m%d%H", opts...)
}
