package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// applyEnvOverrides 按 `env` 标签用环境变量覆盖字段，未设置或为空的变量保留文件中的值
func applyEnvOverrides(v any) error {
	if err := env.Parse(v); err != nil {
		return fmt.Errorf("env: %w", err)
	}
	return nil
}
