package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// OverridesConfig 人工上限：学号 -> 该类别最多计入的 late day
type OverridesConfig struct {
	File        string         `toml:"file,omitempty" yaml:"-"`
	Written     map[string]int `toml:"written" yaml:"written"`
	Programming map[string]int `toml:"programming" yaml:"programming"`
}

// LoadOverrides 读取独立的上限文件（.toml / .yaml / .yml）
func LoadOverrides(path string) (*OverridesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides %s: %w", path, err)
	}

	out := &OverridesConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, out)
	default:
		err = toml.Unmarshal(data, out)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse overrides %s: %w", path, err)
	}
	return out, nil
}

// Merge 合并上限文件；config.toml 中直接写的值优先
func (o OverridesConfig) Merge(file *OverridesConfig) OverridesConfig {
	merged := OverridesConfig{
		File:        o.File,
		Written:     map[string]int{},
		Programming: map[string]int{},
	}
	if file != nil {
		for k, v := range file.Written {
			merged.Written[k] = v
		}
		for k, v := range file.Programming {
			merged.Programming[k] = v
		}
	}
	for k, v := range o.Written {
		merged.Written[k] = v
	}
	for k, v := range o.Programming {
		merged.Programming[k] = v
	}
	return merged
}
