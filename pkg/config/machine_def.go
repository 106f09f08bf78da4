package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MachineDef 声明式状态机定义（YAML）
// 规则按声明顺序求值，第一条 when 为真的规则生效；
// when / to 是由脚本引擎求值的表达式。
type MachineDef struct {
	Name    string    `yaml:"name"`
	Initial string    `yaml:"initial"`
	Rules   []RuleDef `yaml:"rules"`
}

// RuleDef 单条转换规则
type RuleDef struct {
	Name string `yaml:"name"`
	When string `yaml:"when"` // 返回布尔值的表达式
	To   string `yaml:"to"`   // 返回目标状态字符串的表达式
}

// LoadMachineDef 从YAML文件加载状态机定义
func LoadMachineDef(path string) (*MachineDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read machine definition %s: %w", path, err)
	}
	def, err := ParseMachineDef(data)
	if err != nil {
		return nil, fmt.Errorf("machine definition %s: %w", path, err)
	}
	return def, nil
}

// ParseMachineDef 解析并验证状态机定义
func ParseMachineDef(data []byte) (*MachineDef, error) {
	var def MachineDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse machine YAML: %w", err)
	}
	if def.Initial == "" {
		return nil, fmt.Errorf("initial state is required")
	}
	if len(def.Rules) == 0 {
		return nil, fmt.Errorf("at least one rule is required")
	}
	for i := range def.Rules {
		r := &def.Rules[i]
		if r.Name == "" {
			r.Name = fmt.Sprintf("rule-%d", i)
		}
		if r.When == "" || r.To == "" {
			return nil, fmt.Errorf("rule %d (%s): when and to are required", i, r.Name)
		}
	}
	return &def, nil
}
