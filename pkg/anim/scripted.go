package anim

import (
	"fmt"

	"github.com/gonewx/gridworld/pkg/config"
	"github.com/gonewx/gridworld/pkg/grid"
	"github.com/gonewx/gridworld/pkg/script"
	lua "github.com/yuin/gopher-lua"
)

// LoadScriptedRules 把 YAML 状态机定义编译为规则
//
// when / to 表达式可以读取以下变量：
//
//	state, previous          当前状态 / 上一个状态（previous 只在 to 中可用）
//	walking, obstacle        是否正在行动 / 行动目标是否为障碍
//	facing                   朝向行动目标的方向，未行动时为 nil
//	hp, max_hp, time         生命值、最大生命值、当前时间（秒）
//	x, y, z                  当前格子坐标
//
// to 的结果必须能解析为状态。
func LoadScriptedRules(def *config.MachineDef, engine *script.Engine) ([]Rule, State, error) {
	initial, err := ParseState(def.Initial)
	if err != nil {
		return nil, State{}, fmt.Errorf("machine %s: initial: %w", def.Name, err)
	}

	engine.Register("facing_toward", luaFacingToward)

	rules := make([]Rule, 0, len(def.Rules))
	for _, rd := range def.Rules {
		when, err := engine.Compile(rd.When)
		if err != nil {
			return nil, State{}, fmt.Errorf("machine %s: rule %s: when: %w", def.Name, rd.Name, err)
		}
		to, err := engine.Compile(rd.To)
		if err != nil {
			return nil, State{}, fmt.Errorf("machine %s: rule %s: to: %w", def.Name, rd.Name, err)
		}
		rules = append(rules, scriptedRule(rd.Name, when, to, engine))
	}
	return rules, initial, nil
}

// scriptedRule 条件求值出错时视为匹配，由目标函数返回该错误，使其经由 Evaluate 报告
func scriptedRule(name string, when, to *script.Expr, engine *script.Engine) Rule {
	var whenErr error
	return Rule{
		Name: name,
		When: func(s State, d Data) bool {
			ok, err := engine.EvalBool(when, scriptEnv(s, nil, d))
			if err != nil {
				whenErr = err
				return true
			}
			return ok
		},
		To: func(s, previous State, d Data) (State, error) {
			if whenErr != nil {
				err := whenErr
				whenErr = nil
				return State{}, err
			}
			out, err := engine.EvalString(to, scriptEnv(s, &previous, d))
			if err != nil {
				return State{}, err
			}
			next, err := ParseState(out)
			if err != nil {
				if d.Walking == nil {
					return State{}, fmt.Errorf("%w (%v)", ErrMissingWalkData, err)
				}
				return State{}, err
			}
			return next, nil
		},
	}
}

func scriptEnv(s State, previous *State, d Data) script.Env {
	env := script.Env{
		"state":   s.String(),
		"walking": IsWalking(d.Walking, d.CurrentTime),
		"hp":      d.HP,
		"max_hp":  d.MaxHP,
		"time":    d.CurrentTime,
		"x":       d.WorldPos.X,
		"y":       d.WorldPos.Y,
		"z":       d.WorldPos.Z,
	}
	if previous != nil {
		env["previous"] = previous.String()
	}
	if d.Walking != nil {
		env["obstacle"] = d.Walking.TargetIsObstacle
		env["facing"] = FacingToward(d.WorldPos, d.Walking.TargetPos).String()
	}
	return env
}

// facing_toward(x1, y1, x2, y2)
func luaFacingToward(L *lua.LState) int {
	from := grid.C(L.CheckInt(1), L.CheckInt(2), 0)
	to := grid.C(L.CheckInt(3), L.CheckInt(4), 0)
	L.Push(lua.LString(FacingToward(from, to).String()))
	return 1
}
