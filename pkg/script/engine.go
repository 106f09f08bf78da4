// Package script 提供基于 gopher-lua 的表达式求值引擎
//
// 声明式配置（例如动画状态机规则）中的条件和目标写成 Lua 表达式，
// 每个表达式编译一次，求值时在独立的环境表中读取变量，未定义的名字回退到全局表（辅助函数）。
// 引擎只能在单个 goroutine（游戏循环）中使用。
package script

import (
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Env 表达式可见的变量
// 支持 bool、整数、浮点数、字符串、time.Duration（按秒）和 nil。
type Env map[string]any

// Expr 已编译的表达式
type Expr struct {
	src string
	fn  *lua.LFunction
}

// String 返回表达式源码
func (x *Expr) String() string {
	return x.src
}

// Engine 包装单个 Lua 虚拟机
type Engine struct {
	vm      *lua.LState
	envMeta *lua.LTable
	log     *zap.Logger
}

// NewEngine 创建引擎，只打开 base/string/math/table 库并安装辅助函数
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
		{lua.TabLibName, lua.OpenTable},
	} {
		vm.Push(vm.NewFunction(lib.open))
		vm.Push(lua.LString(lib.name))
		vm.Call(1, 0)
	}

	e := &Engine{vm: vm, log: log}

	// 环境表的元表：找不到的名字回退到全局表
	e.envMeta = vm.NewTable()
	e.envMeta.RawSetString("__index", vm.G.Global)

	e.Register("starts_with", luaStartsWith)
	e.Register("suffix", luaSuffix)
	return e
}

// Register 注册全局辅助函数
func (e *Engine) Register(name string, fn lua.LGFunction) {
	e.vm.SetGlobal(name, e.vm.NewFunction(fn))
}

// Close 关闭虚拟机
func (e *Engine) Close() {
	e.vm.Close()
}

// Compile 编译表达式
func (e *Engine) Compile(expr string) (*Expr, error) {
	src := strings.TrimSpace(expr)
	if src == "" {
		return nil, fmt.Errorf("compile: empty expression")
	}
	fn, err := e.vm.LoadString("return " + src)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	return &Expr{src: src, fn: fn}, nil
}

// eval 在 env 中求值表达式并返回结果
func (e *Engine) eval(x *Expr, env Env) (lua.LValue, error) {
	t := e.vm.NewTable()
	for name, v := range env {
		lv, err := toLValue(v)
		if err != nil {
			return lua.LNil, fmt.Errorf("eval %q: variable %s: %w", x.src, name, err)
		}
		t.RawSetString(name, lv)
	}
	e.vm.SetMetatable(t, e.envMeta)
	e.vm.SetFEnv(x.fn, t)

	if err := e.vm.CallByParam(lua.P{
		Fn:      x.fn,
		NRet:    1,
		Protect: true,
	}); err != nil {
		return lua.LNil, fmt.Errorf("eval %q: %w", x.src, err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return result, nil
}

// EvalBool 求值并按 Lua 真值规则转换为 bool（只有 nil 和 false 为假）
func (e *Engine) EvalBool(x *Expr, env Env) (bool, error) {
	v, err := e.eval(x, env)
	if err != nil {
		return false, err
	}
	return lua.LVAsBool(v), nil
}

// EvalString 求值并要求结果为字符串
func (e *Engine) EvalString(x *Expr, env Env) (string, error) {
	v, err := e.eval(x, env)
	if err != nil {
		return "", err
	}
	s, ok := v.(lua.LString)
	if !ok {
		return "", fmt.Errorf("eval %q: expected string, got %s", x.src, v.Type())
	}
	return string(s), nil
}

func toLValue(v any) (lua.LValue, error) {
	switch val := v.(type) {
	case nil:
		return lua.LNil, nil
	case lua.LValue:
		return val, nil
	case bool:
		return lua.LBool(val), nil
	case int:
		return lua.LNumber(val), nil
	case int64:
		return lua.LNumber(val), nil
	case float64:
		return lua.LNumber(val), nil
	case string:
		return lua.LString(val), nil
	case time.Duration:
		return lua.LNumber(val.Seconds()), nil
	default:
		return lua.LNil, fmt.Errorf("unsupported type %T", v)
	}
}

// starts_with(s, prefix)
func luaStartsWith(L *lua.LState) int {
	s := L.CheckString(1)
	prefix := L.CheckString(2)
	L.Push(lua.LBool(strings.HasPrefix(s, prefix)))
	return 1
}

// suffix(s) 返回第一个 '-' 之后的部分，没有 '-' 时返回空字符串
func luaSuffix(L *lua.LState) int {
	s := L.CheckString(1)
	_, after, _ := strings.Cut(s, "-")
	L.Push(lua.LString(after))
	return 1
}
