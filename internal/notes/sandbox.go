// Package notes renders release notes with a user-supplied Lua script run
// in a restricted interpreter.
package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const (
	DefaultTimeout    = 2 * time.Second
	defaultRegistry   = 256
	maxRegistryGrowth = 4096
)

var (
	// ErrTimeout is returned when the script runs past its deadline.
	ErrTimeout = errors.New("notes script timeout")
	// ErrNotString is returned when the script does not return a string.
	ErrNotString = errors.New("notes script must return a string")
)

// Sandbox limits a notes script.
type Sandbox struct {
	Timeout time.Duration
}

func newSandboxState() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:    true,
		RegistrySize:    defaultRegistry,
		RegistryMaxSize: maxRegistryGrowth,
	})
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	openLib(lua.BaseLibName, lua.OpenBase)
	openLib(lua.TabLibName, lua.OpenTable)
	openLib(lua.StringLibName, lua.OpenString)
	openLib(lua.MathLibName, lua.OpenMath)
	// base pulls in loaders that can touch the filesystem.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// Render runs code with the global `release` bound to data and returns the
// string it produces. Code that compiles as a single expression is
// evaluated as one; anything else runs as a chunk that must return.
func (s Sandbox) Render(ctx context.Context, code string, data map[string]any) (string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	L := newSandboxState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	L.SetContext(ctx)

	L.SetGlobal("release", toLValue(L, data))

	fn, err := load(L, code)
	if err != nil {
		return "", fmt.Errorf("notes script: %v", err)
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		if ctx.Err() != nil {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("notes script: %v", err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	str, ok := ret.(lua.LString)
	if !ok {
		return "", ErrNotString
	}
	return string(str), nil
}

// toLValue converts a Go value to a Lua value.
func toLValue(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(x)
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(float64(x))
	case float64:
		return lua.LNumber(x)
	case []string:
		tbl := L.NewTable()
		for i, s := range x {
			tbl.RawSetInt(i+1, lua.LString(s))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		for k, v2 := range x {
			tbl.RawSetString(k, toLValue(L, v2))
		}
		return tbl
	case []any:
		tbl := L.NewTable()
		for i, v2 := range x {
			tbl.RawSetInt(i+1, toLValue(L, v2))
		}
		return tbl
	case []map[string]any:
		tbl := L.NewTable()
		for i, v2 := range x {
			tbl.RawSetInt(i+1, toLValue(L, v2))
		}
		return tbl
	default:
		return lua.LNil
	}
}

// load compiles code as an expression first, then as a chunk. The newline
// keeps a trailing line comment from swallowing the closing paren.
func load(L *lua.LState, code string) (*lua.LFunction, error) {
	if fn, err := L.LoadString("return (" + code + "\n)"); err == nil {
		return fn, nil
	}
	return L.LoadString(code)
}
