// Package scripts runs an optional broadcaster-supplied Lua hook over chat
// messages before they are published. The script must define
//
//	function filter(name, text)
//	    return text, false
//	end
//
// returning the (possibly rewritten) text and a drop flag.
package scripts

import (
	"fmt"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

type Hook struct {
	// LState is not goroutine-safe; the pipeline is single-threaded but the
	// HTTP surface is not.
	lock  sync.Mutex
	state *lua.LState
}

func Load(path string) (*Hook, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	return New(string(src))
}

func New(src string) (*Hook, error) {
	state := lua.NewState()

	if err := state.DoString(src); err != nil {
		state.Close()

		return nil, fmt.Errorf("failed to load script: %w", err)
	}

	if _, ok := state.GetGlobal("filter").(*lua.LFunction); !ok {
		state.Close()

		return nil, fmt.Errorf("script does not define a filter function")
	}

	return &Hook{state: state}, nil
}

func (h *Hook) Close() {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.state.Close()
}

// Filter applies the hook to a chat message. It returns the rewritten text
// and whether the message should be dropped.
func (h *Hook) Filter(name, text string) (string, bool, error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if err := h.state.CallByParam(lua.P{
		Fn:      h.state.GetGlobal("filter"),
		NRet:    2,
		Protect: true,
	}, lua.LString(name), lua.LString(text)); err != nil {
		return "", false, fmt.Errorf("failed to call filter: %w", err)
	}

	filtered := h.state.Get(-2)
	drop := h.state.Get(-1)
	h.state.Pop(2)

	return filtered.String(), lua.LVAsBool(drop), nil
}
