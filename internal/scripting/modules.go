package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/soma-satoro/dies/internal/game/dice"
)

// RegisterModules registers all engine.* Lua tables into L:
//
//	engine.log.debug/info/warn/error(msg)
//	engine.roll_pool(n, difficulty) -> {rolls, successes, ones, net, outcome}
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	logTbl := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, fn := range levels {
		fn := fn
		L.SetField(logTbl, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	L.SetField(engine, "log", logTbl)
	L.SetField(engine, "roll_pool", L.NewFunction(m.luaRollPool))

	L.SetGlobal("engine", engine)
}

// luaRollPool rolls n dice against difficulty. An invalid difficulty or a
// pool above dice.MaxPool raises a Lua error.
func (m *Manager) luaRollPool(L *lua.LState) int {
	n := L.CheckInt(1)
	diff := L.OptInt(2, dice.DefaultDifficulty)
	r, err := m.roller.RollPool(n, diff)
	if err != nil {
		L.RaiseError("roll_pool: %s", err.Error())
		return 0
	}
	rolls := L.NewTable()
	for _, d := range r.Rolls {
		rolls.Append(lua.LNumber(d))
	}
	out := L.NewTable()
	L.SetField(out, "rolls", rolls)
	L.SetField(out, "successes", lua.LNumber(r.Successes))
	L.SetField(out, "ones", lua.LNumber(r.Ones))
	L.SetField(out, "net", lua.LNumber(r.Net()))
	L.SetField(out, "outcome", lua.LString(r.Outcome().String()))
	L.Push(out)
	return 1
}
