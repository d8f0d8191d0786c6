package scripting

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"go.uber.org/zap"

	"github.com/soma-satoro/dies/internal/game/stat"
)

// DeriverPrefix marks a Lua global function as a stat deriver:
// derive_soak(get) computes pools/derived/Soak.
const DeriverPrefix = "derive_"

// DerivedType is the stat type Lua derivers write under the pools category.
const DerivedType = "derived"

// StatName maps a deriver hook name to the stat it writes:
// "derive_health_bonus" -> "Health Bonus".
func StatName(hook string) string {
	words := strings.ReplaceAll(strings.TrimPrefix(hook, DeriverPrefix), "_", " ")
	return cases.Title(language.English).String(words)
}

// DerivedKey returns the key a deriver named stat writes.
func DerivedKey(name string) stat.Key {
	return stat.Key{Category: stat.Pools, Type: DerivedType, Name: name}
}

// luaDeriver runs one derive_<stat> hook. The hook receives get(name), which
// returns the effective number of a stored stat or 0, and must return a
// number. Any other result leaves the derived stat unchanged.
type luaDeriver struct {
	m     *Manager
	scope string
	hook  string
	key   stat.Key
}

func (d *luaDeriver) Name() string { return "lua:" + d.hook }

// Triggered fires on any change outside the derived stats.
func (d *luaDeriver) Triggered(k stat.Key) bool {
	return k.Category != stat.Pools || k.Type != DerivedType
}

func (d *luaDeriver) Derive(r stat.Reader) []stat.Change {
	ret, _ := d.m.call(d.scope, d.hook, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{L.NewFunction(func(L *lua.LState) int {
			L.Push(lua.LNumber(effective(r, L.CheckString(1))))
			return 1
		})}
	})
	n, ok := ret.(lua.LNumber)
	if !ok {
		if ret != lua.LNil {
			d.m.logger.Warn("scripting: deriver returned a non-number",
				zap.String("hook", d.hook),
				zap.String("type", ret.Type().String()),
			)
		}
		return nil
	}
	return []stat.Change{{Op: stat.WriteBoth, Key: d.key, Value: stat.Int(int(n))}}
}

// effective returns the effective number of the first stored stat named name.
func effective(r stat.Reader, name string) int {
	keys := r.KeysNamed(strings.TrimSpace(name))
	if len(keys) == 0 {
		return 0
	}
	e, _ := r.Lookup(keys[0])
	n, _ := e.Effective().Int()
	return n
}

// Derivers returns one stat.Deriver per derive_<stat> function visible from
// scope, in name order.
//
// Postcondition: Each deriver writes only DerivedKey(StatName(hook)).
func (m *Manager) Derivers(scope string) []stat.Deriver {
	hooks := m.Hooks(scope, DeriverPrefix)
	out := make([]stat.Deriver, 0, len(hooks))
	for _, h := range hooks {
		out = append(out, &luaDeriver{m: m, scope: scope, hook: h, key: DerivedKey(StatName(h))})
	}
	return out
}
