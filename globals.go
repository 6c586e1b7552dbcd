package gsc

import "github.com/riicchhaarrd/libgsc/lang/machine"

// buildGlobals allocates the anonymous global object spec.md §6 describes
// ("Get/set named field on the anonymous global object; the well-known
// roots level, anim, game are pre-populated") and seeds it with the three
// roots the Machine already created. The roots themselves remain directly
// reachable as ctx.Machine.Level/Anim/Game (what LEVEL/ANIM/GAME opcodes
// push); this object exists purely as the embedding API's single named-field
// surface for host code that wants to read/write "a global" generically
// rather than asking for level/anim/game specifically.
func (ctx *Context) buildGlobals() *machine.Object {
	g := machine.NewObject()
	g.Set(ctx.Strings.MustIntern("level"), machine.ObjectVal(ctx.Machine.Level))
	g.Set(ctx.Strings.MustIntern("anim"), machine.ObjectVal(ctx.Machine.Anim))
	g.Set(ctx.Strings.MustIntern("game"), machine.ObjectVal(ctx.Machine.Game))
	return g
}

// Level, Anim, and Game return the three well-known global roots (spec.md
// §3 "Global roots").
func (ctx *Context) Level() *machine.Object { return ctx.Machine.Level }
func (ctx *Context) Anim() *machine.Object  { return ctx.Machine.Anim }
func (ctx *Context) Game() *machine.Object  { return ctx.Machine.Game }

// GetGlobal reads a named field off the anonymous global object (spec.md §6
// "Globals"). Fields other than level/anim/game only exist if SetGlobal put
// them there.
func (ctx *Context) GetGlobal(name string) (machine.Value, bool) {
	id := ctx.Strings.IDOf(name)
	if id < 0 {
		return machine.Value{}, false
	}
	return ctx.globals.Get(id)
}

// SetGlobal writes a named field on the anonymous global object (spec.md §6
// "Globals").
func (ctx *Context) SetGlobal(name string, v machine.Value) {
	id := ctx.Strings.MustIntern(name)
	ctx.globals.Set(id, v)
}
