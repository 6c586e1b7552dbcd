package gsc

// Update advances the scheduler by dt seconds (spec.md §6 "update(dt) -> OK
// | Yield | Error | OOM"). It returns true ("Yield": more work pending) or
// false ("OK": no threads remain). A thread that errored is not itself
// reported here — spec.md §7 says a RuntimeError "marks the current thread
// Error; the embedder observes via update return or via inspection" — so a
// host that needs to know which thread failed and why should hold on to the
// *machine.Thread Call/CallMethod returned and check its State/Err fields,
// same as internal/maincmd's `run` command does.
func (ctx *Context) Update(dt float64) bool {
	pending := ctx.Scheduler.Update(dt)
	ctx.logf(1, "ctx=%s tick dt=%g pending=%t", ctx.ID, dt, pending)
	return pending
}
