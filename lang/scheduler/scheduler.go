// Package scheduler drives the cooperative round-robin tick loop described
// in spec.md §4.5/§5: a single Update(dt) call advances a global clock,
// wakes any WaitingTime thread whose deadline has passed, resumes every
// Runnable thread, and — only once a full pass makes no further progress —
// wakes WaitingFrameEnd waiters so they run strictly after everything else
// in the tick.
//
// Scheduler owns the one piece of state lang/machine deliberately has no
// notion of: the clock, and the absolute Deadline a WAIT's relative duration
// becomes. lang/machine owns the thread list's actual contents (the
// machine.Thread values); this package only owns when each one gets to run.
package scheduler

import (
	"sort"

	"github.com/riicchhaarrd/libgsc/lang/machine"
)

// Scheduler ties a Machine's dispatch loop to a clock and the set of live
// threads. It implements machine.ThreadLister so the machine's endon/notify
// natives can see every live thread without lang/machine importing this
// package.
type Scheduler struct {
	m       *machine.Machine
	quota   int
	clock   float64
	threads []*machine.Thread

	// pending holds threads spawned since the last Update call returned.
	// They are merged into threads at the start of the next Update, never
	// mid-tick: spec.md §4.5 "the new thread becomes Runnable at the end of
	// the current scheduler tick" means it does not run, and is not yet a
	// candidate for endon/notify matching, within the tick that spawned it.
	pending []*machine.Thread

	// seq is the becoming-runnable counter: markRunnable increments it and
	// stamps the result onto the thread it just woke, so runRunnable can
	// resume threads in the order they actually became runnable (spec.md
	// §5) instead of s.threads' incidental creation order.
	seq int64
}

// markRunnable transitions th to Runnable and stamps it with the next
// becoming-runnable sequence number. This is the only place any thread's
// State is set to Runnable from within this package; machine.Machine's own
// notify wake calls back into it via the MarkRunnable hook so both sides of
// the package boundary share one FIFO counter.
func (s *Scheduler) markRunnable(th *machine.Thread) {
	s.seq++
	th.RunnableSeq = s.seq
	th.State = machine.Runnable
}

// New wires a fresh Scheduler to m (setting m.Lister and m.Spawn) and
// returns it. quota is the per-tick, per-thread instruction budget handed to
// machine.Run (spec.md §9 Open Questions "per-tick instruction quota");
// quota <= 0 means unlimited, i.e. every thread runs to its next suspension
// point or completion every tick regardless of how many instructions that
// takes.
func New(m *machine.Machine, quota int) *Scheduler {
	s := &Scheduler{m: m, quota: quota}
	m.Lister = s
	m.Spawn = s.AddThread
	m.MarkRunnable = s.markRunnable
	return s
}

// Threads implements machine.ThreadLister. Threads spawned since the last
// Update call are deliberately not visible here yet; see the pending field.
func (s *Scheduler) Threads() []*machine.Thread { return s.threads }

// AddThread registers a newly created thread for eligibility starting the
// next Update call. This is also machine.Machine's Spawn hook, called by a
// threaded CALL or by the embedding API's call/call_method.
func (s *Scheduler) AddThread(th *machine.Thread) {
	s.pending = append(s.pending, th)
}

// Update advances the clock by dt and drains every thread that can make
// progress this tick, per spec.md §4.5's numbered scheduling algorithm. It
// returns true iff any thread remains that isn't Done or in ErrorState
// ("Yield" in the embedding API's terms), false once every thread has
// terminated ("OK").
func (s *Scheduler) Update(dt float64) bool {
	// A pending thread becomes runnable right here, at the top of the tick
	// it is first visible in (spec.md §4.5 "becomes Runnable at the end of
	// the current scheduler tick") — stamped before wakeTimers/
	// wakeFrameEndWaiters below so it resumes ahead of anything woken later
	// in this same tick, per spec.md §5 FIFO ordering.
	for _, th := range s.pending {
		s.markRunnable(th)
	}
	s.threads = append(s.threads, s.pending...)
	s.pending = nil
	s.clock += dt

	for {
		progressed := s.wakeTimers()
		progressed = s.runRunnable() || progressed
		if progressed {
			continue
		}
		if !s.wakeFrameEndWaiters() {
			break
		}
	}

	return s.reapAndCheckPending()
}

// wakeTimers promotes every WaitingTime thread whose deadline has elapsed to
// Runnable (spec.md §4.5 step 1).
func (s *Scheduler) wakeTimers() bool {
	woke := false
	for _, th := range s.threads {
		if th.State == machine.WaitingTime && th.Deadline <= s.clock {
			s.markRunnable(th)
			woke = true
		}
	}
	return woke
}

// runRunnable resumes every currently Runnable thread once, in ascending
// RunnableSeq order — i.e. FIFO order of becoming runnable (spec.md §5),
// not s.threads' incidental creation/merge order. Those two orders
// coincide only as long as every thread becomes runnable at creation and
// nothing is ever rewoken out of order; a thread merged from pending at
// the top of this tick, or re-woken by a timer, is stamped with a fresh
// seq at the moment it actually becomes runnable (see markRunnable), so
// sorting by that stamp is what makes an earlier-queued thread resume
// before a later-timer-woken one even when it sits later in s.threads.
//
// A thread woken mid-pass by another thread's notify gets a seq higher
// than every seq already captured in this pass's sorted snapshot, so it
// runs on the next pass of this same Update call rather than interrupting
// the current scan — still within the same tick, per spec.md §4.6.
//
// A thread newly spawned by a call running in this pass stays in pending,
// invisible to s.threads until the next Update call, so it correctly
// waits for the next tick per spec.md §4.5 "Threaded calls".
func (s *Scheduler) runRunnable() bool {
	var runnable []*machine.Thread
	for _, th := range s.threads {
		if th.State == machine.Runnable {
			runnable = append(runnable, th)
		}
	}
	if len(runnable) == 0 {
		return false
	}
	sort.Slice(runnable, func(i, j int) bool { return runnable[i].RunnableSeq < runnable[j].RunnableSeq })

	for _, th := range runnable {
		if th.State != machine.Runnable {
			// woken again (or reaped) by an earlier thread's notify in this
			// very pass; its current state already reflects that.
			continue
		}
		s.m.Run(th, s.quota)
		if th.State == machine.WaitingTime {
			th.Deadline = s.clock + th.WaitSeconds
		}
	}
	return true
}

// wakeFrameEndWaiters promotes every WaitingFrameEnd thread to Runnable.
// Only called once wakeTimers/runRunnable have made no further progress
// this tick, so these waiters run strictly after everything else (spec.md
// §5 "woken strictly after all other Runnable threads ... have yielded or
// completed").
func (s *Scheduler) wakeFrameEndWaiters() bool {
	woke := false
	for _, th := range s.threads {
		if th.State == machine.WaitingFrameEnd {
			s.markRunnable(th)
			woke = true
		}
	}
	return woke
}

// reapAndCheckPending drops every thread that has reached Done or
// ErrorState (they need no further scheduling) and reports whether any
// thread remains (the embedding API's update() "Yield" vs "OK").
func (s *Scheduler) reapAndCheckPending() bool {
	live := s.threads[:0]
	pending := false
	for _, th := range s.threads {
		if th.State == machine.Done || th.State == machine.ErrorState {
			continue
		}
		live = append(live, th)
		pending = true
	}
	s.threads = live
	return pending || len(s.pending) > 0
}
