// Package suspend provides the restartable-sequence primitive ECMA-262
// calls for: an evaluation that suspends at `yield`/`await` and resumes
// later with an injected value, such that "injecting a completion into a
// paused computation produces exactly the same result as if that
// completion had been returned synchronously at the suspension site"
// (ECMA-262 design notes). Go has no first-class continuations, so this is
// built as a goroutine handing control back and forth over two unbuffered
// channels — the idiomatic Go answer for a cooperative, single-threaded-
// at-a-time coroutine.
//
// Only one side runs at any instant: the body goroutine blocks in Yield
// while the driver goroutine runs, and vice versa. This matches ECMA-262's
// "exactly one computation runs at any instant" even though two OS-level
// goroutines exist, because the channel handoff is a strict baton pass.
package suspend

// Signal is what a body reports back to its driver: either a suspension
// token (Done false) or a final result (Done true).
type Signal struct {
	Done   bool
	Token  any
	Result any
}

// Coroutine wraps one body goroutine. Start creates it suspended before
// its first instruction; the first Resume call is what actually begins
// running body.
type Coroutine struct {
	toBody   chan any
	fromBody chan Signal
	finished bool
}

// Start launches body in its own goroutine. body does not run until the
// first Resume call — mirroring a generator's suspendedStart state, where
// GeneratorStart captures the computation but nothing executes until
// next() is first called. The value passed to that first Resume is handed
// to body as `first`, so a caller resuming a never-started generator with
// a throw/return completion (spec: GeneratorResume on a suspendedStart
// generator) can act on it before running a single statement of the body.
func Start(body func(first any) any) *Coroutine {
	c := &Coroutine{toBody: make(chan any), fromBody: make(chan Signal)}
	go func() {
		first := <-c.toBody
		result := body(first)
		c.fromBody <- Signal{Done: true, Result: result}
	}()
	return c
}

// Yield is called BY the body goroutine (however deep in its call stack)
// to suspend at token, blocking until the driver's next Resume call
// injects a value. Calling Yield from outside the body goroutine is a
// programming error (undefined behavior: it would starve both sides).
func (c *Coroutine) Yield(token any) any {
	c.fromBody <- Signal{Token: token}
	return <-c.toBody
}

// Resume is called BY the driver to inject a value into the paused body
// and run until the next suspension or completion.
func (c *Coroutine) Resume(injected any) Signal {
	if c.finished {
		return Signal{Done: true}
	}
	c.toBody <- injected
	sig := <-c.fromBody
	if sig.Done {
		c.finished = true
	}
	return sig
}

// Finished reports whether the body has already run to completion.
func (c *Coroutine) Finished() bool { return c.finished }
