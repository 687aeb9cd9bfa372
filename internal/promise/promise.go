// Package promise implements ECMA-262's promise capability records,
// the Resolve/Reject/Fulfill procedures, PerformPromiseThen, and the
// microtask queue that drains reactions between host macro-steps.
// The reaction/job split mirrors the spec's own
// PromiseReactionJob / PromiseResolveThenableJob abstract closures instead
// of inventing a different shape.
package promise

import "github.com/esvm-go/esvm/internal/runtime"

// State is a promise's settlement state: pending, fulfilled, or
// rejected.
type State int

const (
	Pending State = iota
	Fulfilled
	Rejected
)

// Data is the native slot a Promise object carries in its Obj.HostData,
// paralleling how builtins stash Map/Set/RegExp native state there.
type Data struct {
	State            State
	Result           runtime.Value
	FulfillReactions []*Reaction
	RejectReactions  []*Reaction
	IsHandled        bool
	alreadyResolved  bool
}

// IsPromise reports whether v is an object carrying promise native state.
func IsPromise(v runtime.Value) (*runtime.Obj, *Data, bool) {
	o, ok := v.(*runtime.Obj)
	if !ok {
		return nil, nil, false
	}
	d, ok := o.HostData.(*Data)
	return o, d, ok
}

// Handler runs a fulfill/reject reaction's registered callback against the
// settled value, returning its completion (Normal carries the handler's
// return value, Throw carries a thrown value — both per spec's
// PromiseReactionJob calling Call(handler, undefined, «argument») inside
// an implicit try/catch). Builtins wire this to invoke a JS callable;
// AsyncFunctionStart (internal/evaluator) wires it to resume a suspended
// coroutine directly, so neither side needs to know about the other's
// representation of "a function".
type Handler func(value runtime.Value) runtime.Completion

// Reaction is one entry of a promise's fulfill/reject reaction list.
// Capability is nil for "fire and forget" reactions (the await-continuation
// reactions ECMA-262 attaches directly to a promise, which settle nothing
// further — the handler itself decides what happens next).
type Reaction struct {
	Handler    Handler
	Capability *Capability
}

// Capability bundles a promise with its resolve/reject procedures
// (ECMA-262's PromiseCapability record).
type Capability struct {
	Promise *runtime.Obj
	Realm   *runtime.Realm
}

// Queue is the FIFO microtask queue, drained to empty between host
// macro-steps; no reaction interleaves with the synchronous body that
// enqueued it.
type Queue struct {
	jobs []func()
}

func NewQueue() *Queue { return &Queue{} }

// QueueOf fetches (creating if absent) the Queue stored on a realm's Jobs
// slot.
func QueueOf(realm *runtime.Realm) *Queue {
	if realm.Jobs == nil {
		realm.Jobs = NewQueue()
	}
	return realm.Jobs.(*Queue)
}

// Enqueue schedules job to run at the next microtask-queue drain step.
func (q *Queue) Enqueue(job func()) {
	q.jobs = append(q.jobs, job)
}

// Drain runs queued jobs FIFO until the queue is empty, including jobs
// enqueued by jobs that ran earlier in the same drain (ECMA-262 testable
// property: "the number of reactions that run equals the number enqueued
// at drain start plus any enqueued during the drain itself").
func (q *Queue) Drain() {
	for len(q.jobs) > 0 {
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		job()
	}
}

// Pending reports whether any microtask remains queued.
func (q *Queue) Pending() bool { return len(q.jobs) > 0 }

// DrainCounted is Drain with a callback invoked immediately before each job
// runs, letting a host (pkg/esvm's metrics) count microtasks processed
// without this package exposing its job slice.
func (q *Queue) DrainCounted(onJob func()) {
	for len(q.jobs) > 0 {
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		if onJob != nil {
			onJob()
		}
		job()
	}
}

// NewPromiseObject allocates a pending promise backed by realm's
// %Promise.prototype% intrinsic (falls back to no prototype pre-assembly,
// matching Realm.NewError's bootstrap-safety comment).
func NewPromiseObject(realm *runtime.Realm) *runtime.Obj {
	proto := realm.Intrinsic("%Promise.prototype%")
	o := runtime.NewOrdinaryObject(proto)
	o.HostData = &Data{State: Pending}
	return o
}

// NewCapability implements ECMA-262's NewPromiseCapability(%Promise%):
// this module only ever constructs the built-in Promise shape (no
// subclassing support), which covers every scenario ECMA-262 names.
func NewCapability(realm *runtime.Realm) *Capability {
	return &Capability{Promise: NewPromiseObject(realm), Realm: realm}
}

// Resolve implements ECMA-262's Resolve(v) procedure: same-promise is a
// TypeError cycle rejection, a thenable schedules a resolution job,
// anything else fulfills immediately.
func Resolve(cap *Capability, v runtime.Value) {
	_, data, _ := IsPromise(cap.Promise)
	if data.alreadyResolved {
		return
	}
	if p, _, ok := IsPromise(v); ok && p == cap.Promise {
		data.alreadyResolved = true
		rejectSettled(cap.Realm, cap.Promise, data, cap.Realm.NewError("TypeError", "chaining cycle detected for promise"))
		return
	}
	thenFn, isThenable := thenableThen(v)
	if !isThenable {
		data.alreadyResolved = true
		fulfillSettled(cap.Realm, cap.Promise, data, v)
		return
	}
	data.alreadyResolved = true
	q := QueueOf(cap.Realm)
	q.Enqueue(func() {
		runThenableResolution(cap.Realm, cap, v, thenFn)
	})
}

// Reject implements ECMA-262's Reject(reason) procedure.
func Reject(cap *Capability, reason runtime.Value) {
	_, data, _ := IsPromise(cap.Promise)
	if data.alreadyResolved {
		return
	}
	data.alreadyResolved = true
	rejectSettled(cap.Realm, cap.Promise, data, reason)
}

func thenableThen(v runtime.Value) (*runtime.Obj, bool) {
	o, ok := v.(*runtime.Obj)
	if !ok {
		return nil, false
	}
	then, ok := o.Get(runtime.StringKey("then")).(*runtime.Obj)
	if !ok || !then.IsCallable() {
		return nil, false
	}
	return then, true
}

// runThenableResolution is ECMA-262's PromiseResolveThenableJob: calls
// then(resolve, reject) against the thenable, trapping a synchronous
// throw from `then` itself as a rejection.
func runThenableResolution(realm *runtime.Realm, cap *Capability, thenable runtime.Value, then *runtime.Obj) {
	already := false
	resolveFn := nativeCallable(realm, func(args []runtime.Value) runtime.Completion {
		if already {
			return runtime.NormalCompletion(runtime.Undefined{})
		}
		already = true
		var v runtime.Value = runtime.Undefined{}
		if len(args) > 0 {
			v = args[0]
		}
		Resolve(cap, v)
		return runtime.NormalCompletion(runtime.Undefined{})
	})
	rejectFn := nativeCallable(realm, func(args []runtime.Value) runtime.Completion {
		if already {
			return runtime.NormalCompletion(runtime.Undefined{})
		}
		already = true
		var v runtime.Value = runtime.Undefined{}
		if len(args) > 0 {
			v = args[0]
		}
		Reject(cap, v)
		return runtime.NormalCompletion(runtime.Undefined{})
	})
	c := then.Fn.Call(thenable, []runtime.Value{resolveFn, rejectFn})
	if c.Type == runtime.Throw && !already {
		already = true
		Reject(cap, c.Value)
	}
}

// nativeCallable wraps a Go closure as a minimal callable *runtime.Obj,
// used only for the internal resolve/reject functions passed to a
// thenable's `then` — never exposed to script code directly.
func nativeCallable(realm *runtime.Realm, fn func(args []runtime.Value) runtime.Completion) *runtime.Obj {
	o := runtime.NewOrdinaryObject(realm.Intrinsic("%Function.prototype%"))
	o.Kind = runtime.KindFunction
	o.Fn = &runtime.FunctionSlots{
		Call: func(this runtime.Value, args []runtime.Value) runtime.Completion { return fn(args) },
	}
	return o
}

func fulfillSettled(realm *runtime.Realm, p *runtime.Obj, data *Data, value runtime.Value) {
	data.State = Fulfilled
	data.Result = value
	reactions := data.FulfillReactions
	data.FulfillReactions, data.RejectReactions = nil, nil
	triggerReactions(realm, reactions, value)
}

func rejectSettled(realm *runtime.Realm, p *runtime.Obj, data *Data, reason runtime.Value) {
	data.State = Rejected
	data.Result = reason
	reactions := data.RejectReactions
	data.FulfillReactions, data.RejectReactions = nil, nil
	if len(reactions) == 0 && realm.UnhandledRejection != nil {
		q := QueueOf(realm)
		q.Enqueue(func() {
			if !data.IsHandled {
				realm.UnhandledRejection(reason)
			}
		})
	}
	triggerReactions(realm, reactions, reason)
}

func triggerReactions(realm *runtime.Realm, reactions []*Reaction, value runtime.Value) {
	q := QueueOf(realm)
	for _, r := range reactions {
		r := r
		q.Enqueue(func() { runReactionJob(realm, r, value) })
	}
}

func runReactionJob(realm *runtime.Realm, r *Reaction, value runtime.Value) {
	c := r.Handler(value)
	if r.Capability == nil {
		return
	}
	if c.Type == runtime.Throw {
		Reject(r.Capability, c.Value)
	} else {
		Resolve(r.Capability, c.Value)
	}
}

// PerformPromiseThen implements ECMA-262's PerformPromiseThen: attaches
// onFulfilled/onRejected reactions (settling resultCapability, which may
// be nil for fire-and-forget attachment) to p, or enqueues them
// immediately if p is already settled.
func PerformPromiseThen(realm *runtime.Realm, p *runtime.Obj, onFulfilled, onRejected Handler, resultCapability *Capability) {
	_, data, ok := IsPromise(p)
	if !ok {
		return
	}
	data.IsHandled = true
	fulfillReaction := &Reaction{Handler: onFulfilled, Capability: resultCapability}
	rejectReaction := &Reaction{Handler: onRejected, Capability: resultCapability}
	switch data.State {
	case Pending:
		data.FulfillReactions = append(data.FulfillReactions, fulfillReaction)
		data.RejectReactions = append(data.RejectReactions, rejectReaction)
	case Fulfilled:
		value := data.Result
		q := QueueOf(realm)
		q.Enqueue(func() { runReactionJob(realm, fulfillReaction, value) })
	case Rejected:
		reason := data.Result
		q := QueueOf(realm)
		q.Enqueue(func() { runReactionJob(realm, rejectReaction, reason) })
	}
}

// PromiseResolve implements spec's Promise.resolve(x) abstract operation:
// an existing promise of this realm's shape is returned as-is, anything
// else is wrapped in a newly fulfilled-or-thenable-tracking capability.
func PromiseResolve(realm *runtime.Realm, x runtime.Value) *runtime.Obj {
	if p, _, ok := IsPromise(x); ok {
		return p
	}
	cap := NewCapability(realm)
	Resolve(cap, x)
	return cap.Promise
}

// IdentityHandler and ThrowHandler implement the default pass-through
// behavior PerformPromiseThen's spec text uses when `.then()` is called
// with a non-callable (or omitted) argument.
func IdentityHandler(v runtime.Value) runtime.Completion { return runtime.NormalCompletion(v) }
func ThrowHandler(v runtime.Value) runtime.Completion    { return runtime.ThrowCompletion(v) }
