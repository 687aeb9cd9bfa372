package promise

import (
	"testing"

	"github.com/esvm-go/esvm/internal/runtime"
)

func TestResolveFulfillsPendingReaction(t *testing.T) {
	realm := runtime.NewRealm()
	cap := NewCapability(realm)

	var got runtime.Value
	PerformPromiseThen(realm, cap.Promise, func(v runtime.Value) runtime.Completion {
		got = v
		return runtime.NormalCompletion(runtime.Undefined{})
	}, ThrowHandler, nil)

	Resolve(cap, runtime.NewStringFromGo("hello"))

	q := QueueOf(realm)
	if !q.Pending() {
		t.Fatal("expected the fulfill reaction to be queued after Resolve")
	}
	q.Drain()

	s, ok := got.(runtime.String)
	if !ok || s.String() != "hello" {
		t.Errorf("reaction ran with %#v, want String(\"hello\")", got)
	}
}

func TestRejectRunsRejectReaction(t *testing.T) {
	realm := runtime.NewRealm()
	cap := NewCapability(realm)

	var got runtime.Value
	PerformPromiseThen(realm, cap.Promise, IdentityHandler, func(v runtime.Value) runtime.Completion {
		got = v
		return runtime.NormalCompletion(runtime.Undefined{})
	}, nil)

	reason := realm.NewError("TypeError", "nope")
	Reject(cap, reason)
	QueueOf(realm).Drain()

	if got != runtime.Value(reason) {
		t.Errorf("reject reaction ran with %#v, want %#v", got, reason)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	realm := runtime.NewRealm()
	cap := NewCapability(realm)

	Resolve(cap, runtime.NewStringFromGo("first"))
	Resolve(cap, runtime.NewStringFromGo("second"))

	_, data, ok := IsPromise(cap.Promise)
	if !ok {
		t.Fatal("cap.Promise should carry promise data")
	}
	if data.State != Fulfilled {
		t.Fatalf("state = %v, want Fulfilled", data.State)
	}
	s, ok := data.Result.(runtime.String)
	if !ok || s.String() != "first" {
		t.Errorf("Result = %#v, want the first resolution's value", data.Result)
	}
}

func TestResolveSelfIsTypeErrorRejection(t *testing.T) {
	realm := runtime.NewRealm()
	cap := NewCapability(realm)

	Resolve(cap, cap.Promise)

	_, data, ok := IsPromise(cap.Promise)
	if !ok {
		t.Fatal("cap.Promise should carry promise data")
	}
	if data.State != Rejected {
		t.Fatalf("state = %v, want Rejected (chaining cycle)", data.State)
	}
}

func TestUnhandledRejectionSinkFiresWhenNoReactionAttached(t *testing.T) {
	realm := runtime.NewRealm()
	var sunk runtime.Value
	realm.UnhandledRejection = func(reason runtime.Value) { sunk = reason }

	cap := NewCapability(realm)
	reason := realm.NewError("RangeError", "out of range")
	Reject(cap, reason)

	QueueOf(realm).Drain()

	if sunk != runtime.Value(reason) {
		t.Errorf("UnhandledRejection sink received %#v, want %#v", sunk, reason)
	}
}

func TestUnhandledRejectionSinkSkippedWhenHandled(t *testing.T) {
	realm := runtime.NewRealm()
	fired := false
	realm.UnhandledRejection = func(reason runtime.Value) { fired = true }

	cap := NewCapability(realm)
	PerformPromiseThen(realm, cap.Promise, IdentityHandler, IdentityHandler, nil)
	Reject(cap, runtime.NewStringFromGo("handled"))

	QueueOf(realm).Drain()

	if fired {
		t.Error("UnhandledRejection sink should not fire when a reaction was attached")
	}
}

func TestPerformPromiseThenOnAlreadyFulfilledPromiseQueuesImmediately(t *testing.T) {
	realm := runtime.NewRealm()
	cap := NewCapability(realm)
	Resolve(cap, runtime.NewStringFromGo("already done"))

	var got runtime.Value
	PerformPromiseThen(realm, cap.Promise, func(v runtime.Value) runtime.Completion {
		got = v
		return runtime.NormalCompletion(runtime.Undefined{})
	}, ThrowHandler, nil)

	QueueOf(realm).Drain()

	s, ok := got.(runtime.String)
	if !ok || s.String() != "already done" {
		t.Errorf("got %#v, want String(\"already done\")", got)
	}
}

func TestQueueDrainRunsJobsEnqueuedDuringDrain(t *testing.T) {
	q := NewQueue()
	var order []int
	q.Enqueue(func() {
		order = append(order, 1)
		q.Enqueue(func() { order = append(order, 2) })
	})
	q.Drain()

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestQueueDrainCountedInvokesCallbackPerJob(t *testing.T) {
	q := NewQueue()
	n := 0
	q.Enqueue(func() {})
	q.Enqueue(func() {})
	q.DrainCounted(func() { n++ })

	if n != 2 {
		t.Errorf("onJob invoked %d times, want 2", n)
	}
}

func TestPromiseResolveReturnsSamePromiseUnchanged(t *testing.T) {
	realm := runtime.NewRealm()
	cap := NewCapability(realm)
	got := PromiseResolve(realm, cap.Promise)
	if got != cap.Promise {
		t.Error("PromiseResolve should return an existing promise unchanged")
	}
}
