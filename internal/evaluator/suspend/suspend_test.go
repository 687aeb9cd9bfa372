package suspend

import "testing"

func TestCoroutineYieldAndResume(t *testing.T) {
	var seenFirst any
	var co *Coroutine
	co = Start(func(first any) any {
		seenFirst = first
		v1 := co.Yield("token-1")
		v2 := co.Yield("token-2")
		return v1.(int) + v2.(int)
	})

	sig := co.Resume("start")
	if sig.Done {
		t.Fatalf("first Resume should suspend at token-1, got Done=true")
	}
	if sig.Token != "token-1" {
		t.Errorf("Token = %v, want token-1", sig.Token)
	}
	if seenFirst != "start" {
		t.Errorf("first = %v, want \"start\"", seenFirst)
	}

	sig = co.Resume(10)
	if sig.Done {
		t.Fatalf("second Resume should suspend at token-2, got Done=true")
	}
	if sig.Token != "token-2" {
		t.Errorf("Token = %v, want token-2", sig.Token)
	}

	sig = co.Resume(32)
	if !sig.Done {
		t.Fatalf("third Resume should complete the body")
	}
	if sig.Result != 42 {
		t.Errorf("Result = %v, want 42", sig.Result)
	}
	if !co.Finished() {
		t.Error("Finished() = false after body returned")
	}
}

func TestCoroutineResumeAfterFinishIsNoop(t *testing.T) {
	co := Start(func(first any) any { return "done" })
	sig := co.Resume(nil)
	if !sig.Done || sig.Result != "done" {
		t.Fatalf("unexpected first signal: %+v", sig)
	}

	sig = co.Resume("ignored")
	if !sig.Done {
		t.Error("Resume on a finished coroutine should report Done")
	}
	if sig.Result != nil {
		t.Errorf("Resume on a finished coroutine should carry no result, got %v", sig.Result)
	}
}
