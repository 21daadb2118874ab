package reactive

import (
	"testing"
)

func TestValueBasic(t *testing.T) {
	count := New(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}
}

func TestValueNotifiesInSubscriptionOrder(t *testing.T) {
	v := New(0)

	var order []string
	v.Subscribe(func(int) { order = append(order, "first") })
	v.Subscribe(func(int) { order = append(order, "second") })
	v.Subscribe(func(int) { order = append(order, "third") })

	v.Set(1)

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("notification %d: expected %q, got %q", i, want[i], order[i])
		}
	}
}

func TestValueEverySetNotifies(t *testing.T) {
	v := New(42)

	calls := 0
	v.Subscribe(func(int) { calls++ })

	// Setting an unchanged value still notifies (force-refresh semantics).
	v.Set(42)
	v.Set(42)
	if calls != 2 {
		t.Errorf("expected 2 notifications for unchanged sets, got %d", calls)
	}
}

func TestValueSubscriberReceivesNewValue(t *testing.T) {
	v := New("a")

	var got string
	v.Subscribe(func(s string) { got = s })

	v.Set("b")
	if got != "b" {
		t.Errorf("expected subscriber to receive %q, got %q", "b", got)
	}
	if v.Get() != "b" {
		t.Errorf("expected Get to return %q after Set, got %q", "b", v.Get())
	}
}

func TestValueUnsubscribe(t *testing.T) {
	v := New(0)

	calls := 0
	unsub := v.Subscribe(func(int) { calls++ })

	v.Set(1)
	unsub()
	v.Set(2)

	if calls != 1 {
		t.Errorf("expected 1 notification after unsubscribe, got %d", calls)
	}

	// A second unsubscribe is harmless.
	unsub()
	v.Set(3)
	if calls != 1 {
		t.Errorf("expected no further notifications, got %d", calls)
	}
}

func TestValueUnsubscribePreservesOrder(t *testing.T) {
	v := New(0)

	var order []string
	v.Subscribe(func(int) { order = append(order, "a") })
	unsubB := v.Subscribe(func(int) { order = append(order, "b") })
	v.Subscribe(func(int) { order = append(order, "c") })

	unsubB()
	v.Set(1)

	if len(order) != 2 || order[0] != "a" || order[1] != "c" {
		t.Errorf("expected [a c], got %v", order)
	}
}

func TestValueNotificationIteratesSnapshot(t *testing.T) {
	v := New(0)

	calls := 0
	v.Subscribe(func(int) {
		// Subscribing during notification must not affect this round.
		v.Subscribe(func(int) { calls += 100 })
	})
	v.Subscribe(func(int) { calls++ })

	v.Set(1)
	if calls != 1 {
		t.Errorf("expected late subscriber to be skipped this round, got calls=%d", calls)
	}
}

func TestValueReentrantSetDepthFirst(t *testing.T) {
	v := New(0)

	var seen []int
	v.Subscribe(func(n int) {
		if n == 1 {
			v.Set(2) // recursive set runs synchronously, depth-first
		}
	})
	v.Subscribe(func(n int) { seen = append(seen, n) })

	v.Set(1)

	// The recursive Set(2) completes (notifying both subscribers) before the
	// outer Set(1) resumes its snapshot, so the trailing subscriber sees 2
	// first and then the original 1.
	if len(seen) != 2 || seen[0] != 2 || seen[1] != 1 {
		t.Errorf("expected depth-first order [2 1], got %v", seen)
	}
	if v.Get() != 2 {
		t.Errorf("expected final value 2, got %d", v.Get())
	}
}

func TestMap(t *testing.T) {
	src := New(3)
	doubled := src.Map(func(n int) int { return n * 2 })

	if doubled.Get() != 6 {
		t.Errorf("expected initial derived value 6, got %d", doubled.Get())
	}

	src.Set(5)
	if doubled.Get() != 10 {
		t.Errorf("expected derived value 10 after source set, got %d", doubled.Get())
	}

	doubled.Dispose()
	src.Set(7)
	if doubled.Get() != 10 {
		t.Errorf("expected disposed derived value to stay 10, got %d", doubled.Get())
	}
}

func TestMapTo(t *testing.T) {
	src := New(4)
	label := MapTo(src, func(n int) string {
		if n%2 == 0 {
			return "even"
		}
		return "odd"
	})

	if label.Get() != "even" {
		t.Errorf("expected %q, got %q", "even", label.Get())
	}
	src.Set(5)
	if label.Get() != "odd" {
		t.Errorf("expected %q, got %q", "odd", label.Get())
	}
}

func TestFilterRetainsOnRejection(t *testing.T) {
	src := New(2)
	evens := src.Filter(func(n int) bool { return n%2 == 0 })

	notifications := 0
	evens.Subscribe(func(int) { notifications++ })

	src.Set(3) // rejected: no update, no notification
	if evens.Get() != 2 {
		t.Errorf("expected filter to retain 2 on rejected update, got %d", evens.Get())
	}
	if notifications != 0 {
		t.Errorf("expected no notifications on rejected update, got %d", notifications)
	}

	src.Set(8)
	if evens.Get() != 8 {
		t.Errorf("expected filter to pass 8, got %d", evens.Get())
	}
	if notifications != 1 {
		t.Errorf("expected 1 notification, got %d", notifications)
	}
}

func TestFilterInitialValue(t *testing.T) {
	src := New(3)
	evens := src.Filter(func(n int) bool { return n%2 == 0 })

	// Current value fails the predicate, so the derived value starts at zero.
	if evens.Get() != 0 {
		t.Errorf("expected zero initial value, got %d", evens.Get())
	}
}

func TestComputed(t *testing.T) {
	a := New(1)
	b := New(2)
	sum := Computed(func() int {
		return a.Get() + b.Get()
	}, a, b)

	if sum.Get() != 3 {
		t.Errorf("expected 3, got %d", sum.Get())
	}

	a.Set(10)
	if sum.Get() != 12 {
		t.Errorf("expected 12 after dependency change, got %d", sum.Get())
	}

	b.Set(5)
	if sum.Get() != 15 {
		t.Errorf("expected 15, got %d", sum.Get())
	}

	sum.Dispose()
	a.Set(100)
	if sum.Get() != 15 {
		t.Errorf("expected disposed computed to stay 15, got %d", sum.Get())
	}
}

func TestBindInvokesImmediately(t *testing.T) {
	v := New("initial")

	var applied []string
	unbind := v.Bind(func(s string) { applied = append(applied, s) })

	if len(applied) != 1 || applied[0] != "initial" {
		t.Fatalf("expected immediate invocation with current value, got %v", applied)
	}

	v.Set("changed")
	if len(applied) != 2 || applied[1] != "changed" {
		t.Errorf("expected bind to follow changes, got %v", applied)
	}

	unbind()
	v.Set("after")
	if len(applied) != 2 {
		t.Errorf("expected no applications after unbind, got %v", applied)
	}
}

func TestParentIsDiagnosticOnly(t *testing.T) {
	src := New(1)
	derived := src.Map(func(n int) int { return n + 1 })

	if derived.Parent() != Source(src) {
		t.Errorf("expected derived parent to be the source")
	}
	if src.Parent() != nil {
		t.Errorf("expected root value to have no parent")
	}
}

func TestSourceErasure(t *testing.T) {
	v := New(7)
	var src Source = v

	if got, ok := src.Load().(int); !ok || got != 7 {
		t.Errorf("expected Load to return 7, got %v", src.Load())
	}

	var seen any
	unsub := src.Watch(func(val any) { seen = val })
	v.Set(9)
	if got, ok := seen.(int); !ok || got != 9 {
		t.Errorf("expected Watch to observe 9, got %v", seen)
	}
	unsub()
}
