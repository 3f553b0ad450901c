package approval

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestResult(t *testing.T) {
	tcs := []struct {
		name   string
		res    Result
		ok     bool
		expect string
	}{
		{name: "approved", res: Approve(), ok: true, expect: "approved"},
		{name: "rejected", res: Reject("pending"), expect: "not approved: pending"},
		{name: "failed", res: Fail(errors.New("timeout")), expect: "query failed: timeout"},
		{name: "failed-nil", res: Fail(nil), expect: "query failed: unknown error"},
		{name: "invalid", res: Result{}, expect: "<INVALID>"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if tc.res.OK() != tc.ok {
				t.Fatalf("expected OK() = %t", tc.ok)
			}
			if got := tc.res.String(); got != tc.expect {
				t.Fatalf("expected %q, got %q", tc.expect, got)
			}
		})
	}
}

func TestMock(t *testing.T) {
	m := NewMock().Set("5", Approve()).Set("9", Reject("pending"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.CheckApproval(ctx, "5")
		}()
	}
	wg.Wait()

	if n := m.Calls("5"); n != 10 {
		t.Fatalf("expected 10 calls, got %d", n)
	}
	if res := m.CheckApproval(ctx, "9"); res.Status != NotApproved || res.Reason != "pending" {
		t.Fatalf("unexpected result: %v", res)
	}
	if res := m.CheckApproval(ctx, "404"); res.Status != QueryFailed {
		t.Fatalf("expected unknown id to fail, got %v", res)
	}
	if n := m.TotalCalls(); n != 12 {
		t.Fatalf("expected 12 total calls, got %d", n)
	}
}
