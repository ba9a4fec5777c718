package volunteers

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLatestDropsSupersededResult(t *testing.T) {
	var gate Latest[string]

	started := make(chan struct{})
	firstDone := make(chan struct{})
	var firstVal string
	var firstErr error

	go func() {
		defer close(firstDone)
		firstVal, firstErr = gate.Load(context.Background(), func(ctx context.Context) (string, error) {
			close(started)
			<-ctx.Done()
			return "stale", nil
		})
	}()

	<-started
	val, err := gate.Load(context.Background(), func(context.Context) (string, error) {
		return "fresh", nil
	})
	if err != nil || val != "fresh" {
		t.Fatalf("second load = %q, %v", val, err)
	}

	select {
	case <-firstDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("first load was not cancelled")
	}
	if !errors.Is(firstErr, ErrSuperseded) || firstVal != "" {
		t.Fatalf("first load = %q, %v; want ErrSuperseded", firstVal, firstErr)
	}
	if gate.Seq() != 2 {
		t.Fatalf("Seq = %d, want 2", gate.Seq())
	}
}

func TestLatestPassesThroughErrors(t *testing.T) {
	var gate Latest[int]
	boom := errors.New("boom")
	_, err := gate.Load(context.Background(), func(context.Context) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}
