package server

import (
	"context"
	"testing"
	"time"
)

func TestStatusWriteContextSurvivesExpiredRunContext(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-parent.Done()

	ctx, cancelWrite := statusWriteContext(parent)
	defer cancelWrite()

	select {
	case <-ctx.Done():
		t.Fatal("status write context must stay usable after the run context expires")
	default:
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("status write context must carry its own deadline")
	}
	if remaining := time.Until(deadline); remaining > importStatusWriteTimeout {
		t.Errorf("deadline %v exceeds the status write budget %v", remaining, importStatusWriteTimeout)
	}
}

func TestStatusWriteContextKeepsValues(t *testing.T) {
	type keyType struct{}
	parent, cancel := context.WithCancel(
		context.WithValue(context.Background(), keyType{}, "trace"))
	cancel()

	ctx, cancelWrite := statusWriteContext(parent)
	defer cancelWrite()

	if got := ctx.Value(keyType{}); got != "trace" {
		t.Errorf("Value = %v, want trace", got)
	}
}
