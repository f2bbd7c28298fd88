package signal

import (
	"testing"
	"time"
)

func TestShutdownRequestListener(t *testing.T) {
	shutdownRequest := make(chan struct{})
	interrupted := ShutdownRequestListener(shutdownRequest)
	if InterruptRequested(interrupted) {
		t.Fatalf("TestShutdownRequestListener: interrupted before a shutdown was requested")
	}

	close(shutdownRequest)
	select {
	case <-interrupted:
	case <-time.After(5 * time.Second):
		t.Fatalf("TestShutdownRequestListener: the shutdown request was not noticed")
	}
	if !InterruptRequested(interrupted) {
		t.Fatalf("TestShutdownRequestListener: InterruptRequested is false after the shutdown")
	}
}
