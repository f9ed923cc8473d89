package main

import (
	"net/http"
	"os"
	osSignal "os/signal"
	"slices"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestShutdownOnSignal(t *testing.T) {
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})

	var requested []os.Signal
	signalNotify = func(ch chan<- os.Signal, sig ...os.Signal) {
		requested = sig
		go func() {
			ch <- syscall.SIGTERM
		}()
	}

	server := &http.Server{}
	called := make(chan struct{}, 1)
	server.RegisterOnShutdown(func() {
		called <- struct{}{}
	})

	shutdown(server, time.Millisecond, zaptest.NewLogger(t))

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatalf("expected server shutdown callback to execute")
	}
	if !slices.Contains(requested, syscall.SIGTERM) || !slices.Contains(requested, os.Interrupt) {
		t.Fatalf("expected SIGTERM and interrupt to be watched, got %v", requested)
	}
}
