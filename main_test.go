package main

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/BorisDmv/my-todo-api/internal/config"
	"github.com/BorisDmv/my-todo-api/internal/logging"
)

func TestRun_ReturnsErrorWhenPortIsTaken(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := config.Config{
		Port:               strconv.Itoa(ln.Addr().(*net.TCPAddr).Port),
		StoreDriver:        config.DriverMemory,
		CorsAllowedOrigins: []string{"http://localhost:5173"},
		ShutdownTimeout:    time.Second,
	}

	done := make(chan error, 1)
	go func() { done <- run(cfg, logging.Discard()) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected an error for a port already in use")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not return")
	}
}
