package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
)

// boundServer owns an *http.Server and the listener it serves on. Addr and
// Shutdown are safe to call before, during and after serving.
type boundServer struct {
	addr string

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener
}

// serve binds b.addr, closes ready once bound and blocks in srv.Serve. A
// failed bind leaves ready open.
func (b *boundServer) serve(srv *http.Server, ready chan<- struct{}, msg string, attrs ...any) error {
	ln, err := net.Listen("tcp", b.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", b.addr, err)
	}

	b.mu.Lock()
	b.srv, b.ln = srv, ln
	b.mu.Unlock()

	slog.Info(msg, append([]any{"addr", ln.Addr().String()}, attrs...)...)
	if ready != nil {
		close(ready)
	}
	return srv.Serve(ln)
}

func (b *boundServer) shutdown(ctx context.Context) error {
	b.mu.Lock()
	srv := b.srv
	b.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// boundAddr returns the listener address once bound, the configured one
// before.
func (b *boundServer) boundAddr() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ln != nil {
		return b.ln.Addr().String()
	}
	return b.addr
}
