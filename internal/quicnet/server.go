// Package quicnet serves the site over HTTP/3 and manages its certificates.
package quicnet

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/quic-go/quic-go/http3"
)

var ErrMissingTLS = errors.New("missing TLS configuration")

// NewHTTP3 builds an HTTP/3 server for handler on the UDP side of addr.
func NewHTTP3(addr string, tlsConf *tls.Config, handler http.Handler) (*http3.Server, error) {
	if tlsConf == nil {
		return nil, ErrMissingTLS
	}
	return &http3.Server{
		Addr:      addr,
		Handler:   handler,
		TLSConfig: http3.ConfigureTLSConfig(tlsConf.Clone()),
	}, nil
}

// ServeHTTP3 runs srv until ctx is done.
func ServeHTTP3(ctx context.Context, srv *http3.Server) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		_ = srv.Close()
		<-errc
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// AltSvc advertises the HTTP/3 endpoint on every TCP response. The port is
// taken from srv.Addr so the header is known before the listener starts.
func AltSvc(srv *http3.Server, next http.Handler) http.Handler {
	port := ParsePort(srv.Addr)
	if port == 0 {
		return next
	}
	value := fmt.Sprintf(`h3=":%d"; ma=2592000`, port)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ProtoMajor < 3 {
			w.Header().Add("Alt-Svc", value)
		}
		next.ServeHTTP(w, r)
	})
}

// ParsePort extracts an integer port from a host:port address; returns 0 if absent.
func ParsePort(addr string) int {
	if addr == "" {
		return 0
	}
	lastColon := strings.LastIndex(addr, ":")
	if lastColon < 0 || lastColon == len(addr)-1 {
		return 0
	}
	p, _ := strconv.Atoi(addr[lastColon+1:])
	return p
}
