package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mithrel/sheetsite/internal/quicnet"
)

const shutdownTimeout = 10 * time.Second

// TLSConfig picks the certificate source from tls.* keys: cert files,
// CertMagic for tls.domain, or a throwaway self-signed pair. It returns a
// nil config for plain HTTP. The handler, when set, answers ACME HTTP-01
// challenges on :80.
func (s *Server) TLSConfig(ctx context.Context) (*tls.Config, http.Handler, error) {
	certFile := strings.TrimSpace(s.cfg.GetString("tls.cert_file"))
	keyFile := strings.TrimSpace(s.cfg.GetString("tls.key_file"))
	domain := strings.TrimSpace(s.cfg.GetString("tls.domain"))
	switch {
	case certFile != "" || keyFile != "":
		if certFile == "" || keyFile == "" {
			return nil, nil, errors.New("tls.cert_file and tls.key_file must be set together")
		}
		c, err := quicnet.BuildFileTLS(certFile, keyFile)
		return c, nil, err
	case domain != "":
		return quicnet.BuildCertMagicTLS(ctx, quicnet.CertMagicConfig{
			Domain:       domain,
			Email:        s.cfg.GetString("tls.email"),
			StorageDir:   s.cfg.GetString("tls.storage_dir"),
			EnableHTTP01: true,
		})
	case s.cfg.GetBool("tls.self_signed"):
		host, _, _ := net.SplitHostPort(s.cfg.GetString("http_addr"))
		if host == "" {
			host = "localhost"
		}
		c, err := quicnet.SelfSignedTLS(host)
		return c, nil, err
	}
	return nil, nil, nil
}

// Run serves on http_addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.GetString("http_addr")
	tlsConf, challenge, err := s.TLSConfig(ctx)
	if err != nil {
		return fmt.Errorf("tls: %w", err)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if tlsConf != nil {
		ln = tls.NewListener(ln, tlsConf)
	}

	g, gctx := errgroup.WithContext(ctx)
	handler := s.Router()

	if tlsConf != nil && s.cfg.GetBool("tls.http3") {
		h3, err := quicnet.NewHTTP3(addr, tlsConf, handler)
		if err != nil {
			_ = ln.Close()
			return err
		}
		handler = quicnet.AltSvc(h3, handler)
		g.Go(func() error { return quicnet.ServeHTTP3(gctx, h3) })
		s.log.Info("http3 listening", zap.String("addr", addr))
	}
	if challenge != nil {
		acme := &http.Server{Addr: ":80", Handler: challenge, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error { return serveUntil(gctx, acme, nil) })
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	g.Go(func() error { return serveUntil(gctx, srv, ln) })
	s.log.Info("listening", zap.String("addr", ln.Addr().String()), zap.Bool("tls", tlsConf != nil))
	return g.Wait()
}

// Serve runs the router on an existing listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}
	return serveUntil(ctx, srv, ln)
}

// serveUntil serves srv (on ln, or srv.Addr when ln is nil) and shuts it
// down once ctx is done.
func serveUntil(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		if ln != nil {
			errc <- srv.Serve(ln)
			return
		}
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(sctx)
	<-errc
	return err
}
