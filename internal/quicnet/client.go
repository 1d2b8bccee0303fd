package quicnet

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quic-go/quic-go/http3"
)

// Probe GETs url and returns the status code and round-trip time. With h3
// set the request goes over HTTP/3 only.
func Probe(ctx context.Context, url string, h3 bool, insecure bool) (int, time.Duration, error) {
	tlsConf := &tls.Config{InsecureSkipVerify: insecure}
	var rt http.RoundTripper
	if h3 {
		h3rt := &http3.RoundTripper{TLSClientConfig: tlsConf}
		defer h3rt.Close()
		rt = h3rt
	} else {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = tlsConf
		defer tr.CloseIdleConnections()
		rt = tr
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, err
	}
	start := time.Now()
	resp, err := (&http.Client{Transport: rt}).Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("probe %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, time.Since(start), nil
}
