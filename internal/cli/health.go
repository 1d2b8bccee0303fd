package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/sheetsite/internal/quicnet"
)

func newHealthCmd() *cobra.Command {
	var url string
	var h3, insecure bool
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe a running server's /healthz endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				v, err := getConfig(cmd)
				if err != nil {
					return err
				}
				url = localURL(v.GetString("http_addr"), h3 || v.GetString("tls.cert_file") != "" || v.GetBool("tls.self_signed"))
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			status, rtt, err := quicnet.Probe(ctx, url, h3, insecure)
			if err != nil {
				return err
			}
			proto := "HTTP/1.1"
			if h3 {
				proto = "HTTP/3"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d in %s\n", url, proto, status, rtt.Round(time.Microsecond))
			if status != http.StatusOK {
				return fmt.Errorf("unhealthy: status %d", status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "health URL (default derived from http_addr)")
	cmd.Flags().BoolVar(&h3, "http3", false, "probe over HTTP/3 (QUIC)")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "skip certificate verification")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "probe timeout")
	return cmd
}

// localURL turns a listen address into the matching /healthz URL.
func localURL(addr string, tls bool) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host, port = "", strings.TrimPrefix(addr, ":")
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	scheme := "http"
	if tls {
		scheme = "https"
	}
	return scheme + "://" + net.JoinHostPort(host, port) + "/healthz"
}
