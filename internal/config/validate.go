package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mithrel/sheetsite/pkg/api"
)

// CheckConfigValidity reports every problem in v at once.
func CheckConfigValidity(v *viper.Viper) error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if strings.TrimSpace(v.GetString("data_dir")) == "" && strings.TrimSpace(v.GetString("db_url")) == "" {
		add("data_dir is required when db_url is empty")
	}
	if u := strings.TrimSpace(v.GetString("db_url")); u != "" &&
		!strings.HasPrefix(u, "sqlite://") && !strings.HasPrefix(u, "mem://") {
		add("db_url must start with sqlite:// or mem://")
	}
	if _, _, err := net.SplitHostPort(v.GetString("http_addr")); err != nil {
		add("http_addr is not host:port: %v", err)
	}

	if _, ok := api.ParseLang(v.GetString("site.default_lang")); !ok {
		add("site.default_lang must be zh or en")
	}
	tabs := v.GetStringSlice("site.tabs")
	if len(tabs) == 0 {
		add("site.tabs must list at least one tab")
	}
	dup := make(map[string]bool, len(tabs))
	for _, t := range tabs {
		if strings.TrimSpace(t) == "" {
			add("site.tabs contains an empty name")
			continue
		}
		if dup[t] {
			add("site.tabs lists %q twice", t)
		}
		dup[t] = true
	}

	switch mode := v.GetString("source.mode"); mode {
	case "", "google":
		if strings.TrimSpace(v.GetString("source.spreadsheet_id")) == "" {
			add("source.spreadsheet_id is required")
		}
		if raw := strings.TrimSpace(v.GetString("source.products_url")); raw == "" {
			add("source.products_url is required")
		} else if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("source.products_url has invalid url")
		}
	case "dir":
		if strings.TrimSpace(v.GetString("source.dir")) == "" {
			add("source.dir is required for source.mode = dir")
		}
	default:
		add("source.mode %q is not google or dir", mode)
	}
	if d, err := time.ParseDuration(v.GetString("source.timeout")); err != nil || d <= 0 {
		add("source.timeout must be a positive duration")
	}
	if v.GetInt("source.retries") < 0 {
		add("source.retries must not be negative")
	}
	if d, err := time.ParseDuration(v.GetString("cache.ttl")); err != nil || d < 0 {
		add("cache.ttl must be a duration of 0s or more")
	}
	if raw := v.GetString("cache.refresh_interval"); raw != "" {
		if d, err := time.ParseDuration(raw); err != nil || d < 0 {
			add("cache.refresh_interval must be a duration of 0s or more")
		}
	}
	if v.GetInt("search.limit") <= 0 {
		add("search.limit must be greater than 0")
	}

	switch v.GetString("log.level") {
	case "debug", "info", "warn", "error":
	default:
		add("log.level must be debug, info, warn or error")
	}
	switch v.GetString("log.format") {
	case "console", "json":
	default:
		add("log.format must be console or json")
	}

	cert, key := v.GetString("tls.cert_file"), v.GetString("tls.key_file")
	if (cert == "") != (key == "") {
		add("tls.cert_file and tls.key_file must be set together")
	}
	if cert != "" && v.GetString("tls.domain") != "" {
		add("tls.domain conflicts with tls.cert_file")
	}
	tlsOn := cert != "" || v.GetString("tls.domain") != "" || v.GetBool("tls.self_signed")
	if v.GetBool("tls.http3") && !tlsOn {
		add("tls.http3 requires a certificate source")
	}
	return errors.Join(errs...)
}
