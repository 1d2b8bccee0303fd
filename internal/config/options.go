package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// DefaultTabs are the spreadsheet tabs rendered as pages, in menu order.
var DefaultTabs = []string{"Content", "About Us", "Business Scope", "Product Catalog", "Join Us", "Contact Us"}

// GetConfigOptions returns the default configuration options and their meanings.
// It drives viper defaults and the generated config file.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; snapshots live in data_dir/sheetsite.db"},
		{Key: "db_url", Default: "", Comment: "Snapshot store URL (sqlite://<path> or mem://); empty uses data_dir"},
		{Key: "http_addr", Default: ":8080", Comment: "HTTP listen address"},
		{Key: "auth.token", Default: "", Comment: "Bearer token for POST /admin/refresh; empty disables it"},

		{Key: "site.title", Default: "", Comment: "Document title; empty uses the Content tab title"},
		{Key: "site.default_lang", Default: "zh", Comment: "Language when neither ?lang nor the cookie selects one (zh or en)"},
		{Key: "site.tabs", Default: DefaultTabs, Comment: "Spreadsheet tabs shown as pages, in menu order"},

		{Key: "source.mode", Default: "google", Comment: "Where content comes from: google or dir"},
		{Key: "source.spreadsheet_id", Default: "", Comment: "Published Google spreadsheet id"},
		{Key: "source.products_url", Default: "", Comment: "Product feed URL returning a JSON array"},
		{Key: "source.dir", Default: "", Comment: "Directory with <tab>.json and products.json for mode = dir"},
		{Key: "source.timeout", Default: "20s", Comment: "Upper bound for one upstream fetch including retries"},
		{Key: "source.retries", Default: 3, Comment: "Retries after a failed upstream request"},

		{Key: "cache.ttl", Default: "0s", Comment: "How long fetched content is reused; 0s keeps it until refreshed"},
		{Key: "cache.refresh_interval", Default: "0s", Comment: "serve refetches every tab and the catalog this often; 0s disables"},
		{Key: "search.limit", Default: 24, Comment: "Maximum number of search results"},

		{Key: "log.level", Default: "info", Comment: "debug, info, warn or error"},
		{Key: "log.format", Default: "console", Comment: "console or json"},

		{Key: "tls.cert_file", Default: "", Comment: "PEM certificate; set together with key_file"},
		{Key: "tls.key_file", Default: "", Comment: "PEM private key"},
		{Key: "tls.domain", Default: "", Comment: "Obtain certificates automatically for this domain"},
		{Key: "tls.email", Default: "", Comment: "ACME account email"},
		{Key: "tls.storage_dir", Default: "", Comment: "Certificate storage; empty uses the user cache dir"},
		{Key: "tls.self_signed", Default: false, Comment: "Serve TLS with a throwaway self-signed certificate"},
		{Key: "tls.http3", Default: false, Comment: "Also serve HTTP/3 over QUIC when TLS is on"},
	}
}

// ResolveDBURL returns db_url, or a sqlite URL under data_dir.
func ResolveDBURL(v *viper.Viper) string {
	if u := strings.TrimSpace(v.GetString("db_url")); u != "" {
		return u
	}
	dir := v.GetString("data_dir")
	if dir == "" {
		dir = defaultDataDir()
	}
	if strings.HasPrefix(dir, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[1:])
		}
	}
	return "sqlite://" + filepath.Join(dir, "sheetsite.db")
}
