package config

import (
	"net"
	"net/url"
	"os"
	"sync"
)

// hostGateway is how a container reaches services on the host machine.
const hostGateway = "host.docker.internal"

// inContainer reports whether the process runs in Docker, detected once by
// the presence of /.dockerenv.
var inContainer = sync.OnceValue(func() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
})

// hostRewriter points loopback addresses at the host gateway when active.
// Configuration written for a laptop (a local Postgres, an Ollama endpoint,
// an Airtable mock) then works unchanged inside a container.
type hostRewriter struct {
	active bool
}

func (h hostRewriter) host(host string) string {
	if !h.active {
		return host
	}
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return hostGateway
	}
	return host
}

// url rewrites the host of an absolute URL. Anything else is returned as is.
func (h hostRewriter) url(raw string) string {
	if !h.active || raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	if host, port, err := net.SplitHostPort(u.Host); err == nil {
		u.Host = net.JoinHostPort(h.host(host), port)
	} else {
		u.Host = h.host(u.Host)
	}
	return u.String()
}

// apply rewrites every endpoint the service dials.
func (h hostRewriter) apply(cfg *Config) {
	cfg.Store.Database.Host = h.host(cfg.Store.Database.Host)
	cfg.Store.Airtable.APIURL = h.url(cfg.Store.Airtable.APIURL)
	cfg.AI.BaseURL = h.url(cfg.AI.BaseURL)
}
