// Package discovery finds other nodes on the local network using mDNS.
// A node registers its peer port as a service instance and browses for the
// instances registered by other nodes.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/grandcat/zeroconf"
)

// Set of values for the mDNS service.
const (
	Service = "_corundum._tcp"
	Domain  = "local."
)

// FoundFunc is called with the host and port of every discovered node.
type FoundFunc func(host string, port int) error

// Config represents the configuration for discovery.
type Config struct {
	Instance  string
	Port      int
	Found     FoundFunc
	EvHandler func(v string, args ...any)
}

// Discovery manages the registration and browsing of node services.
type Discovery struct {
	cfg    Config
	server *zeroconf.Server
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Start registers this node and starts browsing for others.
func Start(cfg Config) (*Discovery, error) {
	if cfg.Found == nil {
		return nil, errors.New("found function is required")
	}
	if cfg.Instance == "" {
		return nil, errors.New("instance name is required")
	}
	if cfg.EvHandler == nil {
		cfg.EvHandler = func(v string, args ...any) {}
	}

	server, err := zeroconf.Register(cfg.Instance, Service, Domain, cfg.Port, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("registering service: %w", err)
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		server.Shutdown()
		return nil, fmt.Errorf("constructing resolver: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := Discovery{
		cfg:    cfg,
		server: server,
		cancel: cancel,
	}

	entries := make(chan *zeroconf.ServiceEntry)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.handleEntries(ctx, entries)
	}()

	if err := resolver.Browse(ctx, Service, Domain, entries); err != nil {
		d.Shutdown()
		return nil, fmt.Errorf("browsing: %w", err)
	}

	cfg.EvHandler("discovery: Start: registered: instance[%s]: port[%d]", cfg.Instance, cfg.Port)

	return &d, nil
}

// Shutdown stops browsing and removes the service registration.
func (d *Discovery) Shutdown() {
	d.cancel()
	d.wg.Wait()
	d.server.Shutdown()

	d.cfg.EvHandler("discovery: Shutdown: completed")
}

// handleEntries hands every discovered instance other than this node to
// the found function.
func (d *Discovery) handleEntries(ctx context.Context, entries <-chan *zeroconf.ServiceEntry) {
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return
			}

			if entry.Instance == d.cfg.Instance {
				continue
			}

			host, ok := entryHost(entry)
			if !ok {
				d.cfg.EvHandler("discovery: instance[%s]: no address", entry.Instance)
				continue
			}

			d.cfg.EvHandler("discovery: found: instance[%s]: peer[%s]", entry.Instance, net.JoinHostPort(host, strconv.Itoa(entry.Port)))

			if err := d.cfg.Found(host, entry.Port); err != nil {
				d.cfg.EvHandler("discovery: instance[%s]: WARNING: %s", entry.Instance, err)
			}

		case <-ctx.Done():
			return
		}
	}
}

// entryHost returns the address to reach the instance, preferring IPv4.
func entryHost(entry *zeroconf.ServiceEntry) (string, bool) {
	if len(entry.AddrIPv4) > 0 {
		return entry.AddrIPv4[0].String(), true
	}

	if len(entry.AddrIPv6) > 0 {
		return entry.AddrIPv6[0].String(), true
	}

	return "", false
}
