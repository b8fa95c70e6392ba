// Package mdns advertises the daemon's wire-protocol TCP port and HTTP
// status port over multicast DNS so LAN clients can find a sugarbeard
// daemon without a configured address. The teacher only consumes
// grandcat/zeroconf as a resolver (internal/adapters/shelly/client.go's
// performMDNSDiscovery); this package runs the same library the other
// way, as a Register()-side advertiser.
package mdns

import (
	"github.com/grandcat/zeroconf"

	"github.com/sugarbeard/sugarbeardd/pkg/daemonerrors"
)

const (
	wireServiceType = "_sugarbeard._tcp"
	httpServiceType = "_sugarbeard-http._tcp"
	domain          = "local."
)

// Advertiser owns the registered mDNS service handles and stops them on
// Shutdown.
type Advertiser struct {
	servers []*zeroconf.Server
}

// Start registers both the wire-protocol and HTTP status services under
// instance, a stable name (e.g. the hostname) distinguishing this daemon
// from others on the LAN.
func Start(instance string, wirePort, httpPort int) (*Advertiser, error) {
	wireSrv, err := zeroconf.Register(instance, wireServiceType, domain, wirePort, nil, nil)
	if err != nil {
		return nil, daemonerrors.Wrap(daemonerrors.Bus, "advertise wire service", err)
	}

	httpSrv, err := zeroconf.Register(instance, httpServiceType, domain, httpPort, []string{"path=/status"}, nil)
	if err != nil {
		wireSrv.Shutdown()
		return nil, daemonerrors.Wrap(daemonerrors.Bus, "advertise http service", err)
	}

	return &Advertiser{servers: []*zeroconf.Server{wireSrv, httpSrv}}, nil
}

// Shutdown unregisters every advertised service.
func (a *Advertiser) Shutdown() {
	for _, s := range a.servers {
		s.Shutdown()
	}
}
