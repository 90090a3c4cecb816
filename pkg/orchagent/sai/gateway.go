package sai

import (
	"errors"
	"fmt"
	"net"

	"github.com/praveen-li/sonic-swss/pkg/orchagent/crm"
	"github.com/praveen-li/sonic-swss/pkg/util"
)

// broadcastMAC is the destination MAC of directed-broadcast neighbors.
var broadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// NextHopEvent describes a subnet-route install or uninstall. Routing
// components use these to resolve next-hops over interface subnets.
type NextHopEvent struct {
	Prefix    util.Prefix
	VRF       ObjectID
	RIF       ObjectID
	Iface     string
	Installed bool
}

// NextHopObserver receives subnet-route change events.
type NextHopObserver func(NextHopEvent)

// Registration is an owned observer handle; Close deregisters.
type Registration struct {
	g  *Gateway
	id int
}

// Close removes the observer from the gateway.
func (r *Registration) Close() {
	delete(r.g.observers, r.id)
}

// Gateway is the typed facade the orchestration agents call. Route and
// neighbor creates count AlreadyExists as success, and every remove counts
// NotFound as success. CreateRIF and CreateVirtualRouter return
// AlreadyExists as an error. All methods run on the reconciler goroutine.
type Gateway struct {
	sw       Switch
	counters *crm.Counters

	observers  map[int]NextHopObserver
	observerID int
}

// NewGateway wraps a driver.
func NewGateway(sw Switch, counters *crm.Counters) *Gateway {
	return &Gateway{
		sw:        sw,
		counters:  counters,
		observers: make(map[int]NextHopObserver),
	}
}

// ObserveNextHops registers fn for subnet-route change events.
func (g *Gateway) ObserveNextHops(fn NextHopObserver) *Registration {
	g.observerID++
	g.observers[g.observerID] = fn
	return &Registration{g: g, id: g.observerID}
}

func (g *Gateway) notify(ev NextHopEvent) {
	for _, fn := range g.observers {
		fn(ev)
	}
}

func routeResource(dest util.Prefix) crm.Resource {
	if dest.IsV4() {
		return crm.IPv4Route
	}
	return crm.IPv6Route
}

// CreateVirtualRouter allocates a VRF in the forwarding plane.
func (g *Gateway) CreateVirtualRouter() (ObjectID, error) {
	return g.sw.CreateVirtualRouter()
}

// RemoveVirtualRouter releases a VRF.
func (g *Gateway) RemoveVirtualRouter(vrf ObjectID) error {
	err := g.sw.RemoveVirtualRouter(vrf)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// CreateRIF creates a router interface with the given attributes.
func (g *Gateway) CreateRIF(attrs RIFAttrs) (ObjectID, error) {
	rif, err := g.sw.CreateRouterInterface(attrs)
	if err != nil {
		return NullObjectID, fmt.Errorf("creating router interface: %w", err)
	}
	return rif, nil
}

// SetRIFMTU updates a router interface's MTU.
func (g *Gateway) SetRIFMTU(rif ObjectID, mtu uint32) error {
	if err := g.sw.SetRouterInterfaceMTU(rif, mtu); err != nil {
		return fmt.Errorf("setting rif mtu: %w", err)
	}
	return nil
}

// RemoveRIF removes a router interface. NotFound counts as success.
func (g *Gateway) RemoveRIF(rif ObjectID) error {
	err := g.sw.RemoveRouterInterface(rif)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("removing router interface: %w", err)
	}
	return nil
}

// CreateSubnetRoute installs dest pointing at rif and notifies next-hop
// observers.
func (g *Gateway) CreateSubnetRoute(vrf ObjectID, dest util.Prefix, rif ObjectID, iface string) error {
	if err := g.createRoute(RouteEntry{VRF: vrf, Dest: dest}, rif); err != nil {
		return fmt.Errorf("creating subnet route %s: %w", dest, err)
	}
	g.notify(NextHopEvent{Prefix: dest, VRF: vrf, RIF: rif, Iface: iface, Installed: true})
	return nil
}

// RemoveSubnetRoute uninstalls dest and notifies next-hop observers.
func (g *Gateway) RemoveSubnetRoute(vrf ObjectID, dest util.Prefix, rif ObjectID, iface string) error {
	if err := g.removeRoute(RouteEntry{VRF: vrf, Dest: dest}); err != nil {
		return fmt.Errorf("removing subnet route %s: %w", dest, err)
	}
	g.notify(NextHopEvent{Prefix: dest, VRF: vrf, RIF: rif, Iface: iface, Installed: false})
	return nil
}

// CreateIP2MeRoute installs a host route punting dest to the CPU port.
func (g *Gateway) CreateIP2MeRoute(vrf ObjectID, dest util.Prefix, cpuPort ObjectID) error {
	if err := g.createRoute(RouteEntry{VRF: vrf, Dest: dest}, cpuPort); err != nil {
		return fmt.Errorf("creating ip2me route %s: %w", dest, err)
	}
	return nil
}

// RemoveIP2MeRoute uninstalls a host route.
func (g *Gateway) RemoveIP2MeRoute(vrf ObjectID, dest util.Prefix) error {
	if err := g.removeRoute(RouteEntry{VRF: vrf, Dest: dest}); err != nil {
		return fmt.Errorf("removing ip2me route %s: %w", dest, err)
	}
	return nil
}

func (g *Gateway) createRoute(entry RouteEntry, nextHop ObjectID) error {
	err := g.sw.CreateRouteEntry(entry, nextHop)
	if errors.Is(err, ErrAlreadyExists) {
		return nil
	}
	if err != nil {
		return err
	}
	g.counters.Inc(routeResource(entry.Dest))
	return nil
}

func (g *Gateway) removeRoute(entry RouteEntry) error {
	err := g.sw.RemoveRouteEntry(entry)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	g.counters.Dec(routeResource(entry.Dest))
	return nil
}

// CreateBcastNeighbor installs the directed-broadcast neighbor for ip on
// rif with the all-ones destination MAC.
func (g *Gateway) CreateBcastNeighbor(rif ObjectID, ip string) error {
	err := g.sw.CreateNeighborEntry(NeighborEntry{RIF: rif, IP: ip}, broadcastMAC)
	if errors.Is(err, ErrAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating broadcast neighbor %s: %w", ip, err)
	}
	g.counters.Inc(crm.IPv4Neighbor)
	return nil
}

// RemoveBcastNeighbor uninstalls a directed-broadcast neighbor.
func (g *Gateway) RemoveBcastNeighbor(rif ObjectID, ip string) error {
	err := g.sw.RemoveNeighborEntry(NeighborEntry{RIF: rif, IP: ip})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("removing broadcast neighbor %s: %w", ip, err)
	}
	g.counters.Dec(crm.IPv4Neighbor)
	return nil
}
