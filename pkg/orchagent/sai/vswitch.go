package sai

import (
	"fmt"
	"net"

	"github.com/praveen-li/sonic-swss/pkg/util"
)

// VSwitch is an in-memory Switch. It backs the daemon when no hardware
// driver is attached and doubles as the driver for tests; error injection
// simulates driver failures.
type VSwitch struct {
	nextID ObjectID

	vrs       map[ObjectID]struct{}
	rifs      map[ObjectID]RIFAttrs
	routes    map[RouteEntry]ObjectID
	neighbors map[NeighborEntry]net.HardwareAddr

	// RouteCapacity bounds the route table when non-zero.
	RouteCapacity int

	failures map[string][]error
}

// NewVSwitch creates an empty virtual switch.
func NewVSwitch() *VSwitch {
	return &VSwitch{
		vrs:       make(map[ObjectID]struct{}),
		rifs:      make(map[ObjectID]RIFAttrs),
		routes:    make(map[RouteEntry]ObjectID),
		neighbors: make(map[NeighborEntry]net.HardwareAddr),
		failures:  make(map[string][]error),
	}
}

// FailNext queues err to be returned by the next call of op. Ops:
// create_vr, create_rif, set_rif_mtu, remove_rif, create_route,
// remove_route, create_neighbor, remove_neighbor.
func (s *VSwitch) FailNext(op string, err error) {
	s.failures[op] = append(s.failures[op], err)
}

func (s *VSwitch) failure(op string) error {
	q := s.failures[op]
	if len(q) == 0 {
		return nil
	}
	s.failures[op] = q[1:]
	return q[0]
}

func (s *VSwitch) allocID() ObjectID {
	s.nextID++
	return s.nextID
}

// AllocObjectID hands out a fresh handle for objects owned elsewhere
// (ports, LAGs, VLANs, the CPU port).
func (s *VSwitch) AllocObjectID() ObjectID {
	return s.allocID()
}

// CreateVirtualRouter allocates a virtual router.
func (s *VSwitch) CreateVirtualRouter() (ObjectID, error) {
	if err := s.failure("create_vr"); err != nil {
		return NullObjectID, err
	}
	id := s.allocID()
	s.vrs[id] = struct{}{}
	return id, nil
}

// RemoveVirtualRouter releases a virtual router.
func (s *VSwitch) RemoveVirtualRouter(vrf ObjectID) error {
	if _, ok := s.vrs[vrf]; !ok {
		return fmt.Errorf("vr %#x: %w", uint64(vrf), ErrNotFound)
	}
	delete(s.vrs, vrf)
	return nil
}

// CreateRouterInterface creates a RIF object.
func (s *VSwitch) CreateRouterInterface(attrs RIFAttrs) (ObjectID, error) {
	if err := s.failure("create_rif"); err != nil {
		return NullObjectID, err
	}
	if attrs.Attach == NullObjectID {
		return NullObjectID, fmt.Errorf("rif attachment missing: %w", ErrFatal)
	}
	id := s.allocID()
	s.rifs[id] = attrs
	return id, nil
}

// SetRouterInterfaceMTU updates a RIF's MTU.
func (s *VSwitch) SetRouterInterfaceMTU(rif ObjectID, mtu uint32) error {
	if err := s.failure("set_rif_mtu"); err != nil {
		return err
	}
	attrs, ok := s.rifs[rif]
	if !ok {
		return fmt.Errorf("rif %#x: %w", uint64(rif), ErrNotFound)
	}
	attrs.MTU = mtu
	s.rifs[rif] = attrs
	return nil
}

// RemoveRouterInterface removes a RIF object.
func (s *VSwitch) RemoveRouterInterface(rif ObjectID) error {
	if err := s.failure("remove_rif"); err != nil {
		return err
	}
	if _, ok := s.rifs[rif]; !ok {
		return fmt.Errorf("rif %#x: %w", uint64(rif), ErrNotFound)
	}
	delete(s.rifs, rif)
	return nil
}

// CreateRouteEntry installs a route.
func (s *VSwitch) CreateRouteEntry(entry RouteEntry, nextHop ObjectID) error {
	if err := s.failure("create_route"); err != nil {
		return err
	}
	if _, ok := s.routes[entry]; ok {
		return fmt.Errorf("route %s: %w", entry.Dest, ErrAlreadyExists)
	}
	if s.RouteCapacity > 0 && len(s.routes) >= s.RouteCapacity {
		return fmt.Errorf("route %s: %w", entry.Dest, ErrResourceExhausted)
	}
	s.routes[entry] = nextHop
	return nil
}

// RemoveRouteEntry uninstalls a route.
func (s *VSwitch) RemoveRouteEntry(entry RouteEntry) error {
	if err := s.failure("remove_route"); err != nil {
		return err
	}
	if _, ok := s.routes[entry]; !ok {
		return fmt.Errorf("route %s: %w", entry.Dest, ErrNotFound)
	}
	delete(s.routes, entry)
	return nil
}

// CreateNeighborEntry installs a neighbor.
func (s *VSwitch) CreateNeighborEntry(entry NeighborEntry, mac net.HardwareAddr) error {
	if err := s.failure("create_neighbor"); err != nil {
		return err
	}
	if _, ok := s.neighbors[entry]; ok {
		return fmt.Errorf("neighbor %s: %w", entry.IP, ErrAlreadyExists)
	}
	s.neighbors[entry] = mac
	return nil
}

// RemoveNeighborEntry uninstalls a neighbor.
func (s *VSwitch) RemoveNeighborEntry(entry NeighborEntry) error {
	if err := s.failure("remove_neighbor"); err != nil {
		return err
	}
	if _, ok := s.neighbors[entry]; !ok {
		return fmt.Errorf("neighbor %s: %w", entry.IP, ErrNotFound)
	}
	delete(s.neighbors, entry)
	return nil
}

// Route returns the next-hop a destination resolves to, if installed.
func (s *VSwitch) Route(vrf ObjectID, dest util.Prefix) (ObjectID, bool) {
	nh, ok := s.routes[RouteEntry{VRF: vrf, Dest: dest}]
	return nh, ok
}

// RouteCount returns the number of installed routes.
func (s *VSwitch) RouteCount() int {
	return len(s.routes)
}

// HasNeighbor reports whether the neighbor entry is installed.
func (s *VSwitch) HasNeighbor(rif ObjectID, ip string) bool {
	_, ok := s.neighbors[NeighborEntry{RIF: rif, IP: ip}]
	return ok
}

// NeighborCount returns the number of installed neighbors.
func (s *VSwitch) NeighborCount() int {
	return len(s.neighbors)
}

// HasRIF reports whether the RIF object exists.
func (s *VSwitch) HasRIF(rif ObjectID) bool {
	_, ok := s.rifs[rif]
	return ok
}

// RIFCount returns the number of RIF objects.
func (s *VSwitch) RIFCount() int {
	return len(s.rifs)
}

// RIFAttrs returns the attributes of an existing RIF.
func (s *VSwitch) RIFAttrs(rif ObjectID) (RIFAttrs, bool) {
	attrs, ok := s.rifs[rif]
	return attrs, ok
}
