// Package sai is the typed facade over the forwarding-plane driver. The
// Gateway narrows the driver to the operations the orchestration agents
// need, keeps the resource counters current, and fans subnet-route changes
// out to registered next-hop observers. The in-memory VSwitch stands in
// for hardware when no real driver is attached.
package sai

import (
	"errors"
	"net"

	"github.com/praveen-li/sonic-swss/pkg/util"
)

// ObjectID is an opaque forwarding-plane object handle. Zero means none.
type ObjectID uint64

// NullObjectID is the absent handle.
const NullObjectID ObjectID = 0

// Driver error taxonomy. Every Switch implementation returns errors that
// unwrap to exactly one of these.
var (
	ErrNotFound          = errors.New("sai: item not found")
	ErrAlreadyExists     = errors.New("sai: item already exists")
	ErrResourceExhausted = errors.New("sai: table full")
	ErrBusy              = errors.New("sai: busy, retry later")
	ErrFatal             = errors.New("sai: operation failed")
)

// RIFKind selects the router-interface attachment type.
type RIFKind int

// Router-interface kinds.
const (
	RIFPort RIFKind = iota
	RIFVlan
)

// RIFAttrs is the attribute set for router-interface creation.
type RIFAttrs struct {
	Kind   RIFKind
	Attach ObjectID // port, LAG, or VLAN object depending on Kind
	VRF    ObjectID
	SrcMAC net.HardwareAddr
	MTU    uint32
}

// RouteEntry identifies a route in a virtual router.
type RouteEntry struct {
	VRF  ObjectID
	Dest util.Prefix
}

// NeighborEntry identifies a neighbor on a router interface.
type NeighborEntry struct {
	RIF ObjectID
	IP  string // canonical address text
}

// Switch is the driver boundary: the raw forwarding-plane operations the
// gateway is built on.
type Switch interface {
	CreateVirtualRouter() (ObjectID, error)
	RemoveVirtualRouter(vrf ObjectID) error

	CreateRouterInterface(attrs RIFAttrs) (ObjectID, error)
	SetRouterInterfaceMTU(rif ObjectID, mtu uint32) error
	RemoveRouterInterface(rif ObjectID) error

	CreateRouteEntry(entry RouteEntry, nextHop ObjectID) error
	RemoveRouteEntry(entry RouteEntry) error

	CreateNeighborEntry(entry NeighborEntry, mac net.HardwareAddr) error
	RemoveNeighborEntry(entry NeighborEntry) error
}
