// Package port is the read-only port directory the orchestration agents
// resolve interface aliases through. Port lifecycle (link state, MTU,
// membership) is owned by an external port manager; the agents only read
// descriptors and write back RIF bindings after forwarding-plane changes.
package port

import (
	"fmt"

	"github.com/praveen-li/sonic-swss/pkg/orchagent/sai"
	"github.com/praveen-li/sonic-swss/pkg/util"
)

// Kind is the port flavor.
type Kind int

// Port kinds.
const (
	Phy Kind = iota
	Lag
	Vlan
	Loopback
	CPU
)

func (k Kind) String() string {
	switch k {
	case Phy:
		return "PHY"
	case Lag:
		return "LAG"
	case Vlan:
		return "VLAN"
	case Loopback:
		return "LOOPBACK"
	case CPU:
		return "CPU"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Port is one interface descriptor. Identity is Alias.
type Port struct {
	Alias string
	Kind  Kind

	PortID sai.ObjectID
	LagID  sai.ObjectID
	VlanID sai.ObjectID

	MTU uint32

	RIF sai.ObjectID
	VRF sai.ObjectID
}

// RIFAttachment returns the object a router interface binds to and the
// matching RIF kind. Loopback and CPU ports have no attachment.
func (p Port) RIFAttachment() (sai.ObjectID, sai.RIFKind, error) {
	switch p.Kind {
	case Phy:
		return p.PortID, sai.RIFPort, nil
	case Lag:
		return p.LagID, sai.RIFPort, nil
	case Vlan:
		return p.VlanID, sai.RIFVlan, nil
	}
	return sai.NullObjectID, 0, fmt.Errorf("port kind %s has no router interface: %w", p.Kind, util.ErrInvalidInput)
}

// Directory holds the port descriptors keyed by alias.
type Directory struct {
	ports map[string]Port
	cpu   Port
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{ports: make(map[string]Port)}
}

// Set inserts or replaces a descriptor. Called by the port manager.
func (d *Directory) Set(p Port) {
	d.ports[p.Alias] = p
}

// Get looks up a descriptor by alias.
func (d *Directory) Get(alias string) (Port, bool) {
	p, ok := d.ports[alias]
	return p, ok
}

// BindRIF writes the RIF handle and VRF back-reference onto a port after
// a successful create or remove.
func (d *Directory) BindRIF(alias string, rif, vrf sai.ObjectID) error {
	p, ok := d.ports[alias]
	if !ok {
		return util.NewDependencyError("port", alias)
	}
	p.RIF = rif
	p.VRF = vrf
	d.ports[alias] = p
	return nil
}

// SetCPUPort installs the CPU port descriptor.
func (d *Directory) SetCPUPort(p Port) {
	p.Kind = CPU
	d.cpu = p
}

// CPUPort returns the CPU port descriptor.
func (d *Directory) CPUPort() Port {
	return d.cpu
}
