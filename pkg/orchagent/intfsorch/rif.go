package intfsorch

import (
	"fmt"
	"net"

	"github.com/praveen-li/sonic-swss/pkg/orchagent/port"
	"github.com/praveen-li/sonic-swss/pkg/orchagent/sai"
	"github.com/praveen-li/sonic-swss/pkg/util"
)

// RifState is the synced state of one router interface: its address set,
// the reference count held by subnet routes and external users, and the
// virtual router it is bound to. Loopback aliases hold a sentinel entry
// with no forwarding-plane object and no address bookkeeping.
type RifState struct {
	Addresses map[util.Prefix]struct{}
	RefCount  int
	VRF       sai.ObjectID
	MTU       uint32
}

// rifTable owns router-interface lifecycle against the gateway and keeps
// the per-alias RifState.
type rifTable struct {
	entries map[string]*RifState
	gateway *sai.Gateway
	ports   *port.Directory
	mac     net.HardwareAddr
}

func newRifTable(gateway *sai.Gateway, ports *port.Directory, mac net.HardwareAddr) *rifTable {
	return &rifTable{
		entries: make(map[string]*RifState),
		gateway: gateway,
		ports:   ports,
		mac:     mac,
	}
}

func (t *rifTable) get(alias string) (*RifState, bool) {
	rs, ok := t.entries[alias]
	return rs, ok
}

// ensureRIF makes sure p has a router interface bound to vrf, creating it
// through the gateway on first need and syncing the MTU afterwards. It
// returns the refreshed port descriptor.
func (t *rifTable) ensureRIF(p port.Port, vrfID sai.ObjectID) (port.Port, error) {
	if p.RIF != sai.NullObjectID {
		rs, ok := t.entries[p.Alias]
		if !ok {
			rs = &RifState{Addresses: make(map[util.Prefix]struct{}), VRF: vrfID, MTU: p.MTU}
			t.entries[p.Alias] = rs
		}
		if rs.MTU != p.MTU {
			if err := t.gateway.SetRIFMTU(p.RIF, p.MTU); err != nil {
				return p, err
			}
			rs.MTU = p.MTU
		}
		return p, nil
	}

	attach, kind, err := p.RIFAttachment()
	if err != nil {
		return p, err
	}
	rif, err := t.gateway.CreateRIF(sai.RIFAttrs{
		Kind:   kind,
		Attach: attach,
		VRF:    vrfID,
		SrcMAC: t.mac,
		MTU:    p.MTU,
	})
	if err != nil {
		return p, err
	}

	if err := t.ports.BindRIF(p.Alias, rif, vrfID); err != nil {
		return p, err
	}
	p.RIF = rif
	p.VRF = vrfID
	t.entries[p.Alias] = &RifState{
		Addresses: make(map[util.Prefix]struct{}),
		VRF:       vrfID,
		MTU:       p.MTU,
	}

	util.WithIntf(p.Alias).Infof("Created router interface, mtu %d", p.MTU)
	return p, nil
}

// tryRemoveRIF removes p's router interface. A referenced interface
// returns ErrInUse and stays; callers retry when the count drops.
func (t *rifTable) tryRemoveRIF(p port.Port) error {
	rs, ok := t.entries[p.Alias]
	if !ok {
		return nil
	}
	if rs.RefCount > 0 {
		return fmt.Errorf("router interface %s has %d references: %w", p.Alias, rs.RefCount, util.ErrInUse)
	}

	if p.RIF != sai.NullObjectID {
		if err := t.gateway.RemoveRIF(p.RIF); err != nil {
			return err
		}
		if err := t.ports.BindRIF(p.Alias, sai.NullObjectID, sai.NullObjectID); err != nil {
			return err
		}
	}
	delete(t.entries, p.Alias)

	util.WithIntf(p.Alias).Info("Removed router interface")
	return nil
}

// ensureLoopback tracks a loopback alias with a sentinel entry.
func (t *rifTable) ensureLoopback(alias string) {
	if _, ok := t.entries[alias]; !ok {
		t.entries[alias] = &RifState{}
	}
}

// incRef bumps the reference count; called when a subnet route owned by
// alias activates and by external next-hop holders.
func (t *rifTable) incRef(alias string) {
	rs, ok := t.entries[alias]
	if !ok {
		return
	}
	rs.RefCount++
	util.WithIntf(alias).Debugf("Router interface ref count increased to %d", rs.RefCount)
}

// decRef drops the reference count.
func (t *rifTable) decRef(alias string) {
	rs, ok := t.entries[alias]
	if !ok {
		return
	}
	rs.RefCount--
	util.WithIntf(alias).Debugf("Router interface ref count decreased to %d", rs.RefCount)
}
