// Package intfsorch reconciles desired L3 interface configuration against
// the forwarding plane. It consumes INTF_TABLE events, owns router
// interfaces and their auxiliary routes (subnet, ip2me, directed
// broadcast), and keeps overlapping interface routes consistent with the
// kernel's tie-breaking through FIFO shadow promotion.
package intfsorch

import (
	"errors"
	"fmt"
	"net"
	"regexp"

	"github.com/praveen-li/sonic-swss/pkg/orchagent/port"
	"github.com/praveen-li/sonic-swss/pkg/orchagent/sai"
	"github.com/praveen-li/sonic-swss/pkg/orchagent/vrf"
	"github.com/praveen-li/sonic-swss/pkg/swss"
	"github.com/praveen-li/sonic-swss/pkg/util"
)

const loopbackAlias = "lo"

// keyPattern matches "<iface>[:<prefix>]" bus keys.
var keyPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_.-]*)(?::([^ ]+))?$`)

// ignoredAliases are kernel interfaces that never become router
// interfaces: the management port, the docker bridge, the host bridge.
var ignoredAliases = map[string]struct{}{
	"eth0":    {},
	"docker0": {},
	"Bridge":  {},
}

// ErrorSink receives a negative acknowledgement for an event that failed
// fatally and was consumed.
type ErrorSink func(key, op, reason string)

// Orch is the interface reconciler. It is the sole mutator of the RIF
// table and the route index; everything runs on one goroutine.
type Orch struct {
	consumer  *swss.Consumer
	gateway   *sai.Gateway
	ports     *port.Directory
	vrfs      *vrf.Directory
	rifs      *rifTable
	routes    *routeIndex
	errorSink ErrorSink
}

// New wires a reconciler to its collaborators. routerMAC is programmed as
// the source MAC of every router interface.
func New(consumer *swss.Consumer, gateway *sai.Gateway, ports *port.Directory, vrfs *vrf.Directory, routerMAC net.HardwareAddr) *Orch {
	return &Orch{
		consumer: consumer,
		gateway:  gateway,
		ports:    ports,
		vrfs:     vrfs,
		rifs:     newRifTable(gateway, ports, routerMAC),
		routes:   newRouteIndex(),
	}
}

// SetErrorSink installs the negative-acknowledgement sink.
func (o *Orch) SetErrorSink(fn ErrorSink) {
	o.errorSink = fn
}

// IncreaseRifRefCount records an external hold on a router interface,
// e.g. a next-hop resolver referencing it.
func (o *Orch) IncreaseRifRefCount(alias string) {
	o.rifs.incRef(alias)
}

// DecreaseRifRefCount releases an external hold.
func (o *Orch) DecreaseRifRefCount(alias string) {
	o.rifs.decRef(alias)
}

// DoTask runs one drain cycle over the pending map. Events that cannot
// make progress stay pending and are retried on the next cycle.
func (o *Orch) DoTask() {
	for _, ev := range o.consumer.Snapshot() {
		o.processEvent(ev)
	}
}

func (o *Orch) processEvent(ev swss.KeyOpFieldsValues) {
	m := keyPattern.FindStringSubmatch(ev.Key)
	if m == nil {
		util.WithTable(swss.IntfTableName).Errorf("Malformed key %q, dropping", ev.Key)
		o.consumer.Consume(ev.Key)
		return
	}
	alias, prefixStr := m[1], m[2]

	if _, ok := ignoredAliases[alias]; ok {
		o.consumer.Consume(ev.Key)
		return
	}

	var prefix util.Prefix
	if prefixStr != "" {
		var err error
		prefix, err = util.ParsePrefix(prefixStr)
		if err != nil {
			util.WithIntf(alias).Errorf("Dropping event with bad prefix: %v", err)
			o.consumer.Consume(ev.Key)
			return
		}
	}

	vrfName, vnetName := ev.Fields["vrf_name"], ev.Fields["vnet_name"]
	if vrfName != "" && vnetName != "" {
		util.WithIntf(alias).Errorf("Both vrf_name %q and vnet_name %q set, dropping", vrfName, vnetName)
		o.consumer.Consume(ev.Key)
		return
	}

	vrfID := o.vrfs.Default()
	switch {
	case vnetName != "":
		id, ok := o.vrfs.LookupVNet(vnetName)
		if !ok {
			util.WithIntf(alias).Infof("VNet %s not ready, deferring", vnetName)
			return
		}
		vrfID = id
	case vrfName != "":
		id, ok := o.vrfs.LookupVRF(vrfName)
		if !ok {
			util.WithIntf(alias).Infof("VRF %s not ready, deferring", vrfName)
			return
		}
		vrfID = id
	}

	if scope := ev.Fields["scope"]; scope != "" {
		util.WithIntf(alias).Debugf("Address scope %s", scope)
	}

	var err error
	switch {
	case alias == loopbackAlias:
		err = o.handleLoopback(ev.Op, alias, prefix, vrfID)
	default:
		p, ok := o.ports.Get(alias)
		if !ok {
			util.WithIntf(alias).Infof("Missing port for address %s, deferring", prefixStr)
			return
		}
		switch {
		case p.Kind == port.Loopback:
			err = o.handleLoopback(ev.Op, alias, prefix, vrfID)
		case ev.Op == swss.SetCommand:
			err = o.handleSet(p, vrfID, prefix)
		case ev.Op == swss.DelCommand:
			err = o.handleDelete(p, vrfID, prefix)
		default:
			util.WithIntf(alias).Errorf("Unknown operation %q, dropping", ev.Op)
			o.consumer.Consume(ev.Key)
			return
		}
	}

	if err != nil {
		o.failEvent(ev, err)
		return
	}
	o.consumer.Consume(ev.Key)
}

// failEvent classifies err and decides whether the event stays pending.
func (o *Orch) failEvent(ev swss.KeyOpFieldsValues, err error) {
	log := util.WithIntf(ev.Key)
	switch {
	case errors.Is(err, util.ErrDuplicate):
		log.Infof("%v", err)
		o.consumer.Consume(ev.Key)
	case errors.Is(err, util.ErrOverlapDeferred):
		log.Infof("Deferring: %v", err)
	case errors.Is(err, util.ErrDependencyMissing), errors.Is(err, util.ErrInUse):
		log.Infof("Deferring: %v", err)
	case errors.Is(err, sai.ErrBusy):
		log.Warnf("Transient driver failure, will retry: %v", err)
	case errors.Is(err, util.ErrInvalidInput):
		log.Errorf("Dropping: %v", err)
		o.consumer.Consume(ev.Key)
	default:
		// Fatal driver failures are consumed so a poison event cannot
		// wedge the queue; operators observe via the error table.
		log.Errorf("Giving up on event: %v", err)
		if o.errorSink != nil {
			o.errorSink(ev.Key, ev.Op, err.Error())
		}
		o.consumer.Consume(ev.Key)
	}
}

// handleLoopback services loopback aliases: routes are tracked and
// installed but no forwarding-plane RIF exists, and the synced entry is a
// sentinel with no address bookkeeping.
func (o *Orch) handleLoopback(op, alias string, prefix util.Prefix, vrfID sai.ObjectID) error {
	lo := port.Port{Alias: alias, Kind: port.Loopback}
	switch op {
	case swss.SetCommand:
		if prefix.IsValid() {
			if err := o.createIntfRoutes(prefix, lo, vrfID); err != nil {
				return err
			}
		}
		o.rifs.ensureLoopback(alias)
		return nil
	case swss.DelCommand:
		if prefix.IsValid() {
			return o.deleteIntfRoutes(prefix, lo, vrfID)
		}
		return nil
	}
	return fmt.Errorf("unknown operation %q: %w", op, util.ErrInvalidInput)
}

func (o *Orch) handleSet(p port.Port, vrfID sai.ObjectID, prefix util.Prefix) error {
	var err error
	p, err = o.rifs.ensureRIF(p, vrfID)
	if err != nil {
		return err
	}
	if !prefix.IsValid() {
		return nil
	}

	rs, _ := o.rifs.get(p.Alias)
	if _, ok := rs.Addresses[prefix]; ok {
		return fmt.Errorf("address %s already configured on %s: %w", prefix, p.Alias, util.ErrDuplicate)
	}
	// Legacy two-stage address sets arrive as a nested prefix before the
	// final one; hold the event until the earlier address goes away.
	for a := range rs.Addresses {
		if a != prefix && a.Overlaps(prefix) {
			return fmt.Errorf("address %s overlaps configured %s on %s: %w", prefix, a, p.Alias, util.ErrOverlapDeferred)
		}
	}

	if err := o.createIntfRoutes(prefix, p, vrfID); err != nil {
		return err
	}
	rs.Addresses[prefix] = struct{}{}
	return nil
}

func (o *Orch) handleDelete(p port.Port, vrfID sai.ObjectID, prefix util.Prefix) error {
	rs, ok := o.rifs.get(p.Alias)
	if !ok {
		util.WithIntf(p.Alias).Debugf("No synced state for delete of %s", prefix)
		return nil
	}
	if rs.VRF != sai.NullObjectID {
		vrfID = rs.VRF
	}

	if prefix.IsValid() {
		if _, present := rs.Addresses[prefix]; present {
			if err := o.deleteIntfRoutes(prefix, p, vrfID); err != nil {
				return err
			}
			delete(rs.Addresses, prefix)
		}
	}

	if len(rs.Addresses) == 0 && p.Kind != port.Loopback {
		return o.rifs.tryRemoveRIF(p)
	}
	return nil
}

// derivedRoutes lists the interface routes prefix implies on p, in
// installation order: subnet, ip2me, directed broadcast.
func (o *Orch) derivedRoutes(prefix util.Prefix, p port.Port) []IntfRoute {
	var entries []IntfRoute
	if p.Kind != port.Loopback && !prefix.IsFullHost() {
		entries = append(entries, IntfRoute{Prefix: prefix.Subnet(), Iface: p.Alias, Kind: RouteSubnet})
	}
	entries = append(entries, IntfRoute{Prefix: prefix.Host(), Iface: p.Alias, Kind: RouteIP2Me})
	if p.Kind == port.Vlan && prefix.IsV4() && prefix.MaskLen() <= 30 {
		bcast := util.MustParsePrefix(prefix.Broadcast().String() + "/32")
		entries = append(entries, IntfRoute{Prefix: bcast, Iface: p.Alias, Kind: RouteBcast})
	}
	return entries
}

func (o *Orch) createIntfRoutes(prefix util.Prefix, p port.Port, vrfID sai.ObjectID) error {
	for _, entry := range o.derivedRoutes(prefix, p) {
		if err := o.insertEntry(entry, p, vrfID); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orch) deleteIntfRoutes(prefix util.Prefix, p port.Port, vrfID sai.ObjectID) error {
	entries := o.derivedRoutes(prefix, p)
	for i := len(entries) - 1; i >= 0; i-- {
		if err := o.withdrawEntry(entries[i], p, vrfID); err != nil {
			return err
		}
	}
	return nil
}

// insertEntry tracks entry in the route index and installs it when it
// becomes the active head. A failed install is rolled out of the index so
// a retry starts from unchanged state.
func (o *Orch) insertEntry(entry IntfRoute, p port.Port, vrfID sai.ObjectID) error {
	fresh, dup := o.routes.insert(entry)
	if dup {
		util.WithIntf(entry.Iface).Warnf("New %s route %s duplicates a tracked entry, skipping", entry.Kind, entry.Prefix)
		return nil
	}
	if !fresh {
		head, _ := o.routes.head(entry.Prefix)
		util.WithIntf(entry.Iface).Infof("New %s route %s shadowed by interface %s", entry.Kind, entry.Prefix, head.Iface)
		return nil
	}
	if err := o.installEntry(entry, p, vrfID); err != nil {
		o.routes.commitWithdraw(entry.Prefix, entry.Iface)
		return err
	}
	if entry.Kind == RouteSubnet {
		o.rifs.incRef(entry.Iface)
	}
	return nil
}

// withdrawEntry removes entry from the route index, uninstalling it if it
// was active and promoting the oldest shadow in its place.
func (o *Orch) withdrawEntry(entry IntfRoute, p port.Port, vrfID sai.ObjectID) error {
	effect, old, next := o.routes.peekWithdraw(entry.Prefix, entry.Iface)
	switch effect {
	case withdrawNone:
		return nil
	case withdrawShadow:
		o.routes.commitWithdraw(entry.Prefix, entry.Iface)
		util.WithIntf(entry.Iface).Infof("Eliminated shadowed %s route %s", old.Kind, old.Prefix)
		return nil
	}

	// Active entry: uninstall before touching the index so a driver
	// failure leaves state unchanged for the retry.
	if err := o.uninstallEntry(old, p, vrfID); err != nil {
		return err
	}
	if old.Kind == RouteSubnet {
		o.rifs.decRef(old.Iface)
	}
	o.routes.commitWithdraw(entry.Prefix, entry.Iface)
	util.WithIntf(entry.Iface).Infof("Eliminated active %s route %s", old.Kind, old.Prefix)

	if next != nil {
		o.resurrectEntry(*next)
	}
	return nil
}

// resurrectEntry promotes a shadow entry into the forwarding plane after
// the active entry above it was withdrawn.
func (o *Orch) resurrectEntry(entry IntfRoute) {
	var p port.Port
	if entry.Iface == loopbackAlias {
		p = port.Port{Alias: loopbackAlias, Kind: port.Loopback}
	} else {
		var ok bool
		p, ok = o.ports.Get(entry.Iface)
		if !ok {
			util.WithIntf(entry.Iface).Infof("Missing port for resurrected route %s, leaving uninstalled", entry.Prefix)
			return
		}
	}

	vrfID := p.VRF
	if rs, ok := o.rifs.get(entry.Iface); ok && rs.VRF != sai.NullObjectID {
		vrfID = rs.VRF
	}
	if vrfID == sai.NullObjectID {
		vrfID = o.vrfs.Default()
	}

	util.WithIntf(entry.Iface).Infof("Resurrecting shadowed %s route %s", entry.Kind, entry.Prefix)
	if err := o.installEntry(entry, p, vrfID); err != nil {
		util.WithIntf(entry.Iface).Warnf("Resurrection of %s route %s failed: %v", entry.Kind, entry.Prefix, err)
		return
	}
	if entry.Kind == RouteSubnet {
		o.rifs.incRef(entry.Iface)
	}
}

func (o *Orch) installEntry(entry IntfRoute, p port.Port, vrfID sai.ObjectID) error {
	switch entry.Kind {
	case RouteSubnet:
		return o.gateway.CreateSubnetRoute(vrfID, entry.Prefix, p.RIF, p.Alias)
	case RouteIP2Me:
		cpu := o.ports.CPUPort()
		if cpu.PortID == sai.NullObjectID {
			return util.NewDependencyError("cpu port", "")
		}
		return o.gateway.CreateIP2MeRoute(vrfID, entry.Prefix, cpu.PortID)
	case RouteBcast:
		return o.gateway.CreateBcastNeighbor(p.RIF, entry.Prefix.Addr().String())
	}
	return fmt.Errorf("route kind %d: %w", entry.Kind, util.ErrInvalidInput)
}

func (o *Orch) uninstallEntry(entry IntfRoute, p port.Port, vrfID sai.ObjectID) error {
	switch entry.Kind {
	case RouteSubnet:
		return o.gateway.RemoveSubnetRoute(vrfID, entry.Prefix, p.RIF, p.Alias)
	case RouteIP2Me:
		return o.gateway.RemoveIP2MeRoute(vrfID, entry.Prefix)
	case RouteBcast:
		return o.gateway.RemoveBcastNeighbor(p.RIF, entry.Prefix.Addr().String())
	}
	return fmt.Errorf("route kind %d: %w", entry.Kind, util.ErrInvalidInput)
}
