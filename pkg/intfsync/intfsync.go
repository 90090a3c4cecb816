// Package intfsync publishes kernel interface addresses into APPL_DB.
// It subscribes to netlink address events and mirrors them as INTF_TABLE
// records keyed "<iface>:<addr>", which intfsorch consumes.
package intfsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/vishvananda/netlink"

	"github.com/praveen-li/sonic-swss/pkg/swss"
	"github.com/praveen-li/sonic-swss/pkg/util"
)

// Interfaces whose addresses are never synced; their link-local noise
// would otherwise churn the bus.
var ignoredInterfaces = map[string]struct{}{
	"dummy": {},
	"usb0":  {},
}

const (
	vlanPrefix = "Vlan"
	portPrefix = "Ethernet"
	lagPrefix  = "PortChannel"
)

// publisher is the APPL_DB write side.
type publisher interface {
	Set(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
}

// stateReader is a STATE_DB table read side.
type stateReader interface {
	Get(ctx context.Context, key string) (map[string]string, bool, error)
}

// IntfSync mirrors netlink address state into INTF_TABLE.
type IntfSync struct {
	intfTable publisher

	statePort stateReader
	stateLag  stateReader
	stateVlan stateReader

	// linkName resolves an ifindex to its name; replaceable in tests.
	linkName func(index int) (string, error)
}

// New creates a syncer over the APPL_DB and STATE_DB connectors.
func New(appDB, stateDB *swss.DBConnector) *IntfSync {
	return &IntfSync{
		intfTable: swss.NewProducerStateTable(appDB, swss.IntfTableName),
		statePort: swss.NewTable(stateDB, swss.StatePortTableName, "|"),
		stateLag:  swss.NewTable(stateDB, swss.StateLagTableName, "|"),
		stateVlan: swss.NewTable(stateDB, swss.StateVlanTableName, "|"),
		linkName:  defaultLinkName,
	}
}

func defaultLinkName(index int) (string, error) {
	link, err := netlink.LinkByIndex(index)
	if err != nil {
		return "", fmt.Errorf("resolving ifindex %d: %w", index, err)
	}
	return link.Attrs().Name, nil
}

// Run subscribes to address updates and publishes until ctx is done.
func (s *IntfSync) Run(ctx context.Context) error {
	updates := make(chan netlink.AddrUpdate)
	done := make(chan struct{})
	defer close(done)

	if err := netlink.AddrSubscribe(updates, done); err != nil {
		return fmt.Errorf("subscribing to address updates: %w", err)
	}
	util.Infof("intfsync listening for address updates")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return fmt.Errorf("netlink address subscription closed")
			}
			if err := s.handleAddr(ctx, u); err != nil {
				util.Warnf("intfsync: %v", err)
			}
		}
	}
}

// isIntfStateOk reports whether the interface has been marked ready in
// STATE_DB. Stale kernel interfaces left over from a config reload are
// not ready and their addresses are dropped.
func (s *IntfSync) isIntfStateOk(ctx context.Context, alias string) (bool, error) {
	var table stateReader
	switch {
	case strings.HasPrefix(alias, vlanPrefix):
		table = s.stateVlan
	case strings.HasPrefix(alias, lagPrefix):
		table = s.stateLag
	case strings.HasPrefix(alias, portPrefix):
		table = s.statePort
	default:
		// Special interfaces (lo, mgmt) are always considered ready.
		return true, nil
	}
	_, ok, err := table.Get(ctx, alias)
	return ok, err
}

// handleAddr publishes one netlink address update.
func (s *IntfSync) handleAddr(ctx context.Context, u netlink.AddrUpdate) error {
	alias, err := s.linkName(u.LinkIndex)
	if err != nil {
		return err
	}

	if _, drop := ignoredInterfaces[alias]; drop {
		util.WithIntf(alias).Debugf("Ignoring address %s", u.LinkAddress.String())
		return nil
	}

	family := "IPv4"
	if u.LinkAddress.IP.To4() == nil {
		family = "IPv6"
	}
	scope := "local"
	if u.Scope == int(netlink.SCOPE_UNIVERSE) {
		scope = "global"
	}

	ok, err := s.isIntfStateOk(ctx, alias)
	if err != nil {
		return err
	}
	if !ok {
		util.WithIntf(alias).Infof("Interface not ready, skipping address %s", u.LinkAddress.String())
		return nil
	}

	key := alias + ":" + u.LinkAddress.String()
	if !u.NewAddr {
		return s.intfTable.Del(ctx, key)
	}
	return s.intfTable.Set(ctx, key, map[string]string{
		"family": family,
		"scope":  scope,
	})
}
