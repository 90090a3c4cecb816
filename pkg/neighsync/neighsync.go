// Package neighsync publishes kernel neighbor (ARP/NDP) state into
// APPL_DB. Netlink neighbor events become NEIGH_TABLE records keyed
// "<iface>:<ip>" with the resolved MAC; unresolved and deleted neighbors
// become deletes.
package neighsync

import (
	"context"
	"fmt"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/praveen-li/sonic-swss/pkg/swss"
	"github.com/praveen-li/sonic-swss/pkg/util"
)

// publisher is the APPL_DB write side.
type publisher interface {
	Set(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
}

// NeighSync mirrors netlink neighbor state into NEIGH_TABLE.
type NeighSync struct {
	neighTable publisher

	linkName func(index int) (string, error)
}

// New creates a syncer over the APPL_DB connector.
func New(appDB *swss.DBConnector) *NeighSync {
	return &NeighSync{
		neighTable: swss.NewProducerStateTable(appDB, swss.NeighTableName),
		linkName:   defaultLinkName,
	}
}

func defaultLinkName(index int) (string, error) {
	link, err := netlink.LinkByIndex(index)
	if err != nil {
		return "", fmt.Errorf("resolving ifindex %d: %w", index, err)
	}
	return link.Attrs().Name, nil
}

// Run subscribes to neighbor updates and publishes until ctx is done.
func (s *NeighSync) Run(ctx context.Context) error {
	updates := make(chan netlink.NeighUpdate)
	done := make(chan struct{})
	defer close(done)

	if err := netlink.NeighSubscribe(updates, done); err != nil {
		return fmt.Errorf("subscribing to neighbor updates: %w", err)
	}
	util.Infof("neighsync listening for neighbor updates")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return fmt.Errorf("netlink neighbor subscription closed")
			}
			if err := s.handleNeigh(ctx, u); err != nil {
				util.Warnf("neighsync: %v", err)
			}
		}
	}
}

// handleNeigh publishes one netlink neighbor update.
func (s *NeighSync) handleNeigh(ctx context.Context, u netlink.NeighUpdate) error {
	if u.Type != unix.RTM_NEWNEIGH && u.Type != unix.RTM_DELNEIGH {
		return nil
	}
	if u.IP == nil {
		return nil
	}

	var family string
	switch u.Family {
	case unix.AF_INET:
		family = "IPv4"
	case unix.AF_INET6:
		family = "IPv6"
	default:
		return nil
	}

	// IPv6 multicast link-local destinations are not real neighbors.
	if family == "IPv6" && u.IP.IsLinkLocalMulticast() {
		return nil
	}

	alias, err := s.linkName(u.LinkIndex)
	if err != nil {
		return err
	}
	key := alias + ":" + u.IP.String()

	if u.Type == unix.RTM_DELNEIGH || u.State == netlink.NUD_INCOMPLETE || u.State == netlink.NUD_FAILED {
		return s.neighTable.Del(ctx, key)
	}

	return s.neighTable.Set(ctx, key, map[string]string{
		"family": family,
		"neigh":  u.HardwareAddr.String(),
	})
}
