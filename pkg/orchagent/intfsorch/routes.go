package intfsorch

import (
	"github.com/praveen-li/sonic-swss/pkg/util"
)

// RouteKind tags what a tracked interface route installs on activation.
type RouteKind int

// Interface-route kinds.
const (
	RouteSubnet RouteKind = iota
	RouteIP2Me
	RouteBcast
)

func (k RouteKind) String() string {
	switch k {
	case RouteSubnet:
		return "subnet"
	case RouteIP2Me:
		return "ip2me"
	case RouteBcast:
		return "bcast"
	}
	return "unknown"
}

// IntfRoute is one tracked interface route. Identity is (Prefix, Iface);
// Kind selects the forwarding-plane operation when the entry activates.
type IntfRoute struct {
	Prefix util.Prefix
	Iface  string
	Kind   RouteKind
}

// withdrawEffect describes what withdrawing an entry did.
type withdrawEffect int

const (
	withdrawNone withdrawEffect = iota
	withdrawShadow
	withdrawHead
)

// routeIndex tracks every interface route in the system, keyed by the
// canonical prefix string. The front of each list is the active entry,
// the one installed in the forwarding plane; later entries are shadows
// kept in arrival order. FIFO promotion on withdrawal matches the
// kernel's first-in-keeps-it tie-breaking, so user-observed routing
// agrees with what the kernel reports.
//
// Example:
//
//	10.1.1.0/24 (subnet)   -> [eth1, eth2, eth3]
//	10.1.1.1/32 (ip2me)    -> [eth1]
//	fc00:1::/64 (subnet)   -> [eth1, eth2]
type routeIndex struct {
	entries map[string][]IntfRoute
}

func newRouteIndex() *routeIndex {
	return &routeIndex{entries: make(map[string][]IntfRoute)}
}

// insert appends entry to its prefix list. It reports whether the entry
// became the active head (fresh) and whether it was rejected as an exact
// duplicate of a tracked entry.
func (x *routeIndex) insert(entry IntfRoute) (fresh, dup bool) {
	key := entry.Prefix.String()
	list := x.entries[key]
	for _, cur := range list {
		if cur.Iface == entry.Iface {
			return false, true
		}
	}
	x.entries[key] = append(list, entry)
	return len(list) == 0, false
}

// peekWithdraw reports the effect withdrawing (prefix, iface) would have,
// without mutating the index. For a head withdrawal, next is the entry
// that would be promoted (nil when the list empties).
func (x *routeIndex) peekWithdraw(prefix util.Prefix, iface string) (effect withdrawEffect, old IntfRoute, next *IntfRoute) {
	list := x.entries[prefix.String()]
	for i, cur := range list {
		if cur.Iface != iface {
			continue
		}
		if i > 0 {
			return withdrawShadow, cur, nil
		}
		if len(list) > 1 {
			// Promotion must pick the oldest remaining entry to stay
			// consistent with the kernel's tie-breaking.
			n := list[1]
			return withdrawHead, cur, &n
		}
		return withdrawHead, cur, nil
	}
	return withdrawNone, IntfRoute{}, nil
}

// commitWithdraw removes (prefix, iface) from the index, erasing the key
// when the list empties.
func (x *routeIndex) commitWithdraw(prefix util.Prefix, iface string) {
	key := prefix.String()
	list := x.entries[key]
	for i, cur := range list {
		if cur.Iface == iface {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(x.entries, key)
		return
	}
	x.entries[key] = list
}

// head returns the active entry for a prefix.
func (x *routeIndex) head(prefix util.Prefix) (IntfRoute, bool) {
	list := x.entries[prefix.String()]
	if len(list) == 0 {
		return IntfRoute{}, false
	}
	return list[0], true
}

// headsByIface counts active entries of the given kind owned by iface.
func (x *routeIndex) headsByIface(iface string, kind RouteKind) int {
	n := 0
	for _, list := range x.entries {
		if len(list) > 0 && list[0].Iface == iface && list[0].Kind == kind {
			n++
		}
	}
	return n
}

// len returns the number of tracked prefixes.
func (x *routeIndex) len() int {
	return len(x.entries)
}
