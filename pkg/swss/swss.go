// Package swss implements the Redis-backed database substrate the swss
// daemons communicate through: database connectors, the producer/consumer
// state-table protocol used across APPL_DB, and the in-memory pending map
// the orchestration agents drain.
package swss

// SONiC database numbers on the shared redis instance.
const (
	ApplDB   = 0
	ConfigDB = 4
	StateDB  = 6
)

// APPL_DB table names produced and consumed by the daemons here.
const (
	IntfTableName      = "INTF_TABLE"
	NeighTableName     = "NEIGH_TABLE"
	IntfErrorTableName = "INTF_ERROR_TABLE"
)

// STATE_DB tables consulted for interface readiness.
const (
	StatePortTableName = "PORT_TABLE"
	StateLagTableName  = "LAG_TABLE"
	StateVlanTableName = "VLAN_TABLE"
)

// Operations carried on the event bus.
const (
	SetCommand = "SET"
	DelCommand = "DEL"
)

// KeyOpFieldsValues is one event on the bus: a table key, the operation,
// and the record's field/value pairs.
type KeyOpFieldsValues struct {
	Key    string
	Op     string
	Fields map[string]string
}
