package control

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/topolab-net/topolab/pkg/util"
	"github.com/topolab-net/topolab/pkg/vrf"
)

// configDBNum is the redis database number of SONiC's CONFIG_DB.
const configDBNum = 4

// ConfigDB applies routing-instance plans to a SONiC device by writing
// CONFIG_DB entries over redis instead of running iproute2 commands. VRF
// creation becomes a VRF table entry and interface binding becomes the
// vrf_name field on the INTERFACE entry; the device's own agents react to
// the writes.
type ConfigDB struct {
	Node string

	client *redis.Client
}

// hashWrite is one CONFIG_DB table entry write.
type hashWrite struct {
	Table  string
	Key    string
	Fields map[string]string
}

// NewConfigDB returns a CONFIG_DB applier for the device at addr.
func NewConfigDB(node, addr string) *ConfigDB {
	return &ConfigDB{
		Node: node,
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   configDBNum,
		}),
	}
}

// Connect verifies the redis connection.
func (d *ConfigDB) Connect(ctx context.Context) error {
	if err := d.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("control: config_db connect %s: %w", d.Node, err)
	}
	return nil
}

// Close releases the redis connection.
func (d *ConfigDB) Close() error {
	return d.client.Close()
}

// ApplyPlan translates each plan command into CONFIG_DB writes and applies
// them in plan order.
func (d *ConfigDB) ApplyPlan(ctx context.Context, plan []vrf.Command) error {
	for _, c := range plan {
		for _, w := range configDBWrites(c) {
			if err := d.set(ctx, w.Table, w.Key, w.Fields); err != nil {
				return fmt.Errorf("control: apply %s on %s: %w", c.Op, d.Node, err)
			}
		}
		util.WithNode(d.Node).Debugf("config_db applied %s %s", c.Op, c.Instance)
	}
	return nil
}

// configDBWrites maps one plan command to its CONFIG_DB entries. The up
// step has no CONFIG_DB equivalent; VRF devices are admin-up on creation.
func configDBWrites(c vrf.Command) []hashWrite {
	switch c.Op {
	case vrf.OpCreateInstance:
		return []hashWrite{{
			Table:  "VRF",
			Key:    c.Instance,
			Fields: map[string]string{"table": strconv.Itoa(c.Table)},
		}}
	case vrf.OpBindInterface:
		return []hashWrite{{
			Table:  "INTERFACE",
			Key:    c.Interface,
			Fields: map[string]string{"vrf_name": c.Instance},
		}}
	}
	return nil
}

// set writes one table entry as a redis hash keyed "TABLE|KEY". Entries
// without fields get the NULL placeholder SONiC expects.
func (d *ConfigDB) set(ctx context.Context, table, key string, fields map[string]string) error {
	redisKey := table + "|" + key
	if len(fields) == 0 {
		return d.client.HSet(ctx, redisKey, "NULL", "NULL").Err()
	}
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return d.client.HSet(ctx, redisKey, args...).Err()
}
