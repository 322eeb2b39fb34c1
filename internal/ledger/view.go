package ledger

import (
	"context"
	"errors"
	"sort"

	"github.com/LeJamon/goVaultd/internal/core/tx"
	"github.com/LeJamon/goVaultd/internal/storage/database"
)

// Resource fee schedule, charged per invocation.
const (
	feePerRead  = 10
	feePerWrite = 100
)

// view layers uncommitted writes over the contract's stored state. A view
// with a nil footprint records what the invocation touches; otherwise
// accesses outside the footprint fail.
type view struct {
	ctx      context.Context
	db       database.DB
	prefix   string
	instance string
	parent   *view
	writes   map[string][]byte

	footprint *tx.Footprint
	signers   map[string]bool
	auth      []string
	closeTime uint64

	reads, written int
}

func newView(ctx context.Context, db database.DB, contract string, closeTime uint64) *view {
	return &view{
		ctx:       ctx,
		db:        db,
		prefix:    "contract/" + contract + "/",
		instance:  instanceKey(contract),
		writes:    make(map[string][]byte),
		closeTime: closeTime,
	}
}

// instanceKey is the single footprint entry covering a contract's storage.
func instanceKey(contract string) string {
	return contract + ":instance"
}

// child returns a view whose writes are discarded unless merged.
func (v *view) child(fp *tx.Footprint, signers []string) *view {
	c := &view{
		ctx:       v.ctx,
		db:        v.db,
		prefix:    v.prefix,
		instance:  v.instance,
		parent:    v,
		writes:    make(map[string][]byte),
		footprint: fp,
		signers:   make(map[string]bool, len(signers)),
		closeTime: v.closeTime,
	}
	for _, s := range signers {
		c.signers[s] = true
	}
	return c
}

func (v *view) lookup(key string) ([]byte, bool, error) {
	if val, ok := v.writes[key]; ok {
		return val, true, nil
	}
	if v.parent != nil {
		return v.parent.lookup(key)
	}
	raw, err := v.db.Read(v.ctx, []byte(v.prefix+key))
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (v *view) get(key string) ([]byte, bool, error) {
	if v.footprint != nil && !v.footprint.Covers(v.instance, false) {
		return nil, false, fail("storage access outside footprint")
	}
	v.reads++
	return v.lookup(key)
}

func (v *view) put(key string, value []byte) error {
	if v.footprint != nil && !v.footprint.Covers(v.instance, true) {
		return fail("storage write outside footprint")
	}
	v.written++
	v.writes[key] = value
	return nil
}

// requireAuth passes in recording mode and records addr; otherwise addr
// must have signed the envelope.
func (v *view) requireAuth(addr string) error {
	for _, a := range v.auth {
		if a == addr {
			return nil
		}
	}
	if v.footprint != nil && !v.signers[addr] {
		return fail(MsgUnauthorized)
	}
	v.auth = append(v.auth, addr)
	return nil
}

func (v *view) now() uint64 {
	return v.closeTime
}

// recorded returns the footprint the invocation needs.
func (v *view) recorded() tx.Footprint {
	if v.written > 0 {
		return tx.Footprint{ReadWrite: []string{v.instance}}
	}
	return tx.Footprint{ReadOnly: []string{v.instance}}
}

func (v *view) resourceFee() uint64 {
	return uint64(v.reads)*feePerRead + uint64(v.written)*feePerWrite
}

// merge moves the child's writes into its parent.
func (v *view) merge() {
	for k, val := range v.writes {
		v.parent.writes[k] = val
	}
}

// batch returns the view's writes as database operations in key order.
func (v *view) batch() []database.BatchOperation {
	keys := make([]string, 0, len(v.writes))
	for k := range v.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ops := make([]database.BatchOperation, 0, len(keys))
	for _, k := range keys {
		ops = append(ops, database.Put([]byte(v.prefix+k), v.writes[k]))
	}
	return ops
}
