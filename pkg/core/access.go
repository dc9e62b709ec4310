package core

import (
	"sync"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/oneconcern/strata/pkg/model"
)

// Right is a permission granted to an actor on some address
type Right int

// Rights
const (
	RightRead Right = 1 << iota
	RightWrite
)

// Authorizer tells if an actor may exercise some right on an entity.
//
// The executor consults its authorizer before checking a command: a denied
// command fails like any other failed command.
type Authorizer interface {
	Allowed(actor model.ID, addr model.Address, right Right) bool
}

// AllowAll grants every right to every actor
type AllowAll struct{}

// Allowed always returns true
func (AllowAll) Allowed(model.ID, model.Address, Right) bool { return true }

var (
	_ Authorizer = AllowAll{}
	_ Authorizer = &ACL{}
)

// ACL grants rights to actors on addresses. A right granted on an address holds on
// every entity below it.
type ACL struct {
	mx   sync.RWMutex
	tree *iradix.Tree
}

// NewACL builds an access control list which grants nothing
func NewACL() *ACL {
	return &ACL{tree: iradix.New()}
}

func aclKey(addr model.Address) []byte {
	if addr.IsZero() {
		return []byte("/")
	}
	return []byte(addr.String() + "/")
}

// Grant some rights to an actor on an address
func (a *ACL) Grant(actor model.ID, addr model.Address, rights Right) {
	a.mx.Lock()
	defer a.mx.Unlock()

	key := aclKey(addr)
	grants := make(map[model.ID]Right)
	if v, ok := a.tree.Get(key); ok {
		for k, r := range v.(map[model.ID]Right) {
			grants[k] = r
		}
	}
	grants[actor] |= rights
	a.tree, _, _ = a.tree.Insert(key, grants)
}

// Revoke some rights from an actor on an address. Rights granted on ancestors are not affected.
func (a *ACL) Revoke(actor model.ID, addr model.Address, rights Right) {
	a.mx.Lock()
	defer a.mx.Unlock()

	key := aclKey(addr)
	v, ok := a.tree.Get(key)
	if !ok {
		return
	}
	grants := make(map[model.ID]Right)
	for k, r := range v.(map[model.ID]Right) {
		grants[k] = r
	}
	grants[actor] &^= rights
	if grants[actor] == 0 {
		delete(grants, actor)
	}
	a.tree, _, _ = a.tree.Insert(key, grants)
}

// Allowed tells if the actor was granted the right on this address or one of its ancestors
func (a *ACL) Allowed(actor model.ID, addr model.Address, right Right) bool {
	a.mx.RLock()
	tree := a.tree
	a.mx.RUnlock()

	allowed := false
	tree.Root().WalkPath(aclKey(addr), func(_ []byte, v interface{}) bool {
		if v.(map[model.ID]Right)[actor]&right != 0 {
			allowed = true
			return true
		}
		return false
	})
	return allowed
}
