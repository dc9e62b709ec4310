/*
Package strata is an embeddable, versioned store of hierarchical objects.

Data is organized as a containment tree: a repository holds models, a model holds objects,
an object holds fields and a field holds a value. Every entity carries the revision of the
last change which touched it.

Changes are expressed as commands (add, change or remove an entity, or a transaction of
several of them). The executor checks a command against the revisions it expects, applies it
atomically and records the resulting event in the change log of the model. Listeners
subscribed to an entity are notified of the events on this entity and its content.

The main packages are:

  - pkg/model: identifiers, addresses, values and read-only views of the tree
  - pkg/command: commands and transactions
  - pkg/change: staged changes over a read-only model, and transaction building
  - pkg/event: events and the listener registry
  - pkg/core: the live tree, the executor, change logs and replay
  - pkg/sync: reconciliation of optimistic local changes with a remote store
  - pkg/serialize: JSON and YAML documents for values, commands, events and snapshots
  - pkg/kv, pkg/persist: change logs persisted on badger or pebble, snapshot files

The strata command line tool is in cmd/strata.
*/
package strata
