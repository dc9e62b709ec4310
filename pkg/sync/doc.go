/*
Package sync reconciles a local replica of a model with a remote one.

Local commands are staged against an optimistic view of the model and queued until they
are confirmed. A reconciliation pass applies the events which happened remotely since the
last checkpoint, rebases the queued commands on these events and resubmits them against the
local model. Each local change is resolved exactly once, through its handle and its
optional callback.

Rebasing a queued command follows these rules, for every atomic command it holds:
  - forced commands, and commands which do not expect a concrete revision, are kept verbatim
  - a command expecting a concrete revision of an entity touched remotely (the entity
    itself, one of its ancestors or one of its descendants) is doomed: the local change
    fails without being resubmitted
  - otherwise, the expected revision is shifted by the number of remote events
*/
package sync
