// Copyright © 2018 One Concern

/*
Package persist keeps repositories on disk.

A LogStore is a commit hook which writes every committed event to a key-value store,
one key per model revision:

	log/<model address>/<revision>   JSON event document
	head/<model address>             last persisted revision
	models/<model address>           present once the model has been seen

A repository is rebuilt from its persisted log with LogStore.Restore, which replays
every model's events in revision order.

A SnapshotStore writes detached model snapshots as YAML files on an afero file system,
one file per model revision.
*/
package persist
