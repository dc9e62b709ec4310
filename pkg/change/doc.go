// Package change stages changes to a model before committing them.
//
// A ChangedModel is a diff layered over a read-only base model: objects added, objects
// removed and, for the objects which survive, their own field diffs. Every read answers
// as if the staged changes were already applied, while the base is never modified.
//
// The TransactionBuilder turns the diff of a ChangedModel into the ordered commands
// which reproduce it: containers are created before their content, content is removed
// before its container.
//
// The check rules used to stage commands are the same as the ones used by the store to
// commit them, so that a command staged successfully commits successfully on the same base.
package change
