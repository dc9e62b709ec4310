// Package serialize converts values, commands, events and model snapshots to and from
// plain documents, encoded as JSON or YAML.
//
// Documents only use strings, numbers and lists so that they read well in both formats.
// Addresses are written in their string form, e.g. "/repo/model/object/field".
package serialize
