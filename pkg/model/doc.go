// Package model describes the base objects manipulated by strata.
//
// The object model for strata is a containment tree:
//
//  Repositories:
//    A repository holds models. It has no revision of its own.
//
//  Models:
//    A model is the unit of versioning. Every committed change to a model or
//    anything it contains advances the model revision by one.
//
//  Objects:
//    An object belongs to exactly one model and holds fields.
//
//  Fields:
//    A field belongs to exactly one object and holds at most one value.
//
// Entities are located by an Address and identified within their parent by an ID.
//
// This package exposes the read side of the tree (Readable* interfaces), detached
// snapshots (*State types) and the value kinds. The live, mutable tree and the
// commit protocol live in package core.
package model
