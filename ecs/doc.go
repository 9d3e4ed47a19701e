// Package ecs implements an entity-component-system world: entity
// recycling via an index/version table, per-component sparse-set
// storage, multi-component views, and a binary world codec.
package ecs
