// Package serde converts between in-memory node graphs and flat lists of
// records keyed by identifier.
//
// # Overview
//
// Nodes hold direct pointers to the nodes they own and reference. On disk
// every pointer becomes the target's identifier, and every node becomes one
// [Record]. Indirection through identifiers is what lets shared and cyclic
// references survive a round trip: the [Serializer] emits each node once no
// matter how many edges reach it, and the [Deserializer] memoizes nodes by
// identifier so every edge to the same record resolves to the same pointer.
//
// # Writing
//
//	rs, err := serde.Serialize(modelRoot, viewRoot)
//
// Owned children are visited recursively; reference targets are not. A
// reference whose target never received a record is a STRUCTURE_ERROR, so a
// successful [Serialize] always yields a referentially closed [RecordSet].
//
// # Reading
//
//	d := serde.NewDeserializer(registry, rs)
//	root, err := serde.GetAs[*umlclass.Diagram](d, id)
//
// The deserializer allocates a node and caches it before resolving its
// fields, so cycles terminate. The first error poisons the deserializer:
// its cache is dropped and every later call returns the same error.
package serde
