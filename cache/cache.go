// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

/*
Package cache defines the interface between the credential and the persistent
store holding the shared token cache. The store is read-only from this
module's perspective: a Loader fills the in-memory cache, nothing is ever
written back. Implementations that decrypt platform keyrings or talk to
remote stores plug in here; the data passed is considered opaque.
*/
package cache

import "context"

// Unmarshaler unmarshals data from a storage medium into the in-memory
// cache, overwriting it.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Partition names one partition of the shared cache. Tokens subject to
// Continuous Access Evaluation have different revocation semantics and live
// in their own partition; the two are never merged.
type Partition string

const (
	// Standard is the partition holding ordinary tokens.
	Standard Partition = "standard"
	// CAE is the partition holding Continuous Access Evaluation tokens.
	CAE Partition = "cae"
)

// Loader reads one partition of the shared cache from persistent storage.
// Load reports false when the partition does not exist in the store; that is
// not an error. Implementations must honor Context cancellation and must not
// mutate the store.
type Loader interface {
	Load(ctx context.Context, cache Unmarshaler, partition Partition) (bool, error)
}
