// Package indicator computes moving-average families over multi-symbol price
// series and keeps the results in a registry under caller-chosen names.
package indicator

import "github.com/amirphl/simple-indicators/internal/registry"

// ErrNotFound is returned by the query surface for names never computed.
var ErrNotFound = registry.ErrNotFound
