// Package inventory collects the current set of workload IPs and their
// owning identity from a container runtime or an orchestrator, for the map
// reconciler to diff against the previously-installed identity map (spec
// §4, "Inventory adapters").
package inventory

import (
	"context"
	"strings"
)

// Entry is one observed workload: its IP address and the identity the
// proxy should attribute traffic from that IP to.
type Entry struct {
	IP       string
	Identity string
}

// Source collects the current inventory snapshot.
type Source interface {
	Collect(ctx context.Context) ([]Entry, error)
}

// normalizeIdentity joins a service and instance name the way task
// identifiers are formed elsewhere in the fleet, replacing underscores
// with double hyphens so the result is safe to use as a MESOS_TASK_ID-style
// token (spec §9 "Inventory identity normalization").
func normalizeIdentity(service, instance string) string {
	return strings.ReplaceAll(service+"."+instance, "_", "--")
}
