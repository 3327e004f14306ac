package plugins

import (
	"fmt"

	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/namespace"
)

const (
	maxTarpitTimeout = "60s"
	tarpitHeader     = "X-Ctx-Tarpit"
)

// faultInjection is always-on: it adds a tarpit timeout to defaults and a
// backend rule that tarpits requests carrying a header naming this service
// (spec §4.3 "fault_injection").
type faultInjection struct {
	serviceName string
}

// NewFaultInjection constructs the always-on fault-injection plugin.
func NewFaultInjection(serviceName string, _ namespace.Namespace, _ config.Config) Plugin {
	return &faultInjection{serviceName: serviceName}
}

func (p *faultInjection) Contribute() Contribution {
	return Contribution{
		Defaults: []string{fmt.Sprintf("timeout tarpit %s", maxTarpitTimeout)},
		Backend: []string{
			fmt.Sprintf("acl to_be_tarpitted hdr_sub(%s) -i %s", tarpitHeader, p.serviceName),
			"reqtarpit . if to_be_tarpitted",
		},
	}
}
