package compiler

import (
	"fmt"
	"strings"

	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/topology"
)

// defaultSection marks the backend descriptor with no endpoint-timeout
// override, keeping the pre-per-endpoint-timeout backend naming scheme for
// compatibility (spec §4.4 step 3, §9).
const defaultSection = "default"

// endpointNameHAProxy mangles an endpoint path into a name HAProxy accepts
// inside a backend identifier.
func endpointNameHAProxy(endpoint string) string {
	return strings.ReplaceAll(endpoint, "/", "__")
}

// GetBackendName forms the canonical backend identifier from a service's
// discover/advertise types and the endpoint-timeout name, mirroring the
// original's get_backend_name. Every emission site that needs a backend
// identifier calls this function, never builds one inline (spec §9).
func GetBackendName(serviceName, discoverType, advertiseType, endpointName string) string {
	var endpointExt string
	if endpointName != defaultSection {
		endpointExt = "." + endpointNameHAProxy(endpointName) + "_timeouts"
	}
	var advertiseExt string
	if advertiseType != discoverType {
		advertiseExt = "." + advertiseType
	}
	return serviceName + advertiseExt + endpointExt
}

// backendDescriptor is one (advertise type, endpoint name) pair in the
// Cartesian product a namespace expands to (spec §4.4 step 3).
type backendDescriptor struct {
	AdvertiseType string
	EndpointName  string
}

// backendsForService returns the Cartesian product of advertise types and
// endpoint-timeout names (plus the implicit default section), in a fixed
// order: advertise types outer, endpoint names (declaration order, then
// "default") inner — matching itertools.product's iteration order for the
// same two sequences.
func backendsForService(advertiseTypes []string, endpointOrder []string) []backendDescriptor {
	names := make([]string, 0, len(endpointOrder)+1)
	names = append(names, endpointOrder...)
	names = append(names, defaultSection)

	descriptors := make([]backendDescriptor, 0, len(advertiseTypes)*len(names))
	for _, adv := range advertiseTypes {
		for _, name := range names {
			descriptors = append(descriptors, backendDescriptor{AdvertiseType: adv, EndpointName: name})
		}
	}
	return descriptors
}

// socketPath renders a service's haproxy_service_sockets_path_fmt (or its
// proxy-protocol sibling) against the service name.
func socketPath(cfg config.Config, serviceName string, proxyProto bool) (string, error) {
	tmpl := cfg.HAProxyServiceSocketsFmt
	if proxyProto {
		tmpl = cfg.HAProxyServiceProxySockFmt
	}
	return config.FormatCmd(tmpl, map[string]string{"service_name": serviceName})
}

// generateACLsForService builds the frontend use_backend ACL chain that
// routes requests to the correct backend descriptor (spec §4.4 step 8).
// Ordering matters: this must run after every other plugin contribution so
// routing rules see any header stamped by an earlier plugin.
func generateACLsForService(
	serviceName, discoverType string,
	advertiseTypes []string,
	endpointOrder []string,
	available []string,
) []string {
	var acls []string

	for _, d := range backendsForService(advertiseTypes, endpointOrder) {
		if !topology.CompareDepth(discoverType, d.AdvertiseType, available) {
			// don't create acls that downcast requests
			continue
		}

		backendID := GetBackendName(serviceName, discoverType, d.AdvertiseType, d.EndpointName)

		var pathACL []string
		pathACLName := ""
		if d.EndpointName != defaultSection {
			pathACLName = fmt.Sprintf(" %s_path", backendID)
			pathACL = []string{fmt.Sprintf("acl%s path_beg %s", pathACLName, d.EndpointName)}
		}

		acls = append(acls, pathACL...)
		acls = append(acls,
			fmt.Sprintf("acl %s_has_connslots connslots(%s) gt 0", backendID, backendID),
			fmt.Sprintf("use_backend %s if %s_has_connslots%s", backendID, backendID, pathACLName),
		)
	}

	return acls
}
