package plugins

import (
	"fmt"

	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/namespace"
)

// proxiedThrough implements both sides of a namespace-to-namespace proxy
// relationship (spec §4.3 "proxied_through"): the namespace that declares
// proxied_through gets frontend rules redirecting to the proxy's backend;
// the namespace that declares is_proxy stamps a source header on its
// backend.
type proxiedThrough struct {
	serviceName     string
	proxiedThrough  *string
	isProxy         bool
	healthcheckURI  string
}

// NewProxiedThrough constructs the proxied_through plugin.
func NewProxiedThrough(serviceName string, decl namespace.Namespace, _ config.Config) Plugin {
	return &proxiedThrough{
		serviceName:    serviceName,
		proxiedThrough: decl.ProxiedThrough,
		isProxy:        decl.IsProxy,
		healthcheckURI: decl.ResolvedHealthcheckURI(),
	}
}

func (p *proxiedThrough) Contribute() Contribution {
	c := Contribution{}

	if p.proxiedThrough != nil {
		proxied := *p.proxiedThrough
		c.Frontend = []string{
			fmt.Sprintf("acl is_status_request path %s", p.healthcheckURI),
			fmt.Sprintf("acl request_from_proxy hdr_beg(X-Smartstack-Source) -i %s", proxied),
			fmt.Sprintf("acl proxied_through_backend_has_connslots connslots(%s) gt 0", proxied),
			fmt.Sprintf("http-request set-header X-Smartstack-Destination %s if !is_status_request !request_from_proxy proxied_through_backend_has_connslots", p.serviceName),
			fmt.Sprintf("use_backend %s if !is_status_request !request_from_proxy proxied_through_backend_has_connslots", proxied),
		}
	}

	if p.isProxy {
		c.Backend = []string{
			fmt.Sprintf("acl is_status_request path %s", p.healthcheckURI),
			fmt.Sprintf("http-request set-header X-Smartstack-Source %s if !is_status_request", p.serviceName),
		}
	}

	return c
}
