package compiler

import "fmt"

// chaosOptions translates a namespace's merged chaos directives (fail/delay)
// into additional frontend directives and, for fail=error_503, a
// replacement discovery method that yields no backend servers at all (spec
// §4.4 step 2, "chaos").
func chaosOptions(chaos map[string]string, discovery DiscoveryConfig) ([]string, DiscoveryConfig) {
	if fail := chaos["fail"]; fail == "drop" {
		return []string{"tcp-request content reject"}, discovery
	} else if fail == "error_503" {
		return nil, DiscoveryConfig{Method: "base"}
	}

	if delay, ok := chaos["delay"]; ok && delay != "" {
		return []string{
			fmt.Sprintf("tcp-request inspect-delay %s", delay),
			"tcp-request content accept if WAIT_END",
		}, discovery
	}

	return nil, discovery
}
