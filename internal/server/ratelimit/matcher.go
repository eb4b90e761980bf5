package ratelimit

import "strings"

// healthCheck is never throttled; orchestrators poll it.
var healthCheck = EndpointConfig{Path: "/health", Method: "GET"}

// MatchEndpoint picks the rule for a request. An exact path wins; otherwise
// the longest rule ending in "/" that prefixes path applies, so
// "/api/sessions/" covers "/api/sessions/{id}". Nil means the default limit.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == healthCheck.Path && method == healthCheck.Method {
		unlimited := healthCheck
		return &unlimited
	}

	var best *EndpointConfig
	for i := range configs {
		rule := &configs[i]
		if rule.Method != method {
			continue
		}
		if rule.Path == path {
			return rule
		}
		if strings.HasSuffix(rule.Path, "/") && strings.HasPrefix(path, rule.Path) {
			if best == nil || len(rule.Path) > len(best.Path) {
				best = rule
			}
		}
	}
	return best
}
