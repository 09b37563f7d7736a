package biscuit

import "strings"

// filterByHosts keeps cookies matching any requested host, preserving order.
// An empty host list passes everything through unchanged. No de-duplication
// is performed: records from distinct sources stay distinct.
func filterByHosts(cookies []Cookie, hosts []string) []Cookie {
	if len(hosts) == 0 {
		return cookies
	}

	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		for _, h := range hosts {
			if domainMatchesHost(c.Domain, h) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// domainMatchesHost implements cookie-domain matching over the stored domain:
// a dotted domain ".example.com" covers example.com and every subdomain; an
// undotted domain matches only the exact host.
func domainMatchesHost(domain, host string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	host = normalizeHost(host)
	if domain == "" || host == "" {
		return false
	}

	if strings.HasPrefix(domain, ".") {
		base := domain[1:]
		if base == "" {
			return false
		}
		return host == base || strings.HasSuffix(host, "."+base)
	}
	return host == domain
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimSuffix(host, ".")
	return strings.ToLower(host)
}

func normalizeHosts(hosts []string) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = normalizeHost(h)
		if h == "" {
			continue
		}
		out = append(out, h)
	}
	return out
}
