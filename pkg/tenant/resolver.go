package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// Resolver extracts a tenant identifier from an HTTP request.
type Resolver interface {
	// Resolve extracts the tenant identifier from the request.
	// Returns empty string if no tenant identifier is found.
	// Returns error if the extraction fails.
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc is an adapter to allow the use of ordinary functions as Resolvers.
type ResolverFunc func(r *http.Request) (string, error)

// Resolve calls the function.
func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}

// SubdomainResolver reads the tenant from the first host label, so
// "acme.app.example.com" resolves to "acme".
type SubdomainResolver struct {
	// Suffix is the shared domain to strip before reading the label
	// (e.g. ".app.example.com"). When empty the first label counts as a
	// tenant only if the host has at least three labels.
	Suffix string

	// ExcludedSubdomains lists labels that never name a tenant, such as
	// "www" or "api".
	ExcludedSubdomains []string
}

// NewSubdomainResolver creates a subdomain resolver for the given shared
// domain suffix. "www" is excluded by default.
func NewSubdomainResolver(suffix string) *SubdomainResolver {
	return &SubdomainResolver{
		Suffix:             suffix,
		ExcludedSubdomains: []string{"www"},
	}
}

// Resolve extracts the tenant from the request host.
func (r *SubdomainResolver) Resolve(req *http.Request) (string, error) {
	host := stripPort(req.Host)

	if r.Suffix != "" {
		base, ok := strings.CutSuffix(host, r.Suffix)
		if !ok || base == "" {
			return "", nil
		}
		host = base
	} else if strings.Count(host, ".") < 2 {
		// Bare domain.tld, nothing in front of it.
		return "", nil
	}

	label, _, _ := strings.Cut(host, ".")
	if label == "" || slices.Contains(r.ExcludedSubdomains, label) {
		return "", nil
	}
	return label, nil
}

// HostResolver uses the whole request host as the tenant identifier,
// with dots folded to underscores so the result is a valid tenant name.
// Useful when every customer brings their own domain.
type HostResolver struct {
	// IgnoredFirstSubdomains lists leading labels dropped before the
	// host is used, typically "www".
	IgnoredFirstSubdomains []string
}

// NewHostResolver creates a host resolver that ignores a leading "www".
func NewHostResolver() *HostResolver {
	return &HostResolver{IgnoredFirstSubdomains: []string{"www"}}
}

// Resolve extracts the tenant from the full host.
func (r *HostResolver) Resolve(req *http.Request) (string, error) {
	host := stripPort(req.Host)
	if host == "" {
		return "", nil
	}
	if label, rest, found := strings.Cut(host, "."); found && slices.Contains(r.IgnoredFirstSubdomains, label) {
		host = rest
	}
	return strings.ReplaceAll(host, ".", "_"), nil
}

// HeaderResolver extracts the tenant identifier from an HTTP header.
type HeaderResolver struct {
	// HeaderName is the name of the header to read (e.g., "X-Tenant-ID")
	HeaderName string
}

// NewHeaderResolver creates a new header resolver.
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}
	return &HeaderResolver{HeaderName: headerName}
}

// Resolve extracts the tenant from the configured header.
func (r *HeaderResolver) Resolve(req *http.Request) (string, error) {
	return req.Header.Get(r.HeaderName), nil
}

// PathResolver extracts the tenant identifier from a URL path segment.
type PathResolver struct {
	// Position is the 1-based position in the path (e.g., 2 for /tenants/{id}/...)
	Position int
}

// NewPathResolver creates a new path resolver.
func NewPathResolver(position int) *PathResolver {
	return &PathResolver{Position: position}
}

// Resolve extracts the tenant from the specified path position.
func (r *PathResolver) Resolve(req *http.Request) (string, error) {
	if r.Position < 1 {
		return "", errors.New("invalid path position")
	}
	path := strings.Trim(req.URL.Path, "/")
	if path == "" {
		return "", nil
	}
	parts := strings.Split(path, "/")
	if r.Position > len(parts) {
		return "", nil
	}
	return parts[r.Position-1], nil
}

// CompositeResolver tries multiple resolvers in order until one succeeds.
type CompositeResolver struct {
	Resolvers []Resolver
}

// NewCompositeResolver creates a new composite resolver.
func NewCompositeResolver(resolvers ...Resolver) *CompositeResolver {
	return &CompositeResolver{Resolvers: resolvers}
}

// Resolve tries each resolver in order, returning the first non-empty result.
func (c *CompositeResolver) Resolve(r *http.Request) (string, error) {
	var errs []error
	for _, resolver := range c.Resolvers {
		id, err := resolver.Resolve(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if id != "" {
			return id, nil
		}
	}
	if len(errs) > 0 {
		return "", fmt.Errorf("composite resolver errors: %w", errors.Join(errs...))
	}
	return "", nil
}

func stripPort(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 && !strings.Contains(host[idx:], "]") {
		host = host[:idx]
	}
	return host
}
