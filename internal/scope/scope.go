// Package scope classifies raw link references and resolves the accepted
// ones to absolute URLs.
package scope

import (
	"fmt"
	"regexp"
	"strings"
)

// Profile describes the site family a crawl is confined to: the registrable
// domain and the path prefix marking internal content.
type Profile struct {
	Domain     string
	PathPrefix string
}

// Wikipedia is the default site profile.
var Wikipedia = Profile{Domain: "wikipedia.org", PathPrefix: "/wiki/"}

// ParseSeed extracts the scope segment from a seed URL of the form
// http(s)://<segment>.<domain>/... and returns the Site built from it.
func (p Profile) ParseSeed(seed string) (*Site, error) {
	pattern, err := regexp.Compile(`^https?://([a-z]+)\.` + regexp.QuoteMeta(p.Domain) + `/`)
	if err != nil {
		return nil, fmt.Errorf("invalid site profile: %w", err)
	}

	match := pattern.FindStringSubmatch(seed)
	if match == nil {
		return nil, fmt.Errorf("seed url must look like http(s)://<segment>.%s/", p.Domain)
	}

	return &Site{segment: match[1], profile: p}, nil
}

// Site confines traversal to path-rooted internal links on one host,
// derived from the seed's scope segment.
type Site struct {
	segment string
	profile Profile
}

// Segment returns the captured scope segment, the language for wikipedia.
func (s *Site) Segment() string {
	return s.segment
}

// InScope reports whether the raw reference is an internal content path.
func (s *Site) InScope(href string) bool {
	return strings.HasPrefix(href, s.profile.PathPrefix)
}

// Resolve prepends scheme and host to a path-rooted reference.
// The scheme is always https, whatever the seed used.
func (s *Site) Resolve(href string) string {
	return "https://" + s.segment + "." + s.profile.Domain + href
}

// Secure collects any secure absolute link. Traversal and collection
// coincide, so accepted links are followed as well.
type Secure struct{}

func (Secure) InScope(href string) bool {
	return strings.HasPrefix(href, "https://")
}

func (Secure) Resolve(href string) string {
	return href
}
