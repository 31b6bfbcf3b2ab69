// Package platform answers runtime capability questions and translates
// native file URIs into URLs a rendering surface can load.
package platform

import (
	"net/url"
	"strings"
)

// Capabilities understood by Static.
const (
	Hybrid  = "hybrid"
	Native  = "native"
	Web     = "web"
	Desktop = "desktop"
)

// Modes accepted by NewStatic.
const (
	ModeNative  = "native"
	ModeBrowser = "browser"
)

// FilePrefix is the URL path under which converted file URIs are served.
const FilePrefix = "/_app_file_"

// Platform reports whether the current runtime has a capability.
type Platform interface {
	Is(capability string) bool
}

// Static is a Platform fixed at startup from configuration.
type Static struct {
	caps map[string]bool
}

// NewStatic returns the capability set for mode. Unknown modes behave like a browser.
func NewStatic(mode string) *Static {
	caps := map[string]bool{}
	switch mode {
	case ModeNative:
		caps[Hybrid] = true
		caps[Native] = true
	default:
		caps[Web] = true
		caps[Desktop] = true
	}
	return &Static{caps: caps}
}

// Is reports whether capability is present.
func (s *Static) Is(capability string) bool {
	return s.caps[capability]
}

// Converter rewrites file:// URIs to HTTP URLs served below FilePrefix.
type Converter struct {
	base string
}

// NewConverter returns a Converter for a public base URL such as http://localhost:8080.
func NewConverter(publicURL string) Converter {
	return Converter{base: strings.TrimRight(publicURL, "/")}
}

// ConvertFileSrc maps file:///abs/p to <base>/_app_file_/abs/p.
// Any other URI is returned unchanged.
func (c Converter) ConvertFileSrc(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return c.base + FilePrefix + (&url.URL{Path: u.Path}).EscapedPath()
}
