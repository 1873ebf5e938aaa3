package provider

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/ssview/view"
)

// Site provides global properties describing where the site is served.
type Site struct {
	base *url.URL
}

var _ view.GlobalProvider = (*Site)(nil)

// NewSite returns a Site served at the given absolute URL, e.g.
// "https://example.com/blog/".
func NewSite(baseURL string) (*Site, error) {
	var u, err = url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("site: %q is not an absolute URL", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery, u.Fragment = "", ""
	return &Site{u}, nil
}

func (s *Site) TemplateGlobalVariables() []view.Variable {
	return []view.Variable{
		{Method: "BaseURL"},
		{Method: "AbsoluteBaseURL"},
		{Method: "BaseHref"},
	}
}

// BaseURL returns the root-relative base path, e.g. "/blog/".
func (s *Site) BaseURL() string {
	return s.base.Path
}

// AbsoluteBaseURL returns the full base URL.
func (s *Site) AbsoluteBaseURL() string {
	return s.base.String()
}

// BaseHref returns the base URL for use in a <base href> tag.
func (s *Site) BaseHref() string {
	return s.base.String()
}
