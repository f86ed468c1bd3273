package sanitizer

import (
	"net/url"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	safePolicy   *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		safePolicy = bluemonday.NewPolicy()
		safePolicy.AllowStandardURLs()
		safePolicy.AllowElements(
			"p", "br",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
		)
		safePolicy.AllowAttrs("href").OnElements("a")
		safePolicy.RequireNoFollowOnLinks(true)
	})
}

// StripHTML removes every tag and returns escaped plain text.
func StripHTML(s string) string {
	initPolicies()
	return strictPolicy.Sanitize(s)
}

// SanitizeHTML keeps basic formatting (p, a, strong, em, lists, code) and
// drops scripts, event handlers and javascript: URLs.
func SanitizeHTML(s string) string {
	initPolicies()
	return safePolicy.Sanitize(s)
}

// SanitizeHTMLCustom applies a custom bluemonday policy.
// Returns input unchanged if policy is nil.
func SanitizeHTMLCustom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}

// Values rewrites every value in vals with clean, in place, and returns the
// number of values that changed. A nil clean means StripHTML.
func Values(vals url.Values, clean func(string) string) int {
	if clean == nil {
		clean = StripHTML
	}
	changed := 0
	for key, list := range vals {
		for i, v := range list {
			if c := clean(v); c != v {
				list[i] = c
				changed++
			}
		}
		vals[key] = list
	}
	return changed
}
