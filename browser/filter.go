package browser

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// nameToProto maps human-readable config strings to protocol resource types.
var nameToProto = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Script":     proto.NetworkResourceTypeScript,
}

// trackerDomains is a set of well-known advertising, analytics, and
// tracking domains blocked when the denylist is enabled.
var trackerDomains = map[string]struct{}{
	"doubleclick.net":        {},
	"googlesyndication.com":  {},
	"googleadservices.com":   {},
	"google-analytics.com":   {},
	"googletagmanager.com":   {},
	"googletagservices.com":  {},
	"facebook.net":           {},
	"facebook.com":           {},
	"fbcdn.net":              {},
	"adnxs.com":              {},
	"adsrvr.org":             {},
	"amazon-adsystem.com":    {},
	"criteo.com":             {},
	"criteo.net":             {},
	"outbrain.com":           {},
	"taboola.com":            {},
	"moatads.com":            {},
	"pubmatic.com":           {},
	"rubiconproject.com":     {},
	"scorecardresearch.com":  {},
	"quantserve.com":         {},
	"hotjar.com":             {},
	"mixpanel.com":           {},
	"segment.io":             {},
	"segment.com":            {},
	"chartbeat.com":          {},
	"chartbeat.net":          {},
	"optimizely.com":         {},
	"openx.net":              {},
	"casalemedia.com":        {},
	"demdex.net":             {},
	"krxd.net":               {},
	"bluekai.com":            {},
	"mathtag.com":            {},
	"serving-sys.com":        {},
	"rlcdn.com":              {},
	"sharethis.com":          {},
	"addthis.com":            {},
	"consensu.org":           {},
	"analytics.twitter.com":  {},
	"static.ads-twitter.com": {},
}

// FilterPolicy decides which pending sub-resource requests to abort during
// page load. The decision itself is pure; mounting it on a page is separate
// so the policy can be tested without a browser.
type FilterPolicy struct {
	blocked       map[proto.NetworkResourceType]struct{}
	blockTrackers bool
}

// NewFilterPolicy builds a policy from config resource-type names.
// blockScript additionally aborts Script loads; extraction flows must leave
// it false because client-side redirects and deferred rendering need script.
func NewFilterPolicy(typeNames []string, blockScript, blockTrackers bool) *FilterPolicy {
	blocked := make(map[proto.NetworkResourceType]struct{}, len(typeNames)+1)
	for _, name := range typeNames {
		if rt, ok := nameToProto[name]; ok {
			blocked[rt] = struct{}{}
		}
	}
	if blockScript {
		blocked[proto.NetworkResourceTypeScript] = struct{}{}
	}
	return &FilterPolicy{blocked: blocked, blockTrackers: blockTrackers}
}

// Block reports whether a request with the given resource type and URL
// should be aborted.
func (p *FilterPolicy) Block(resType proto.NetworkResourceType, rawURL string) bool {
	if _, ok := p.blocked[resType]; ok {
		return true
	}
	if p.blockTrackers {
		if u, err := url.Parse(rawURL); err == nil && isTrackerDomain(u.Hostname()) {
			return true
		}
	}
	return false
}

// empty reports whether the policy can never block anything, in which case
// mounting an interceptor is pointless.
func (p *FilterPolicy) empty() bool {
	return len(p.blocked) == 0 && !p.blockTrackers
}

// isTrackerDomain checks a hostname and each parent domain against the
// denylist ("pagead2.googlesyndication.com" matches via "googlesyndication.com").
func isTrackerDomain(host string) bool {
	host = strings.ToLower(host)
	for {
		if _, ok := trackerDomains[host]; ok {
			return true
		}
		idx := strings.IndexByte(host, '.')
		if idx < 0 {
			return false
		}
		host = host[idx+1:]
	}
}

// mountFilter installs a request interceptor enforcing the policy.
// Returns the running router so the caller can Stop it on teardown, or nil
// when the policy blocks nothing. Interception failures are logged and never
// fail the session.
func mountFilter(page *rod.Page, policy *FilterPolicy) *rod.HijackRouter {
	if policy == nil || policy.empty() {
		return nil
	}

	router := page.HijackRequests()

	// Pattern "*" + empty resourceType intercepts every request; the
	// policy decides per request.
	err := router.Add("*", "", func(ctx *rod.Hijack) {
		if policy.Block(ctx.Request.Type(), ctx.Request.URL().String()) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		slog.Warn("resource filter could not be installed, session proceeds unfiltered",
			"error", err)
		return nil
	}

	// router.Run() blocks until router.Stop() is called.
	go router.Run()

	return router
}
