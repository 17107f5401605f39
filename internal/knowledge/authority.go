// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"net/url"
	"strings"
)

// Host substrings checked in priority order by AuthorityBoost. First match wins.
var (
	academicHosts = []string{
		"arxiv.org",
		"nature.com",
		"science.org",
		"ieee.org",
		"acm.org",
		"springer.com",
	}

	officialDocsHosts = []string{
		"docs.microsoft.com",
		"learn.microsoft.com",
		"cloud.google.com",
		"openai.com",
		"huggingface.co",
	}

	labBlogHosts = []string{
		"anthropic.com",
		"deepmind.com",
		"openai.com",
	}
)

// AuthorityBoost returns a small, deterministic credibility adjustment based
// on the source URL's host: academic and research publishers get +0.15,
// official documentation hosts +0.12, AI-lab engineering blogs +0.08, and
// Medium or generic blog hosts -0.05. Empty or unparseable input yields 0.0;
// the function never fails.
func AuthorityBoost(rawURL string) float64 {
	if rawURL == "" {
		return 0.0
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return 0.0
	}
	host := strings.ToLower(u.Host)

	if hostContainsAny(host, academicHosts) {
		return 0.15
	}
	if hostContainsAny(host, officialDocsHosts) {
		return 0.12
	}
	if hostContainsAny(host, labBlogHosts) {
		return 0.08
	}
	if strings.Contains(host, "medium.com") || strings.Contains(host, "blog") {
		return -0.05
	}

	return 0.0
}

func hostContainsAny(host string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(host, n) {
			return true
		}
	}
	return false
}
