// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CredibilityScorer assigns a deterministic 0-1 credibility score to a
// source URL at collection time. The later authority boost applied during
// confidence scoring is separate; this score travels with the claim.
type CredibilityScorer struct {
	highAuthority []string
	lowAuthority  []string
	now           func() time.Time
}

// NewCredibilityScorer builds a scorer with the default domain tables.
func NewCredibilityScorer() *CredibilityScorer {
	return &CredibilityScorer{
		highAuthority: []string{
			".gov",
			".edu",
			"nature.com",
			"sciencedirect.com",
			"ieee.org",
			"springer.com",
			"who.int",
			"worldbank.org",
		},
		lowAuthority: []string{
			"blog",
			"medium.com",
			"wordpress",
			"opinion",
		},
		now: time.Now,
	}
}

// Score rates a URL: 0.5 base, +0.05 for https, +0.3 per trusted-domain
// match, -0.2 per weak-source indicator, and a recency factor when a
// publication date is supplied (+0.1 within two years, -0.1 beyond five).
// The result is clamped to [0,1] and rounded to two decimals. Empty input
// scores 0.0.
func (s *CredibilityScorer) Score(rawURL, publicationDate string) float64 {
	if rawURL == "" {
		return 0.0
	}

	score := 0.5

	u, err := url.Parse(rawURL)
	if err != nil {
		u = &url.URL{}
	}
	host := strings.ToLower(u.Host)

	if u.Scheme == "https" {
		score += 0.05
	}

	for _, trusted := range s.highAuthority {
		if strings.Contains(host, trusted) {
			score += 0.3
		}
	}
	for _, weak := range s.lowAuthority {
		if strings.Contains(host, weak) {
			score -= 0.2
		}
	}

	if len(publicationDate) >= 4 {
		if year, err := strconv.Atoi(publicationDate[:4]); err == nil {
			age := s.now().Year() - year
			switch {
			case age <= 2:
				score += 0.1
			case age > 5:
				score -= 0.1
			}
		}
	}

	score = math.Max(0.0, math.Min(score, 1.0))
	return math.Round(score*100) / 100
}
