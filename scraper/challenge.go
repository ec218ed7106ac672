package scraper

import (
	"regexp"
	"strings"
)

// Challenge is the verdict on one snapshot.
type Challenge struct {
	Detected bool
	Kind     string // "captcha", "http_error" or "bot_wall"
	Score    float64
	Reasons  []string
}

type weightedPattern struct {
	re     *regexp.Regexp
	weight float64
	kind   string
}

// ChallengeDetector scores a page for bot walls and interstitial challenges.
type ChallengeDetector struct {
	patterns  []weightedPattern
	threshold float64
}

// NewChallengeDetector returns a detector with the built-in marker set.
func NewChallengeDetector() *ChallengeDetector {
	p := func(expr string, weight float64, kind string) weightedPattern {
		return weightedPattern{re: regexp.MustCompile(`(?i)` + expr), weight: weight, kind: kind}
	}
	return &ChallengeDetector{
		threshold: 0.3,
		patterns: []weightedPattern{
			p(`verify you are (a )?human`, 0.5, "captcha"),
			p(`\b(re|h)?captcha\b`, 0.5, "captcha"),
			p(`\bturnstile\b`, 0.5, "captcha"),
			p(`checking (if the site connection is secure|your browser)`, 0.4, "bot_wall"),
			p(`attention required`, 0.4, "bot_wall"),
			p(`access denied`, 0.4, "bot_wall"),
			p(`\bbot detected\b`, 0.4, "bot_wall"),
			p(`unfortunately we are unable`, 0.3, "bot_wall"),
			p(`pardon our interruption`, 0.4, "bot_wall"),
			p(`ddos protection`, 0.3, "bot_wall"),
			p(`\b403 forbidden\b`, 0.4, "http_error"),
			p(`\b429 too many requests\b`, 0.4, "http_error"),
			p(`\b503 service (temporarily )?unavailable\b`, 0.4, "http_error"),
		},
	}
}

// Inspect scores the visible text and title of snap.
func (d *ChallengeDetector) Inspect(snap *Snapshot) Challenge {
	text := snap.VisibleText()
	content := text + " " + snap.Title()

	var c Challenge
	kinds := make(map[string]float64)
	for _, wp := range d.patterns {
		if wp.re.MatchString(content) {
			c.Score += wp.weight
			kinds[wp.kind] += wp.weight
			c.Reasons = append(c.Reasons, wp.re.String())
		}
	}

	// Challenge interstitials are short; a product page that merely
	// mentions "captcha" in a footer is not.
	if c.Score > 0 && len(text) < 1000 {
		c.Score += 0.2
		c.Reasons = append(c.Reasons, "short page")
	}
	if c.Score > 1 {
		c.Score = 1
	}

	c.Detected = c.Score > d.threshold
	c.Kind = dominantKind(kinds)
	return c
}

func dominantKind(kinds map[string]float64) string {
	// captcha wins ties over the others.
	best, bestScore := "", 0.0
	for _, k := range []string{"captcha", "http_error", "bot_wall"} {
		if kinds[k] > bestScore {
			best, bestScore = k, kinds[k]
		}
	}
	return best
}

// String renders the reasons for a log field.
func (c Challenge) String() string {
	return strings.Join(c.Reasons, "; ")
}
