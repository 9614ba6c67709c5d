// Package scorer assigns deterministic lead quality scores from the
// enrichment record. Scoring is pure: the same inputs always produce
// the same totals and the same rationale, with no external calls.
package scorer

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/sells-group/leadgen-cli/internal/model"
)

const (
	// Sum of all general rule weights. Percentages divide by this and
	// are deliberately not capped at 100.
	maxGeneralPoints = 85

	// Sum of all post-signal weights, assuming one matching post per rule.
	maxMarketingPoints = 190
)

var webmailPattern = regexp.MustCompile(`(?i)gmail\.com|yahoo\.com`)

// postSignal is a marketing intent trigger matched as a case-insensitive
// substring of post content.
type postSignal struct {
	label   string
	points  int
	needles []string
}

// Signals are checked in a fixed order per post; each signal fires at
// most once per post but may fire again on later posts.
var postSignals = []postSignal{
	{label: "Post mentions Web Developer need", points: 50, needles: []string{"web developer"}},
	{label: "Post mentions new store opening", points: 30, needles: []string{"new store opening"}},
	{label: "Post mentions Designer need", points: 40, needles: []string{"designer"}},
	{label: "Post mentions new product or launch", points: 40, needles: []string{"new product", "launching"}},
	{label: "Post mentions marketing hire", points: 35, needles: []string{"marketing role", "marketing manager", "marketing managers", "hiring for marketing"}},
}

// Score computes both tracks for one enriched candidate. now anchors
// the business-age rule so results are reproducible in tests.
func Score(b model.Business, enr model.Enrichment, now time.Time) model.Score {
	var s model.Score

	addGeneral := func(param string, value any, points int) {
		s.GeneralPoints += points
		s.GeneralCriteria = append(s.GeneralCriteria, model.RuleMatch{
			Parameter: param,
			Value:     value,
			Points:    points,
		})
	}

	if b.WebsiteURI == "" {
		addGeneral("Website missing", false, 30)
	}
	if b.Rating > 0 && b.Rating < 4.5 {
		addGeneral("Google Reviews < 4.5", b.Rating, 10)
	}
	if domains := webmailDomains(enr.Emails); len(domains) > 0 {
		addGeneral("Domain is Gmail/Yahoo", strings.Join(domains, ", "), 15)
	}
	if enr.PageSpeed != nil && enr.PageSpeed.Performance != nil && *enr.PageSpeed.Performance < 40 {
		addGeneral("PageSpeed performance < 40", *enr.PageSpeed.Performance, 25)
	}
	if year, ok := enr.Insight.FoundingYear(); ok && year > 0 && now.Year()-year < 2 {
		addGeneral("Business registered < 2 years", year, 20)
	}
	if !enr.HasSSL {
		addGeneral("No SSL on site", false, 10)
	}
	if enr.WebsiteStatus == model.WebsiteStatusUnavailable {
		addGeneral("Website unavailable", string(enr.WebsiteStatus), 25)
	}

	for _, post := range enr.Insight.PublicPosts() {
		content := strings.ToLower(post.Content)
		for _, sig := range postSignals {
			if containsAny(content, sig.needles) {
				s.MarketingPoints += sig.points
				s.MarketingCriteria = append(s.MarketingCriteria, model.RuleMatch{
					Parameter: sig.label,
					Value:     post.Content,
					Points:    sig.points,
				})
			}
		}
	}

	s.General = percent(s.GeneralPoints, maxGeneralPoints)
	s.Marketing = percent(s.MarketingPoints, maxMarketingPoints)
	return s
}

// webmailDomains returns the email domains that are consumer webmail
// providers, in first-seen order.
func webmailDomains(emails []string) []string {
	seen := map[string]struct{}{}
	var domains []string
	for _, email := range emails {
		at := strings.LastIndexByte(email, '@')
		if at < 0 {
			continue
		}
		domain := strings.ToLower(email[at+1:])
		if !webmailPattern.MatchString(domain) {
			continue
		}
		if _, ok := seen[domain]; ok {
			continue
		}
		seen[domain] = struct{}{}
		domains = append(domains, domain)
	}
	return domains
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func percent(points, max int) int {
	return int(math.Round(100 * float64(points) / float64(max)))
}
