package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Insight is the analysis result for one business. Exactly one of
// Structured, Raw, or Err is expected to be set: Structured when the
// service returned parseable JSON, Raw when it returned free-form text,
// Err when the call itself failed. Downstream consumers must tolerate
// all three shapes.
type Insight struct {
	Structured *InsightData  `json:"structured,omitempty"`
	Raw        string        `json:"raw,omitempty"`
	Err        *InsightError `json:"error,omitempty"`
}

// InsightError is the typed failure shape for a service call that could
// not complete.
type InsightError struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// InsightData mirrors the JSON schema the analysis prompt requests.
// Field tags match the upstream wire names, including the
// "approachable_fileds" spelling the service was taught to emit.
type InsightData struct {
	Company         InsightCompany   `json:"company"`
	Leadership      []InsightContact `json:"leadership/Managers/Administration,omitempty"`
	SocialMedia     []SocialLink     `json:"socialMedia,omitempty"`
	Posts           []InsightPost    `json:"publicPosts/JobPosts,omitempty"`
	MarketingIntent string           `json:"marketing_intent_analysis,omitempty"`
	Opportunities   []string         `json:"marketing_opportunities,omitempty"`
	KeyPoints       []string         `json:"keyPoints,omitempty"`
	Approachable    []ApproachField  `json:"approachable_fileds,omitempty"`
	Strategy        string           `json:"approach_strategy,omitempty"`
	Possibility     string           `json:"possibility,omitempty"`
}

// InsightCompany holds basic company facts extracted by the service.
type InsightCompany struct {
	Name         string   `json:"name,omitempty"`
	FoundingYear FlexYear `json:"foundingYear,omitempty"`
}

// InsightContact is one leadership or administration entry.
type InsightContact struct {
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// SocialLink is a public social media handle.
type SocialLink struct {
	Platform string `json:"platform,omitempty"`
	URL      string `json:"url,omitempty"`
}

// InsightPost is a recent public or job post surfaced by the service.
type InsightPost struct {
	Date    string `json:"date,omitempty"`
	Content string `json:"content,omitempty"`
	Source  string `json:"source,omitempty"`
}

// ApproachField names one area where the operator's services fit.
type ApproachField struct {
	Field       string `json:"field,omitempty"`
	Description string `json:"description,omitempty"`
}

// FlexYear accepts a year encoded as either a JSON number or a string,
// both of which the analysis service produces in practice. Zero means
// unknown.
type FlexYear int

func (y *FlexYear) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Unparseable year is treated as unknown, not a parse failure.
		*y = 0
		return nil
	}
	*y = FlexYear(n)
	return nil
}

func (y FlexYear) MarshalJSON() ([]byte, error) {
	if y == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(int(y))
}

// FoundingYear returns the founding year from a structured insight, or
// false when the insight is raw, errored, or has no year.
func (i Insight) FoundingYear() (int, bool) {
	if i.Structured == nil || i.Structured.Company.FoundingYear == 0 {
		return 0, false
	}
	return int(i.Structured.Company.FoundingYear), true
}

// PublicPosts returns the public/job posts from a structured insight.
// Raw and errored insights contribute no posts.
func (i Insight) PublicPosts() []InsightPost {
	if i.Structured == nil {
		return nil
	}
	return i.Structured.Posts
}
