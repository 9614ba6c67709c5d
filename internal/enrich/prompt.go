package enrich

import (
	"fmt"
	"strings"
)

// Facts is the candidate snapshot handed to the analyzer. It carries
// everything the prompt template interpolates.
type Facts struct {
	Name        string
	WebsiteURI  string
	Address     string
	Types       []string
	PrimaryType string
	Rating      float64
	HasSSL      bool
}

const analysisSystemMessage = "You are a business intelligence and market intent analyst. " +
	"You research companies from public information and respond only with the requested JSON object, no prose around it."

// buildPrompt resolves the prompt for one candidate. Precedence:
// explicit override, then a configured template for the business's
// primary category, then the built-in default.
func buildPrompt(facts Facts, profile Profile, categoryPrompts map[string]string, override string) string {
	if override != "" {
		return interpolate(override, facts, profile)
	}
	if tpl, ok := categoryPrompts[facts.PrimaryType]; ok && tpl != "" {
		return interpolate(tpl, facts, profile)
	}
	return defaultPrompt(facts, profile)
}

// Profile describes the operator on whose behalf analysis runs; the
// prompt is biased toward surfacing opportunities for their services.
type Profile struct {
	BusinessType string
	ServiceAreas []string
}

func defaultPrompt(facts Facts, profile Profile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Research the business %q", facts.Name)
	if facts.Address != "" {
		fmt.Fprintf(&b, " located at %q", facts.Address)
	}
	if facts.WebsiteURI != "" {
		fmt.Fprintf(&b, " with website %s", facts.WebsiteURI)
	}
	b.WriteString(".\n")

	if len(facts.Types) > 0 {
		fmt.Fprintf(&b, "It is categorized as: %s.\n", strings.Join(facts.Types, ", "))
	}
	if facts.Rating > 0 {
		fmt.Fprintf(&b, "Its current Google rating is %.1f.\n", facts.Rating)
	}
	if facts.WebsiteURI != "" && !facts.HasSSL {
		b.WriteString("Note that its website does not serve over SSL.\n")
	}

	operator := profile.BusinessType
	if operator == "" {
		operator = "Digital Marketer"
	}
	fmt.Fprintf(&b, "\nI am a %s evaluating this business as a potential client", operator)
	if len(profile.ServiceAreas) > 0 {
		fmt.Fprintf(&b, " for services such as %s", strings.Join(profile.ServiceAreas, ", "))
	}
	b.WriteString(".\n")

	b.WriteString(`
Find out:
1. The company overview and the year it was founded.
2. Its leadership, managers and administrative contacts with roles and any public emails or phone numbers.
3. Its social media presence with profile links.
4. Recent public posts and job listings, especially anything signaling growth, launches or hiring.
5. Signals of marketing intent and concrete marketing opportunities I could pitch.
6. Which departments or people are most approachable, how I should approach them, and an overall possibility assessment.

Respond with exactly this JSON structure and nothing else:
{
  "company": {"name": "", "foundingYear": 0, "overview": ""},
  "leadership/Managers/Administration": [{"name": "", "role": "", "email": "", "phone": ""}],
  "socialMedia": [{"platform": "", "url": ""}],
  "publicPosts/JobPosts": [{"date": "", "content": "", "source": ""}],
  "marketing_intent_analysis": "",
  "marketing_opportunities": [""],
  "keyPoints": [""],
  "approachable_fileds": [{"field": "", "description": ""}],
  "approach_strategy": "",
  "possibility": ""
}
If a field is unknown, use an empty string, empty array, or 0.`)

	return b.String()
}

// interpolate fills the placeholders supported by configured templates.
func interpolate(tpl string, facts Facts, profile Profile) string {
	r := strings.NewReplacer(
		"{{name}}", facts.Name,
		"{{website}}", facts.WebsiteURI,
		"{{address}}", facts.Address,
		"{{types}}", strings.Join(facts.Types, ", "),
		"{{primary_type}}", facts.PrimaryType,
		"{{operator}}", profile.BusinessType,
		"{{service_areas}}", strings.Join(profile.ServiceAreas, ", "),
	)
	return r.Replace(tpl)
}
