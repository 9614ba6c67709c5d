// Package model defines the domain types shared across the lead
// discovery and enrichment pipeline.
package model

import "time"

// WebsiteStatus reflects the outcome of probing a business website.
type WebsiteStatus string

const (
	WebsiteStatusUnknown     WebsiteStatus = "Unknown"
	WebsiteStatusOnline      WebsiteStatus = "Online"
	WebsiteStatusUnavailable WebsiteStatus = "Unavailable"
)

// Business is a candidate discovered from the places search, before
// enrichment. Immutable once produced by discovery.
type Business struct {
	PlaceID                  string   `json:"place_id"`
	Name                     string   `json:"name"`
	Types                    []string `json:"types,omitempty"`
	PrimaryType              string   `json:"primary_type,omitempty"`
	BusinessStatus           string   `json:"business_status,omitempty"`
	NationalPhoneNumber      string   `json:"national_phone_number,omitempty"`
	InternationalPhoneNumber string   `json:"international_phone_number,omitempty"`
	WebsiteURI               string   `json:"website_uri,omitempty"`
	GoogleMapsURI            string   `json:"google_maps_uri,omitempty"`
	FormattedAddress         string   `json:"formatted_address,omitempty"`
	Rating                   float64  `json:"rating,omitempty"`
	UserRatingCount          int      `json:"user_rating_count,omitempty"`
}

// PageSpeed holds normalized PageSpeed Insights metrics. Each field is
// optional; absent means the upstream audit did not report it. A non-empty
// Error marks a degraded measurement rather than a hard failure.
type PageSpeed struct {
	Performance  *float64 `json:"performance,omitempty"`
	LCP          *string  `json:"lcp,omitempty"`
	FCP          *string  `json:"fcp,omitempty"`
	TTI          *string  `json:"tti,omitempty"`
	ObservedLoad *float64 `json:"load_time,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Enrichment bundles everything gathered for one business by the website
// inspector and the adapters. Never mutated after creation; a retry
// produces a fresh Enrichment.
type Enrichment struct {
	WebsiteStatus WebsiteStatus `json:"website_status"`
	HasSSL        bool          `json:"has_ssl"`
	Emails        []string      `json:"emails,omitempty"`
	LinkedIn      string        `json:"linkedin,omitempty"`
	PageSpeed     *PageSpeed    `json:"page_speed,omitempty"`
	Insight       Insight       `json:"insight"`
	Error         string        `json:"error,omitempty"`
}

// RuleMatch records one scoring rule that fired, with the value that
// triggered it and the points it contributed.
type RuleMatch struct {
	Parameter string `json:"parameter"`
	Value     any    `json:"value"`
	Points    int    `json:"points"`
}

// Score holds the two percentage scores plus the itemized rationale that
// reproduces them exactly.
type Score struct {
	General           int         `json:"general_parameters"`
	Marketing         int         `json:"marketing_parameters"`
	GeneralPoints     int         `json:"general_points"`
	MarketingPoints   int         `json:"marketing_points"`
	GeneralCriteria   []RuleMatch `json:"general_criteria_details,omitempty"`
	MarketingCriteria []RuleMatch `json:"marketing_criteria_details,omitempty"`
}

// Lead is the persisted unit of output: a discovered business plus its
// enrichment and computed score.
type Lead struct {
	ID         string     `json:"id"`
	Business   Business   `json:"business"`
	Enrichment Enrichment `json:"enrichment"`
	Score      Score      `json:"score"`
	SearchKey  string     `json:"search_key"`
	CreatedAt  time.Time  `json:"created_at"`
}

// SearchRecord accumulates results for one canonicalized search key.
// LeadIDs is kept sorted descending by general score. A record with an
// empty NextPageToken is complete and short-circuits discovery.
type SearchRecord struct {
	Key           string    `json:"key"`
	LeadIDs       []string  `json:"lead_ids"`
	SearchCount   int       `json:"search_count"`
	ResultCount   int       `json:"result_count"`
	NextPageToken string    `json:"next_page_token,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
