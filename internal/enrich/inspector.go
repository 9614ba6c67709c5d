package enrich

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadgen-cli/internal/model"
)

const (
	inspectUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxBodyBytes     = 2 << 20
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// Fallback paths probed when the landing page yields no addresses.
	contactPaths = []string{"/contact", "/contact-us"}
)

// Inspector visits a candidate's website and assembles the full
// enrichment record: reachability, SSL, contact emails, a LinkedIn
// profile, performance metrics and the analysis verdict.
type Inspector struct {
	nav        *http.Client
	navTimeout time.Duration
	tlsTimeout time.Duration
	speed      *SpeedAdapter
	analyzer   *Analyzer

	// checkTLS is swapped out in tests to avoid real handshakes.
	checkTLS func(ctx context.Context, host string) bool
}

// NewInspector wires an inspector with its adapters. speed and
// analyzer run unconditionally for every candidate; either may be
// backed by an unconfigured client, in which case they degrade to
// their sentinel outputs.
func NewInspector(speed *SpeedAdapter, analyzer *Analyzer, navTimeout, tlsTimeout time.Duration) *Inspector {
	if navTimeout <= 0 {
		navTimeout = 20 * time.Second
	}
	if tlsTimeout <= 0 {
		tlsTimeout = 5 * time.Second
	}
	ins := &Inspector{
		nav: &http.Client{
			Timeout: navTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
			},
		},
		navTimeout: navTimeout,
		tlsTimeout: tlsTimeout,
		speed:      speed,
		analyzer:   analyzer,
	}
	ins.checkTLS = ins.handshake
	return ins
}

// Inspect produces a best-effort enrichment for one business.
// Navigation failures are captured on the result rather than returned;
// only an unexpected panic comes back as an error, which lets the
// worker pool retry the item.
func (ins *Inspector) Inspect(ctx context.Context, b model.Business) (enr model.Enrichment, err error) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("inspect: recovered", zap.String("business", b.Name), zap.Any("panic", r))
			err = fmt.Errorf("inspection failed: %v", r)
		}
	}()

	enr.WebsiteStatus = model.WebsiteStatusUnknown
	finalURL := b.WebsiteURI
	enr.HasSSL = strings.HasPrefix(strings.ToLower(b.WebsiteURI), "https://")

	var doc *goquery.Document
	var rawHTML string

	if b.WebsiteURI != "" {
		body, resolved, err := ins.fetch(ctx, b.WebsiteURI)
		if err != nil {
			enr.WebsiteStatus = model.WebsiteStatusUnavailable
			enr.Error = err.Error()
		} else {
			enr.WebsiteStatus = model.WebsiteStatusOnline
			finalURL = resolved
			enr.HasSSL = strings.HasPrefix(strings.ToLower(resolved), "https://")
			rawHTML = body
			if d, perr := goquery.NewDocumentFromReader(strings.NewReader(body)); perr == nil {
				doc = d
			}
		}

		if !enr.HasSSL {
			if host := hostOf(finalURL); host != "" {
				enr.HasSSL = ins.checkTLS(ctx, host)
			}
		}
	}

	if doc != nil {
		enr.Emails = ins.collectEmails(ctx, finalURL, rawHTML, doc)
		enr.LinkedIn = extractLinkedIn(doc)
	}

	// The two adapters have no data dependency on each other.
	var g errgroup.Group
	if ins.speed != nil {
		g.Go(func() error {
			enr.PageSpeed = ins.speed.Measure(ctx, finalURL)
			return nil
		})
	}
	if ins.analyzer != nil {
		facts := Facts{
			Name:        b.Name,
			WebsiteURI:  finalURL,
			Address:     b.FormattedAddress,
			Types:       b.Types,
			PrimaryType: b.PrimaryType,
			Rating:      b.Rating,
			HasSSL:      enr.HasSSL,
		}
		g.Go(func() error {
			enr.Insight = ins.analyzer.Analyze(ctx, facts, "")
			return nil
		})
	}
	_ = g.Wait()

	return enr, nil
}

// fetch navigates to pageURL following redirects and returns the page
// body and the final resolved URL. Any HTTP status of 400 or above is
// treated as a failed navigation.
func (ins *Inspector) fetch(ctx context.Context, pageURL string) (body, finalURL string, err error) {
	navCtx, cancel := context.WithTimeout(ctx, ins.navTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(navCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", inspectUserAgent)

	resp, err := ins.nav.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", "", fmt.Errorf("navigate %s: status %d", pageURL, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", pageURL, err)
	}
	return string(raw), resp.Request.URL.String(), nil
}

// handshake dials host:443 and reports whether the peer presented a
// certificate. Invalid chains still count; only a failed handshake or
// an empty chain does not.
func (ins *Inspector) handshake(ctx context.Context, host string) bool {
	dialer := &net.Dialer{Timeout: ins.tlsTimeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", net.JoinHostPort(host, "443"), &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         host,
	})
	if err != nil {
		return false
	}
	defer conn.Close()
	return len(conn.ConnectionState().PeerCertificates) > 0
}

// collectEmails scans the landing page markup and visible text for
// addresses; when the page yields none it probes the conventional
// contact pages and additionally harvests mailto anchors there.
func (ins *Inspector) collectEmails(ctx context.Context, finalURL, rawHTML string, doc *goquery.Document) []string {
	seen := map[string]struct{}{}
	var emails []string
	add := func(addr string) {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		emails = append(emails, addr)
	}

	for _, m := range emailPattern.FindAllString(rawHTML, -1) {
		add(m)
	}
	for _, m := range emailPattern.FindAllString(doc.Text(), -1) {
		add(m)
	}
	if len(emails) > 0 {
		return emails
	}

	base := strings.TrimSuffix(finalURL, "/")
	for _, path := range contactPaths {
		body, _, err := ins.fetch(ctx, base+path)
		if err != nil {
			continue
		}
		for _, m := range emailPattern.FindAllString(body, -1) {
			add(m)
		}
		cdoc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			continue
		}
		cdoc.Find(`a[href^="mailto:"]`).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			addr := strings.TrimPrefix(href, "mailto:")
			if i := strings.IndexByte(addr, '?'); i >= 0 {
				addr = addr[:i]
			}
			add(addr)
		})
	}
	return emails
}

// extractLinkedIn returns the first anchor pointing at a LinkedIn
// person or company profile. Google search-result redirect links are
// unwrapped so the underlying profile URL is returned.
func extractLinkedIn(doc *goquery.Document) string {
	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})

	for _, href := range hrefs {
		lower := strings.ToLower(href)
		if strings.Contains(lower, "linkedin.com/in/") || strings.Contains(lower, "linkedin.com/company/") {
			return href
		}
	}

	for _, href := range hrefs {
		lower := strings.ToLower(href)
		if !strings.HasPrefix(lower, "https://www.google.com/url") {
			continue
		}
		if !strings.Contains(lower, "linkedin.com") {
			continue
		}
		u, err := url.Parse(href)
		if err != nil {
			continue
		}
		target := u.Query().Get("url")
		if target == "" {
			target = u.Query().Get("q")
		}
		lowerTarget := strings.ToLower(target)
		if strings.Contains(lowerTarget, "/in/") || strings.Contains(lowerTarget, "/company/") {
			if decoded, derr := url.QueryUnescape(target); derr == nil {
				return decoded
			}
			return target
		}
	}
	return ""
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
