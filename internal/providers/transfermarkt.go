package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/scoutlab/xi-optimizer/internal/scout"
	"github.com/scoutlab/xi-optimizer/pkg/textutil"
)

var transfermarktDomains = []string{
	"https://www.transfermarkt.com",
	"https://www.transfermarkt.es",
	"https://www.transfermarkt.de",
}

var (
	tmInitDataRx = regexp.MustCompile(`(?s)TM\.initData\s*=\s*(\{.*?\});`)
	tmValueRx    = regexp.MustCompile(`(?i)€\s?([\d.,]+)\s?([mk])`)
)

// maxProfileCandidates bounds how many search results we scrape per
// player before giving up.
const maxProfileCandidates = 5

const marketValueCacheTTL = 24 * time.Hour

// TransfermarktClient resolves player market values (in millions of
// euros) by scraping Transfermarkt profile pages. Search runs across
// the .com/.es/.de domains because regional variants occasionally rank
// a player the others miss.
type TransfermarktClient struct {
	client  *scrapeClient
	cache   scout.CacheProvider
	logger  *logrus.Logger
	domains []string
}

// NewTransfermarktClient creates a new Transfermarkt scraping client.
func NewTransfermarktClient(cache scout.CacheProvider, timeout time.Duration, rps float64, burst, breakerThreshold int, logger *logrus.Logger) *TransfermarktClient {
	return &TransfermarktClient{
		client:  newScrapeClient("transfermarkt", timeout, rps, burst, breakerThreshold, logger),
		cache:   cache,
		logger:  logger,
		domains: transfermarktDomains,
	}
}

// GetMarketValue returns the player's market value in M€, or nil when
// no profile with a usable value was found. Results, including misses,
// are cached by normalized name.
func (c *TransfermarktClient) GetMarketValue(ctx context.Context, name string) (*float64, error) {
	normalized := textutil.Normalize(name)
	if normalized == "" {
		return nil, nil
	}

	key := fmt.Sprintf("mv:%s", normalized)
	var cached marketValueEntry
	if err := c.cache.GetSimple(key, &cached); err == nil {
		return cached.Value, nil
	}

	value, err := c.lookup(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetSimple(key, marketValueEntry{Value: value}, marketValueCacheTTL); err != nil {
		c.logger.WithError(err).Warn("Failed to cache market value")
	}
	return value, nil
}

// marketValueEntry wraps the value so a cached miss (nil) is
// distinguishable from a cache miss.
type marketValueEntry struct {
	Value *float64 `json:"value"`
}

func (c *TransfermarktClient) lookup(ctx context.Context, normalized string) (*float64, error) {
	slug := url.QueryEscape(normalized)

	for _, base := range c.domains {
		searchURL := fmt.Sprintf("%s/schnellsuche/ergebnis/schnellsuche?query=%s", base, slug)
		html, err := c.client.fetch(ctx, searchURL)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"domain": base,
				"query":  normalized,
			}).WithError(err).Debug("Transfermarkt search failed")
			continue
		}

		for _, profileURL := range candidateProfileLinks(html, base) {
			page, err := c.client.fetch(ctx, profileURL)
			if err != nil {
				continue
			}
			if mv := valueFromInitData(page); mv != nil {
				return mv, nil
			}
			if mv := valueFromText(page); mv != nil {
				return mv, nil
			}
		}
	}

	c.logger.WithField("query", normalized).Debug("No market value found")
	return nil, nil
}

// candidateProfileLinks extracts player profile URLs from a search
// results page, deduplicated and in page order.
func candidateProfileLinks(html, base string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href*='/profil/spieler/']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return true
		}
		full := href
		if !strings.HasPrefix(href, "http") {
			full = base + href
		}
		if !seen[full] {
			seen[full] = true
			links = append(links, full)
		}
		return len(links) < maxProfileCandidates
	})
	return links
}

// valueFromInitData pulls the market value out of the TM.initData JSON
// block embedded in profile pages. Some domains report cents rather
// than euros, detected by magnitude.
func valueFromInitData(html string) *float64 {
	m := tmInitDataRx.FindStringSubmatch(html)
	if m == nil {
		return nil
	}

	var payload struct {
		MarketValue json.Number `json:"marketValue"`
	}
	if err := json.Unmarshal([]byte(m[1]), &payload); err != nil {
		return nil
	}

	raw, err := payload.MarketValue.Float64()
	if err != nil || raw == 0 {
		return nil
	}

	euros := raw
	if raw >= 1e9 {
		euros = raw / 100
	}
	return scout.FloatPtr(roundMillions(euros / 1e6))
}

// valueFromText is the fallback for pages without the JSON block: the
// first visible "€ 25.00 m" or "€ 500 k" snippet.
func valueFromText(html string) *float64 {
	m := tmValueRx.FindStringSubmatch(html)
	if m == nil {
		return nil
	}

	raw := strings.ReplaceAll(m[1], " ", "")
	raw = normalizeDecimal(raw)

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}

	if strings.EqualFold(m[2], "k") {
		value *= 0.001
	}
	return scout.FloatPtr(roundMillions(value))
}

// normalizeDecimal converts locale-dependent number text to a form
// strconv accepts: "1.234,56" and "1,234.56" both become "1234.56".
func normalizeDecimal(raw string) string {
	hasComma := strings.Contains(raw, ",")
	hasDot := strings.Contains(raw, ".")

	switch {
	case hasComma && hasDot:
		if strings.Index(raw, ".") < strings.Index(raw, ",") {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.ReplaceAll(raw, ",", ".")
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case hasComma:
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	return raw
}

func roundMillions(v float64) float64 {
	return math.Round(v*1000) / 1000
}
