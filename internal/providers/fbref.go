package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/scoutlab/xi-optimizer/internal/scout"
)

// leagueComps maps the league names we accept to FBref competition
// paths. The combined Big 5 page carries every league we care about,
// so it doubles as the fallback.
var leagueComps = map[string]string{
	"Big 5 European Leagues Combined": "Big5/stats/players/Big-5-European-Leagues-Stats",
	"ENG-Premier League":              "9/stats/Premier-League-Stats",
	"ESP-La Liga":                     "12/stats/La-Liga-Stats",
	"GER-Bundesliga":                  "20/stats/Bundesliga-Stats",
	"ITA-Serie A":                     "11/stats/Serie-A-Stats",
	"FRA-Ligue 1":                     "13/stats/Ligue-1-Stats",
}

const pageCacheTTL = time.Hour

// FBrefClient scrapes season player stats from FBref standard stats
// tables. Pages are cached so repeated pool refreshes within the TTL
// never hit the site.
type FBrefClient struct {
	client  *scrapeClient
	cache   scout.CacheProvider
	logger  *logrus.Logger
	baseURL string
}

// NewFBrefClient creates a new FBref scraping client.
func NewFBrefClient(baseURL string, cache scout.CacheProvider, timeout time.Duration, rps float64, burst, breakerThreshold int, logger *logrus.Logger) *FBrefClient {
	return &FBrefClient{
		client:  newScrapeClient("fbref", timeout, rps, burst, breakerThreshold, logger),
		cache:   cache,
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchSeasonStats downloads the standard stats table for the given
// season and league and returns one raw row per player, keyed by
// FBref's data-stat column names.
func (c *FBrefClient) FetchSeasonStats(ctx context.Context, season, league string) ([]scout.RawRow, error) {
	url, err := c.statsURL(season, league)
	if err != nil {
		return nil, err
	}

	html, err := c.fetchPage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching fbref stats: %w", err)
	}

	rows, err := parseStandardTable(html, season, league)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"season": season,
		"league": league,
		"rows":   len(rows),
	}).Info("Fetched FBref season stats")
	return rows, nil
}

func (c *FBrefClient) statsURL(season, league string) (string, error) {
	comp, ok := leagueComps[league]
	if !ok {
		return "", fmt.Errorf("unknown league %q", league)
	}
	return fmt.Sprintf("%s/en/comps/%s", c.baseURL, comp), nil
}

func (c *FBrefClient) fetchPage(ctx context.Context, url string) (string, error) {
	key := pageCacheKey(url)

	var cached string
	if err := c.cache.GetSimple(key, &cached); err == nil && cached != "" {
		return cached, nil
	}

	html, err := c.client.fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if err := c.cache.SetSimple(key, html, pageCacheTTL); err != nil {
		c.logger.WithError(err).Warn("Failed to cache FBref page")
	}
	return html, nil
}

// parseStandardTable extracts player rows from an FBref standard stats
// page. FBref ships some tables inside HTML comments, so comment
// markers are stripped before parsing.
func parseStandardTable(html, season, league string) ([]scout.RawRow, error) {
	html = strings.ReplaceAll(html, "<!--", "")
	html = strings.ReplaceAll(html, "-->", "")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing fbref page: %w", err)
	}

	table := doc.Find("table#stats_standard")
	if table.Length() == 0 {
		return nil, fmt.Errorf("stats_standard table not found")
	}

	var rows []scout.RawRow
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		// Repeated header rows are interleaved with data rows.
		if class, _ := tr.Attr("class"); strings.Contains(class, "thead") {
			return
		}

		row := scout.RawRow{"season": season, "league": league}
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			stat, ok := cell.Attr("data-stat")
			if !ok || stat == "" {
				return
			}
			row[stat] = strings.TrimSpace(cell.Text())
		})

		if row["player"] == "" {
			return
		}
		rows = append(rows, row)
	})

	return rows, nil
}
