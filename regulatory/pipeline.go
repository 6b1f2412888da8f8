package regulatory

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"maps-scraper/models"
	"maps-scraper/storage"
	"maps-scraper/utils"
)

// entityPrefix anchors the commercial-name patterns to the tracked chain.
const entityPrefix = "SANNA"

// officialByNotice assigns the signing official to each notice code.
var officialByNotice = map[string]string{
	"NOR001": "PER001",
	"NOR002": "PER002",
	"NOR003": "PER002",
	"NOR004": "PER002",
	"NOR005": "PER002",
	"NOR006": "PER003",
	"NOR007": "PER003",
	"NOR008": "PER004",
	"NOR009": "PER003",
}

// Pipeline fetches regulatory-notice pages, extracts structured facts,
// links them to known listings and persists notices plus fact rows.
type Pipeline struct {
	store   *storage.Store
	matcher Matcher
	logger  *utils.Logger
	retry   *utils.RetryConfig
	client  *http.Client
}

// NewPipeline wires the default matcher and HTTP client.
func NewPipeline(store *storage.Store, logger *utils.Logger, maxRetries int) *Pipeline {
	return &Pipeline{
		store:   store,
		matcher: NewMatcher(),
		logger:  logger,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Run processes every notice URL in the file, then rebuilds the fact table
// from the stored notices. One bad URL never stops the batch.
func (p *Pipeline) Run(urlsFile string) error {
	data, err := os.ReadFile(urlsFile)
	if err != nil {
		return fmt.Errorf("regulatory: read url file %q: %w", urlsFile, err)
	}
	_, urls := utils.CleanLines(strings.Split(strings.TrimRight(string(data), "\n"), "\n"))

	known, err := p.store.Listings()
	if err != nil {
		return fmt.Errorf("regulatory: load known listings: %w", err)
	}
	p.logger.Info("[normas] %d notice URL(s), %d known listing(s)", len(urls), len(known))

	inserted := 0
	for i, url := range urls {
		code := fmt.Sprintf("NOR%03d", i+1)
		if err := p.processNotice(code, url, known); err != nil {
			p.logger.Error("[normas] %s failed: %v", code, err)
			continue
		}
		inserted++
	}
	p.logger.Info("[normas] %d/%d notice(s) processed", inserted, len(urls))

	facts, err := p.BuildFacts()
	if err != nil {
		return err
	}
	p.logger.Info("[normas] %d compliance fact(s) inserted", facts)
	return nil
}

func (p *Pipeline) processNotice(code, url string, known []models.KnownListing) error {
	p.logger.Info("[normas] Processing %s from %s", code, url)

	var doc *goquery.Document
	err := p.retry.Do("fetch-"+code, func() error {
		resp, err := p.client.Get(url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %s", resp.Status)
		}
		doc, err = goquery.NewDocumentFromReader(resp.Body)
		return err
	})
	if err != nil {
		return err
	}

	pageText := doc.Text()

	noticeType := ExtractType(doc)
	p.logger.Debug("[normas] %s type: %s", code, noticeType)

	date, dateOK := ExtractDate(doc)
	if !dateOK {
		p.logger.Warn("[normas] %s: no date found", code)
	}

	var listingID int64
	if entity := ExtractEntity(pageText, entityPrefix); entity != "" {
		p.logger.Debug("[normas] %s entity: %s", code, entity)
		if match := p.matcher.BestMatch(entity, known); match != nil {
			p.logger.Info("[normas] %s matched listing %q", code, match.Listing.Name)
			listingID = match.Listing.ID
		} else {
			p.logger.Warn("[normas] %s: no listing match for %q", code, entity)
		}
	} else {
		p.logger.Warn("[normas] %s: no entity found in page", code)
	}

	actions := ExtractAction(pageText)
	outcome := ClassifyOutcome(actions)
	official := officialByNotice[code]

	if noticeType == NoType || listingID == 0 || !dateOK || official == "" {
		return fmt.Errorf("incomplete notice data, not inserted")
	}

	timeID, err := p.store.GetOrInsertTime(date)
	if err != nil {
		return err
	}

	return p.store.InsertNotice(&models.Notice{
		Code:         code,
		Type:         noticeType,
		Status:       "Activo",
		Outcome:      outcome,
		Actions:      actions,
		ListingID:    listingID,
		OfficialCode: official,
		Date:         date,
		TimeID:       timeID,
	})
}

// BuildFacts denormalizes every stored notice into one compliance-fact row.
func (p *Pipeline) BuildFacts() (int, error) {
	notices, err := p.store.Notices()
	if err != nil {
		return 0, err
	}

	inserted := 0
	for i := range notices {
		fact := FactFromNotice(&notices[i])
		if err := p.store.InsertFact(&fact); err != nil {
			p.logger.Error("[normas] Fact for %s failed: %v", notices[i].Code, err)
			continue
		}
		inserted++
	}
	return inserted, nil
}

// FactFromNotice maps one notice onto its reporting fact row.
func FactFromNotice(n *models.Notice) models.ComplianceFact {
	fact := models.ComplianceFact{
		ListingID:    n.ListingID,
		OfficialCode: n.OfficialCode,
		NoticeCode:   n.Code,
		Date:         n.Date,
		Total:        1,
	}
	if strings.EqualFold(n.Outcome, OutcomeCompliant) {
		fact.Compliant = 1
	} else {
		fact.NonCompliant = 1
	}
	return fact
}
