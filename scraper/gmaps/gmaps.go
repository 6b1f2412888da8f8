package gmaps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"time"

	"github.com/chromedp/chromedp"

	"maps-scraper/config"
	"maps-scraper/models"
	"maps-scraper/utils"
)

var phoneCharRegexp = regexp.MustCompile(`[^\d+\-\s()]`)

// Collector drives one browsing session per listing URL and extracts the
// listing attributes plus every review the page will load.
type Collector struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig

	allocCtx    context.Context
	cancelAlloc context.CancelFunc
}

// New creates a ready-to-use Collector with a shared browser allocator.
func New(cfg *config.Config, logger *utils.Logger) *Collector {
	chromeBin := findChromeBinary(cfg.ChromeBin)
	logger.Info("[gmaps] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		chromedp.WindowSize(1200, 800),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	allocCtx = silentCtx

	return &Collector{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		allocCtx: allocCtx,
		cancelAlloc: func() {
			cancelSilent()
			cancelAlloc()
		},
	}
}

// Close releases the shared browser allocator.
func (c *Collector) Close() {
	c.cancelAlloc()
}

type listingDetails struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	GlobalRating string `json:"globalRating"`
	TotalReviews string `json:"totalReviews"`
	Website      string `json:"website"`
	Phone        string `json:"phone"`
	Reference    string `json:"reference"`
	Hours        []struct {
		Day   string `json:"day"`
		Hours string `json:"hours"`
	} `json:"hours"`
}

type reviewCard struct {
	Author string `json:"author"`
	Stars  string `json:"stars"`
	Date   string `json:"date"`
	Text   string `json:"text"`
	Photos int    `json:"photos"`
	Likes  string `json:"likes"`
}

// Collect extracts one listing and all of its loadable reviews. A missing
// field never aborts the record; only navigation failure does.
func (c *Collector) Collect(url string) (*models.ListingRecord, error) {
	ctx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, 5*time.Minute)
	defer cancelTimeout()

	err := c.retry.Do("navigate", func() error {
		return chromedp.Run(ctx,
			chromedp.Navigate(url),
			chromedp.WaitVisible("h1", chromedp.ByQuery),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("gmaps: open %s: %w", url, err)
	}

	c.acceptConsent(ctx)

	record := &models.ListingRecord{URL: url, ScrapedAt: time.Now()}

	details, err := c.extractDetails(ctx)
	if err != nil {
		c.logger.Warn("[gmaps] Detail extraction incomplete for %s: %v", url, err)
	} else {
		record.Name = details.Name
		record.Address = details.Address
		record.GlobalRating = details.GlobalRating
		record.TotalReviews = details.TotalReviews
		record.Website = details.Website
		record.Phone = phoneCharRegexp.ReplaceAllString(details.Phone, "")
		record.Reference = details.Reference
		for _, h := range details.Hours {
			record.Hours = append(record.Hours, models.OpeningHour{Day: h.Day, Hours: h.Hours})
		}
	}

	c.openReviewsTab(ctx)
	loaded := c.loadAllReviews(ctx)
	c.logger.Info("[gmaps] %d review card(s) loaded for %s", loaded, url)

	reviews, err := c.extractReviews(ctx)
	if err != nil {
		c.logger.Warn("[gmaps] Review extraction failed for %s: %v", url, err)
	}
	record.Reviews = reviews

	return record, nil
}

// acceptConsent clicks the cookie prompt when one is shown.
func (c *Collector) acceptConsent(ctx context.Context) {
	var clicked bool
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`
			(function() {
				var buttons = document.querySelectorAll('button');
				for (var i = 0; i < buttons.length; i++) {
					var t = (buttons[i].textContent || '').trim();
					if (t === 'Aceptar todo' || t === 'Accept all') {
						buttons[i].click();
						return true;
					}
				}
				return false;
			})()
		`, &clicked),
	)
	if err == nil && clicked {
		chromedp.Run(ctx, chromedp.Sleep(time.Second))
	}
}

func (c *Collector) extractDetails(ctx context.Context) (*listingDetails, error) {
	var details listingDetails

	err := chromedp.Run(ctx,
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(`
			(function() {
				var result = {
					name: '', address: '', globalRating: '', totalReviews: '0',
					website: '', phone: '', reference: '', hours: []
				};

				var title = document.querySelector('h1.DUwDvf.lfPIob') || document.querySelector('h1');
				if (title) result.name = title.innerText.trim();
				var subtitle = document.querySelector('h2.bwoZTb.fontBodyMedium span');
				if (subtitle) result.name += ' - ' + subtitle.innerText.trim();

				var addressBtn = document.querySelector('button[data-item-id="address"]') ||
				                 document.querySelector('button[data-tooltip="Copiar dirección"]');
				if (addressBtn) {
					var inner = addressBtn.querySelector('.Io6YTe');
					result.address = (inner || addressBtn).innerText.trim();
				}

				// Strategy 1: the main rating block
				var ratingBlock = document.querySelector('div.F7nice');
				if (ratingBlock) {
					var ratingSpan = ratingBlock.querySelector('span[aria-hidden="true"]');
					if (ratingSpan && /^\d+[.,]\d+$/.test(ratingSpan.innerText.trim())) {
						result.globalRating = ratingSpan.innerText.trim().replace(',', '.');
					}
					var reviewsSpan = ratingBlock.querySelector('span[aria-label]');
					if (reviewsSpan) {
						var label = reviewsSpan.getAttribute('aria-label') || '';
						var m = label.match(/(\d+)/);
						if (m) result.totalReviews = m[1];
					}
				}

				// Strategy 2: star image aria-label fallback
				if (!result.globalRating) {
					var starImg = document.querySelector('div[role="img"][aria-label*="star"], div[role="img"][aria-label*="estrella"]');
					if (starImg) {
						var m2 = (starImg.getAttribute('aria-label') || '').match(/(\d+[.,]\d+)/);
						if (m2) result.globalRating = m2[1].replace(',', '.');
					}
				}

				var hoursTable = document.querySelector('table.eK4R0e');
				if (hoursTable) {
					var dayRows = hoursTable.querySelectorAll('tr.y0skZc');
					for (var i = 0; i < dayRows.length; i++) {
						var dayCell = dayRows[i].querySelector('td.ylH6lf');
						var hoursCell = dayRows[i].querySelector('td.mxowUb');
						if (dayCell && hoursCell) {
							result.hours.push({
								day: dayCell.innerText.trim(),
								hours: hoursCell.innerText.trim()
							});
						}
					}
				}

				var website = document.querySelector('a[data-item-id="authority"] .Io6YTe');
				if (website) result.website = website.innerText.trim();

				var phone = document.querySelector('button[data-item-id^="phone"] .Io6YTe');
				if (phone) result.phone = phone.innerText.trim();

				var reference = document.querySelector('button[data-item-id="oloc"] .Io6YTe');
				if (reference) result.reference = reference.innerText.trim();

				return result;
			})()
		`, &details),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp detail extract: %w", err)
	}
	return &details, nil
}

// openReviewsTab clicks the reviews tab and waits for the first cards.
func (c *Collector) openReviewsTab(ctx context.Context) {
	var clicked bool
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`
			(function() {
				var buttons = document.querySelectorAll('button');
				for (var i = 0; i < buttons.length; i++) {
					var t = (buttons[i].textContent || '').trim();
					if (t.indexOf('Opiniones') !== -1 || t.indexOf('Reviews') !== -1) {
						buttons[i].click();
						return true;
					}
				}
				return false;
			})()
		`, &clicked),
	)
	if err != nil || !clicked {
		c.logger.Warn("[gmaps] Could not open the reviews tab")
		return
	}
	chromedp.Run(ctx, chromedp.Sleep(3*time.Second))
}

// loadAllReviews grows the review list until no new cards appear for a
// bounded number of attempts, a hard ceiling is reached, or the outer loop
// budget runs out. Clicking a visible "more reviews" control resets the
// no-growth counter, as does any growth.
func (c *Collector) loadAllReviews(ctx context.Context) int {
	wait := time.Duration(c.cfg.ScrollWaitMs) * time.Millisecond

	count := c.countReviews(ctx)
	attempts := 0

	for loop := 0; loop < c.cfg.MaxScrollLoops; loop++ {
		lastCount := count
		c.scrollReviewPane(ctx)
		chromedp.Run(ctx, chromedp.Sleep(wait))
		count = c.countReviews(ctx)

		if count > lastCount {
			attempts = 0
			c.logger.Debug("[gmaps] %d new review(s) loaded (%d total)", count-lastCount, count)
		} else {
			attempts++
			c.logger.Debug("[gmaps] No growth, attempt %d/%d", attempts, c.cfg.MaxNoGrowth)
		}

		if c.clickMoreReviews(ctx) {
			chromedp.Run(ctx, chromedp.Sleep(wait))
			count = c.countReviews(ctx)
			attempts = 0
		}

		// extra page-level scroll in case the pane selector missed
		chromedp.Run(ctx,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(time.Second),
		)

		if attempts >= c.cfg.MaxNoGrowth {
			c.logger.Info("[gmaps] No more reviews after %d attempts", attempts)
			break
		}
		if count > c.cfg.MaxReviews {
			c.logger.Warn("[gmaps] Safety ceiling reached: %d reviews", count)
			break
		}
	}

	return count
}

func (c *Collector) scrollReviewPane(ctx context.Context) {
	chromedp.Run(ctx,
		chromedp.Evaluate(`
			(function() {
				var pane = document.querySelector('div.m6QErb.DxyBCb.kA9KIf.dS8AEf') ||
				           document.querySelector('div.m6QErb.DxyBCb.kA9KIf.dS8AEf.ecceSd');
				if (pane) pane.scrollTop = pane.scrollHeight;
			})()
		`, nil),
	)
}

func (c *Collector) countReviews(ctx context.Context) int {
	var count int
	chromedp.Run(ctx,
		chromedp.Evaluate(`document.querySelectorAll('.jftiEf').length`, &count),
	)
	return count
}

func (c *Collector) clickMoreReviews(ctx context.Context) bool {
	var clicked bool
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`
			(function() {
				var buttons = document.querySelectorAll('button');
				for (var i = 0; i < buttons.length; i++) {
					var t = (buttons[i].textContent || '').trim();
					if ((t.indexOf('Más reseñas') !== -1 || t.indexOf('More reviews') !== -1) &&
						buttons[i].offsetParent !== null) {
						buttons[i].click();
						return true;
					}
				}
				return false;
			})()
		`, &clicked),
	)
	return err == nil && clicked
}

// extractReviews pulls every visible review card. A card that fails to
// parse is skipped without affecting the rest.
func (c *Collector) extractReviews(ctx context.Context) ([]models.RawReview, error) {
	var cards []reviewCard

	err := chromedp.Run(ctx,
		chromedp.Evaluate(`
			(function() {
				var results = [];
				var cards = document.querySelectorAll('.jftiEf');
				for (var i = 0; i < cards.length; i++) {
					try {
						var card = cards[i];

						var authorEl = card.querySelector('.d4r55');
						var author = authorEl ? authorEl.innerText.trim() : '';

						var stars = card.querySelectorAll('.hCCjke.NhBTye').length;

						var dateEl = card.querySelector('.rsqaWe');
						var date = dateEl ? dateEl.innerText.trim() : '';

						var textEl = card.querySelector('.wiI7pd');
						var text = textEl ? textEl.innerText : '';

						var photos = 0;
						var photoEls = card.querySelectorAll('.RfnDt');
						for (var j = 0; j < photoEls.length; j++) {
							var pt = photoEls[j].innerText || '';
							if (/photo|foto/i.test(pt)) {
								var pm = pt.match(/(\d+)/);
								if (pm) photos = parseInt(pm[1], 10);
								break;
							}
						}

						var likes = '0';
						var likesEl = card.querySelector('button[aria-label*="útil"] .znYl0 > span') ||
						              card.querySelector('button[aria-label*="helpful"] span');
						if (likesEl) likes = likesEl.innerText.trim();

						results.push({
							author: author,
							stars: String(stars),
							date: date,
							text: text,
							photos: photos,
							likes: likes
						});
					} catch (e) {
						// skip just this card
					}
				}
				return results;
			})()
		`, &cards),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp review extract: %w", err)
	}

	reviews := make([]models.RawReview, 0, len(cards))
	for _, card := range cards {
		reviews = append(reviews, models.RawReview{
			Author: card.Author,
			Stars:  card.Stars,
			Date:   card.Date,
			Text:   card.Text,
			Photos: card.Photos,
			Likes:  card.Likes,
		})
	}
	return reviews, nil
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
