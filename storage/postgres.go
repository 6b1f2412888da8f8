package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"maps-scraper/models"
	"maps-scraper/utils"
)

// Store persists both pipelines' data in PostgreSQL.
type Store struct {
	db            *sql.DB
	logger        *utils.Logger
	ratingsUpsert bool
}

// NewStore opens a connection to PostgreSQL, runs schema migrations and
// seeds the static lookups. The caller treats a failure here as fatal.
func NewStore(dsn string, ratingsUpsert bool, logger *utils.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	s := &Store{db: db, logger: logger, ratingsUpsert: ratingsUpsert}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	if err := s.seed(); err != nil {
		return nil, fmt.Errorf("postgres: seed: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id             SERIAL PRIMARY KEY,
			url            TEXT        UNIQUE NOT NULL,
			name           TEXT        NOT NULL DEFAULT '',
			address        TEXT        NOT NULL DEFAULT '',
			website        TEXT,
			phone          TEXT,
			reference_code TEXT,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS ratings (
			id            SERIAL PRIMARY KEY,
			listing_id    INTEGER     NOT NULL REFERENCES listings(id),
			global_rating NUMERIC(3,2),
			total_reviews INTEGER     NOT NULL DEFAULT 0,
			recorded_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS opening_hours (
			id         SERIAL PRIMARY KEY,
			listing_id INTEGER NOT NULL REFERENCES listings(id),
			day_label  TEXT    NOT NULL,
			hours      TEXT    NOT NULL,
			is_closed  BOOLEAN NOT NULL DEFAULT FALSE
		);

		CREATE TABLE IF NOT EXISTS reviews (
			id          SERIAL PRIMARY KEY,
			listing_id  INTEGER     NOT NULL REFERENCES listings(id),
			author      TEXT        NOT NULL,
			rating      INTEGER     NOT NULL DEFAULT 0,
			review_date TEXT,
			text        TEXT        NOT NULL DEFAULT '',
			photo_count INTEGER     NOT NULL DEFAULT 0,
			likes       INTEGER     NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS emotional_categories (
			id   INTEGER PRIMARY KEY,
			name TEXT UNIQUE NOT NULL
		);

		CREATE TABLE IF NOT EXISTS keyword_lexicon (
			id          SERIAL PRIMARY KEY,
			word        TEXT             UNIQUE NOT NULL,
			weight      DOUBLE PRECISION NOT NULL,
			type        TEXT             NOT NULL DEFAULT 'manual',
			category_id INTEGER          NOT NULL REFERENCES emotional_categories(id)
		);

		CREATE TABLE IF NOT EXISTS sentiment_analyses (
			id                SERIAL PRIMARY KEY,
			review_id         INTEGER          UNIQUE NOT NULL REFERENCES reviews(id),
			category_id       INTEGER          NOT NULL REFERENCES emotional_categories(id),
			score             DOUBLE PRECISION NOT NULL,
			confidence        DOUBLE PRECISION NOT NULL,
			positive_words    TEXT             NOT NULL DEFAULT '',
			negative_words    TEXT             NOT NULL DEFAULT '',
			detected_keywords TEXT,
			created_at        TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS emotional_metrics (
			id                SERIAL PRIMARY KEY,
			listing_id        INTEGER          UNIQUE NOT NULL REFERENCES listings(id),
			total_analyzed    INTEGER          NOT NULL,
			pct_very_positive DOUBLE PRECISION NOT NULL DEFAULT 0,
			pct_positive      DOUBLE PRECISION NOT NULL DEFAULT 0,
			pct_neutral       DOUBLE PRECISION NOT NULL DEFAULT 0,
			pct_negative      DOUBLE PRECISION NOT NULL DEFAULT 0,
			pct_very_negative DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_score         DOUBLE PRECISION NOT NULL DEFAULT 0,
			satisfaction      DOUBLE PRECISION NOT NULL DEFAULT 0,
			top_keywords      TEXT             NOT NULL DEFAULT '',
			last_analyzed_at  TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS time_dim (
			id           SERIAL PRIMARY KEY,
			date         DATE UNIQUE NOT NULL,
			year         INTEGER     NOT NULL,
			month        INTEGER     NOT NULL,
			quarter      INTEGER     NOT NULL,
			day_of_year  INTEGER     NOT NULL,
			week_of_year INTEGER     NOT NULL,
			weekday      TEXT        NOT NULL,
			year_month   TEXT        NOT NULL
		);

		CREATE TABLE IF NOT EXISTS officials (
			code       TEXT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name  TEXT NOT NULL,
			role       TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS regulatory_notices (
			code          TEXT PRIMARY KEY,
			notice_type   TEXT    NOT NULL,
			status        TEXT    NOT NULL,
			outcome       TEXT    NOT NULL,
			actions       TEXT    NOT NULL,
			listing_id    INTEGER NOT NULL REFERENCES listings(id),
			official_code TEXT    NOT NULL REFERENCES officials(code),
			notice_date   DATE    NOT NULL,
			time_id       INTEGER NOT NULL REFERENCES time_dim(id)
		);

		CREATE TABLE IF NOT EXISTS compliance_facts (
			id                   SERIAL PRIMARY KEY,
			listing_id           INTEGER NOT NULL REFERENCES listings(id),
			official_code        TEXT    NOT NULL REFERENCES officials(code),
			notice_code          TEXT    NOT NULL REFERENCES regulatory_notices(code),
			fact_date            DATE    NOT NULL,
			total_actions        INTEGER NOT NULL,
			compliant_actions    INTEGER NOT NULL,
			noncompliant_actions INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_reviews_listing    ON reviews(listing_id);
		CREATE INDEX IF NOT EXISTS idx_sentiment_category ON sentiment_analyses(category_id);
		CREATE INDEX IF NOT EXISTS idx_facts_listing      ON compliance_facts(listing_id);
	`)
	return err
}

func (s *Store) seed() error {
	for id, name := range models.CategoryNames {
		if _, err := s.db.Exec(`
			INSERT INTO emotional_categories (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO NOTHING
		`, id, name); err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
	}

	for _, o := range seedOfficials {
		if _, err := s.db.Exec(`
			INSERT INTO officials (code, first_name, last_name, role)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (code) DO NOTHING
		`, o.Code, o.FirstName, o.LastName, o.Role); err != nil {
			return fmt.Errorf("seed officials: %w", err)
		}
	}

	for _, e := range seedLexicon {
		if _, err := s.db.Exec(`
			INSERT INTO keyword_lexicon (word, weight, type, category_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (word) DO NOTHING
		`, e.word, e.weight, "manual", e.categoryID); err != nil {
			return fmt.Errorf("seed lexicon: %w", err)
		}
	}

	return nil
}

// UpsertListingByURL returns the id of the listing with the given URL,
// inserting it first when unknown. The second return reports whether the
// listing already existed.
func (s *Store) UpsertListingByURL(rec *models.ListingRecord) (int64, bool, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM listings WHERE url = $1`, rec.URL).Scan(&id)
	if err == nil {
		s.logger.Warn("[db] URL already known, reusing listing %d", id)
		return id, true, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("postgres: lookup listing: %w", err)
	}

	err = s.db.QueryRow(`
		INSERT INTO listings (url, name, address, website, phone, reference_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, rec.URL, rec.Name, rec.Address,
		nullString(rec.Website), nullString(rec.Phone), nullString(rec.Reference),
	).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("postgres: insert listing: %w", err)
	}
	return id, false, nil
}

// InsertRating records a rating summary for a listing. In append mode each
// ingestion adds a row (rating history); in upsert mode one row per listing
// is kept current.
func (s *Store) InsertRating(listingID int64, rating *float64, totalReviews int) error {
	if s.ratingsUpsert {
		res, err := s.db.Exec(`
			UPDATE ratings SET global_rating = $1, total_reviews = $2, recorded_at = NOW()
			WHERE listing_id = $3
		`, nullFloat(rating), totalReviews, listingID)
		if err != nil {
			return fmt.Errorf("postgres: update rating: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return nil
		}
	}

	_, err := s.db.Exec(`
		INSERT INTO ratings (listing_id, global_rating, total_reviews)
		VALUES ($1, $2, $3)
	`, listingID, nullFloat(rating), totalReviews)
	if err != nil {
		return fmt.Errorf("postgres: insert rating: %w", err)
	}
	return nil
}

// InsertHours stores the opening-hours rows for a listing.
func (s *Store) InsertHours(listingID int64, hours []models.OpeningHour) error {
	for _, h := range hours {
		_, err := s.db.Exec(`
			INSERT INTO opening_hours (listing_id, day_label, hours, is_closed)
			VALUES ($1, $2, $3, $4)
		`, listingID, h.Day, h.Hours, h.Closed)
		if err != nil {
			return fmt.Errorf("postgres: insert hours: %w", err)
		}
	}
	return nil
}

// InsertReviews stores cleaned reviews one by one; a single failed insert
// is logged and skipped so the rest of the batch still lands.
func (s *Store) InsertReviews(listingID int64, reviews []models.Review) int {
	inserted := 0
	for _, r := range reviews {
		_, err := s.db.Exec(`
			INSERT INTO reviews (listing_id, author, rating, review_date, text, photo_count, likes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, listingID, r.Author, r.Rating, nullString(r.Date), r.Text, r.Photos, r.Likes)
		if err != nil {
			s.logger.Warn("[db] Skipping review by %q: %v", r.Author, err)
			continue
		}
		inserted++
	}
	return inserted
}

// Listings returns every known listing as (id, name) pairs.
func (s *Store) Listings() ([]models.KnownListing, error) {
	rows, err := s.db.Query(`SELECT id, name FROM listings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list listings: %w", err)
	}
	defer rows.Close()

	var out []models.KnownListing
	for rows.Next() {
		var l models.KnownListing
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("postgres: scan listing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UnscoredReviews returns the reviews of a listing that have text but no
// sentiment analysis yet. Scored reviews are never re-scored.
func (s *Store) UnscoredReviews(listingID int64) ([]models.Review, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.text
		FROM reviews r
		LEFT JOIN sentiment_analyses a ON r.id = a.review_id
		WHERE r.listing_id = $1
		  AND a.id IS NULL
		  AND r.text <> ''
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("postgres: unscored reviews: %w", err)
	}
	defer rows.Close()

	var out []models.Review
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.Text); err != nil {
			return nil, fmt.Errorf("postgres: scan review: %w", err)
		}
		r.ListingID = listingID
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertSentiment persists one scoring result for a review.
func (s *Store) InsertSentiment(reviewID int64, res *models.SentimentResult) error {
	detected, err := json.Marshal(res.Detected)
	if err != nil {
		return fmt.Errorf("postgres: marshal keywords: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO sentiment_analyses
			(review_id, category_id, score, confidence, positive_words, negative_words, detected_keywords)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, reviewID, res.CategoryID, res.Score, res.Confidence,
		strings.Join(res.PositiveWords, ", "),
		strings.Join(res.NegativeWords, ", "),
		string(detected))
	if err != nil {
		return fmt.Errorf("postgres: insert sentiment: %w", err)
	}
	return nil
}

// AnalyzedReviews fetches the aggregation inputs for a listing: category,
// score and the serialized keyword hits of every stored analysis.
func (s *Store) AnalyzedReviews(listingID int64) ([]models.AnalyzedReview, error) {
	rows, err := s.db.Query(`
		SELECT a.category_id, a.score, COALESCE(a.detected_keywords, '')
		FROM sentiment_analyses a
		INNER JOIN reviews r ON a.review_id = r.id
		WHERE r.listing_id = $1
		ORDER BY a.id
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("postgres: analyzed reviews: %w", err)
	}
	defer rows.Close()

	var out []models.AnalyzedReview
	for rows.Next() {
		var a models.AnalyzedReview
		if err := rows.Scan(&a.CategoryID, &a.Score, &a.DetectedJSON); err != nil {
			return nil, fmt.Errorf("postgres: scan analysis: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpsertMetrics writes the one metrics row per listing, refreshing the
// last-analyzed timestamp. Re-running with the same data is idempotent.
func (s *Store) UpsertMetrics(m *models.EmotionalMetrics) error {
	_, err := s.db.Exec(`
		INSERT INTO emotional_metrics
			(listing_id, total_analyzed, pct_very_positive, pct_positive, pct_neutral,
			 pct_negative, pct_very_negative, avg_score, satisfaction, top_keywords)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (listing_id) DO UPDATE SET
			total_analyzed    = EXCLUDED.total_analyzed,
			pct_very_positive = EXCLUDED.pct_very_positive,
			pct_positive      = EXCLUDED.pct_positive,
			pct_neutral       = EXCLUDED.pct_neutral,
			pct_negative      = EXCLUDED.pct_negative,
			pct_very_negative = EXCLUDED.pct_very_negative,
			avg_score         = EXCLUDED.avg_score,
			satisfaction      = EXCLUDED.satisfaction,
			top_keywords      = EXCLUDED.top_keywords,
			last_analyzed_at  = NOW()
	`, m.ListingID, m.TotalAnalyzed, m.PctVeryPositive, m.PctPositive, m.PctNeutral,
		m.PctNegative, m.PctVeryNegative, m.AvgScore, m.Satisfaction, m.TopKeywords)
	if err != nil {
		return fmt.Errorf("postgres: upsert metrics: %w", err)
	}
	return nil
}

// LoadLexicon reads the full keyword lexicon with category names.
func (s *Store) LoadLexicon() ([]models.LexiconEntry, error) {
	rows, err := s.db.Query(`
		SELECT k.word, k.weight, k.type, c.name
		FROM keyword_lexicon k
		INNER JOIN emotional_categories c ON k.category_id = c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: load lexicon: %w", err)
	}
	defer rows.Close()

	var out []models.LexiconEntry
	for rows.Next() {
		var e models.LexiconEntry
		if err := rows.Scan(&e.Word, &e.Weight, &e.Type, &e.Category); err != nil {
			return nil, fmt.Errorf("postgres: scan lexicon entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetOrInsertTime returns the time-dimension row id for a date, creating
// the row when missing.
func (s *Store) GetOrInsertTime(date time.Time) (int64, error) {
	day := date.Format("2006-01-02")

	var id int64
	err := s.db.QueryRow(`SELECT id FROM time_dim WHERE date = $1`, day).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("postgres: lookup time: %w", err)
	}

	_, week := date.ISOWeek()
	err = s.db.QueryRow(`
		INSERT INTO time_dim (date, year, month, quarter, day_of_year, week_of_year, weekday, year_month)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, day, date.Year(), int(date.Month()), (int(date.Month())-1)/3+1,
		date.YearDay(), week, date.Weekday().String(),
		fmt.Sprintf("%04d-%02d", date.Year(), int(date.Month())),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert time: %w", err)
	}
	return id, nil
}

// InsertNotice stores one fully resolved regulatory notice.
func (s *Store) InsertNotice(n *models.Notice) error {
	_, err := s.db.Exec(`
		INSERT INTO regulatory_notices
			(code, notice_type, status, outcome, actions, listing_id, official_code, notice_date, time_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (code) DO NOTHING
	`, n.Code, n.Type, n.Status, n.Outcome, n.Actions,
		n.ListingID, n.OfficialCode, n.Date.Format("2006-01-02"), n.TimeID)
	if err != nil {
		return fmt.Errorf("postgres: insert notice: %w", err)
	}
	return nil
}

// Notices returns every stored notice, for fact building.
func (s *Store) Notices() ([]models.Notice, error) {
	rows, err := s.db.Query(`
		SELECT code, notice_type, status, outcome, actions, listing_id, official_code, notice_date, time_id
		FROM regulatory_notices
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list notices: %w", err)
	}
	defer rows.Close()

	var out []models.Notice
	for rows.Next() {
		var n models.Notice
		if err := rows.Scan(&n.Code, &n.Type, &n.Status, &n.Outcome, &n.Actions,
			&n.ListingID, &n.OfficialCode, &n.Date, &n.TimeID); err != nil {
			return nil, fmt.Errorf("postgres: scan notice: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// InsertFact stores one denormalized compliance fact row.
func (s *Store) InsertFact(f *models.ComplianceFact) error {
	_, err := s.db.Exec(`
		INSERT INTO compliance_facts
			(listing_id, official_code, notice_code, fact_date, total_actions, compliant_actions, noncompliant_actions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, f.ListingID, f.OfficialCode, f.NoticeCode, f.Date.Format("2006-01-02"),
		f.Total, f.Compliant, f.NonCompliant)
	if err != nil {
		return fmt.Errorf("postgres: insert fact: %w", err)
	}
	return nil
}

// CategoryCount is one row of the global emotional distribution.
type CategoryCount struct {
	Name  string
	Count int
}

// Stats is the final summary printed after an analysis run.
type Stats struct {
	Listings     int
	Reviews      int
	Analyzed     int
	Distribution []CategoryCount
}

// Statistics computes run totals and the global category distribution.
func (s *Store) Statistics() (*Stats, error) {
	st := &Stats{}
	err := s.db.QueryRow(`
		SELECT
			COUNT(DISTINCT l.id),
			COUNT(DISTINCT r.id),
			COUNT(DISTINCT a.id)
		FROM listings l
		LEFT JOIN reviews r ON l.id = r.listing_id
		LEFT JOIN sentiment_analyses a ON r.id = a.review_id
	`).Scan(&st.Listings, &st.Reviews, &st.Analyzed)
	if err != nil {
		return nil, fmt.Errorf("postgres: statistics: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT c.name, COUNT(a.id)
		FROM sentiment_analyses a
		INNER JOIN emotional_categories c ON a.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Name, &cc.Count); err != nil {
			return nil, fmt.Errorf("postgres: scan distribution: %w", err)
		}
		st.Distribution = append(st.Distribution, cc)
	}
	return st, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
