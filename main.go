package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"maps-scraper/config"
	"maps-scraper/models"
	"maps-scraper/regulatory"
	"maps-scraper/scraper/gmaps"
	"maps-scraper/services"
	"maps-scraper/storage"
	"maps-scraper/utils"
)

func main() {
	pipeline := flag.String("pipeline", "reviews", "pipeline to run: reviews | regulatory")
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()

	store, err := storage.NewStore(cfg.DSN(), cfg.RatingsUpsert, logger)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer store.Close()

	switch *pipeline {
	case "reviews":
		runReviews(cfg, store, logger)
	case "regulatory":
		runRegulatory(cfg, store, logger)
	default:
		logger.Error("Unknown pipeline %q (want reviews or regulatory)", *pipeline)
		os.Exit(1)
	}
}

func runReviews(cfg *config.Config, store *storage.Store, logger *utils.Logger) {
	logger.Info("=== Maps Review Pipeline starting ===")
	logger.Info("Config — scroll wait: %dms | max reviews: %d | retries: %d",
		cfg.ScrollWaitMs, cfg.MaxReviews, cfg.MaxRetries)

	urls, err := utils.CleanURLFile(cfg.URLsFile, logger)
	if err != nil {
		logger.Error("URL file: %v", err)
		os.Exit(1)
	}
	if len(urls) == 0 {
		logger.Error("No URLs to process. Exiting.")
		os.Exit(1)
	}

	snapshots, err := storage.NewSnapshotWriter(cfg.SnapshotDir)
	if err != nil {
		logger.Error("Snapshot dir: %v", err)
		os.Exit(1)
	}

	collector := gmaps.New(cfg, logger)
	defer collector.Close()

	collected := 0
	for i, url := range urls {
		logger.Info("--- Listing %d/%d ---", i+1, len(urls))

		rec, err := collector.Collect(url)
		if err != nil {
			logger.Error("Collect %s failed: %v", url, err)
			continue
		}

		rec.Hours = services.CleanHours(rec.Hours)

		listingID, existed, err := store.UpsertListingByURL(rec)
		if err != nil {
			logger.Error("Store listing %q: %v", rec.Name, err)
			continue
		}
		if existed {
			logger.Info("Listing %q already known (id %d)", rec.Name, listingID)
		}

		var rating *float64
		if v, ok := services.ParseRating(rec.GlobalRating); ok {
			rating = &v
		}
		if err := store.InsertRating(listingID, rating, services.ParseCount(rec.TotalReviews)); err != nil {
			logger.Error("Store rating for %q: %v", rec.Name, err)
		}
		if err := store.InsertHours(listingID, rec.Hours); err != nil {
			logger.Error("Store hours for %q: %v", rec.Name, err)
		}

		reviews := make([]models.Review, 0, len(rec.Reviews))
		for _, raw := range rec.Reviews {
			reviews = append(reviews, services.CleanReview(raw))
		}
		stored := store.InsertReviews(listingID, reviews)
		logger.Info("Stored %d/%d review(s) for %q", stored, len(rec.Reviews), rec.Name)

		if path, err := snapshots.Write(i+1, rec); err != nil {
			logger.Warn("Snapshot for %q: %v", rec.Name, err)
		} else {
			logger.Debug("Snapshot written: %s", path)
		}

		collected++
		if i < len(urls)-1 {
			time.Sleep(time.Duration(cfg.ListingDelayMs) * time.Millisecond)
		}
	}

	logger.Info("=== Collection done: %d/%d listing(s) ===", collected, len(urls))
	if collected == 0 {
		os.Exit(1)
	}

	if cfg.AutoAnalyze || promptYes(os.Stdin, "Run sentiment analysis now? [y/n]: ") {
		runAnalysis(store, logger)
	} else {
		logger.Info("Analysis skipped")
	}
}

func runAnalysis(store *storage.Store, logger *utils.Logger) {
	logger.Info("=== Sentiment Analysis starting ===")

	lexicon, err := store.LoadLexicon()
	if err != nil {
		logger.Error("Load lexicon: %v", err)
		os.Exit(1)
	}
	engine := services.NewEngine(lexicon, logger)
	agg := services.NewAggregator(logger)

	listings, err := store.Listings()
	if err != nil {
		logger.Error("Load listings: %v", err)
		os.Exit(1)
	}

	for _, listing := range listings {
		pending, err := store.UnscoredReviews(listing.ID)
		if err != nil {
			logger.Error("Pending reviews for %q: %v", listing.Name, err)
			continue
		}
		logger.Info("Analyzing %q — %d new review(s)", listing.Name, len(pending))

		for _, review := range pending {
			res := engine.ScoreReview(review.Text)
			if res == nil {
				continue
			}
			if err := store.InsertSentiment(review.ID, res); err != nil {
				logger.Error("Store analysis for review %d: %v", review.ID, err)
			}
		}

		rows, err := store.AnalyzedReviews(listing.ID)
		if err != nil {
			logger.Error("Analyzed reviews for %q: %v", listing.Name, err)
			continue
		}
		metrics := agg.Compute(listing.ID, rows)
		if metrics == nil {
			logger.Warn("No analyzed reviews for %q, metrics skipped", listing.Name)
			continue
		}
		if err := store.UpsertMetrics(metrics); err != nil {
			logger.Error("Store metrics for %q: %v", listing.Name, err)
			continue
		}
		agg.Print(listing.Name, metrics)
	}

	stats, err := store.Statistics()
	if err != nil {
		logger.Error("Statistics: %v", err)
		return
	}
	fmt.Println()
	fmt.Println("========== RUN SUMMARY ==========")
	fmt.Printf("  Listings:         %d\n", stats.Listings)
	fmt.Printf("  Reviews:          %d\n", stats.Reviews)
	fmt.Printf("  Analyzed:         %d\n", stats.Analyzed)
	for _, cc := range stats.Distribution {
		fmt.Printf("  %-16s %d\n", cc.Name+":", cc.Count)
	}
	fmt.Println("=================================")
	fmt.Println()
}

func runRegulatory(cfg *config.Config, store *storage.Store, logger *utils.Logger) {
	logger.Info("=== Regulatory Notice Pipeline starting ===")

	p := regulatory.NewPipeline(store, logger, cfg.MaxRetries)
	if err := p.Run(cfg.NoticeURLsFile); err != nil {
		logger.Error("Regulatory pipeline: %v", err)
		os.Exit(1)
	}
}
