package utils

import (
	"fmt"
	"os"
	"strings"
)

// CleanLines removes duplicate URL lines while preserving comment lines
// (starting with '#') and blank lines verbatim. Data lines keep their
// first-occurrence order. Returns the cleaned lines and the unique URLs.
func CleanLines(lines []string) ([]string, []string) {
	seen := NewURLSet()
	cleaned := make([]string, 0, len(lines))
	urls := make([]string, 0, len(lines))

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			cleaned = append(cleaned, line)
			continue
		}
		if seen.Add(line) {
			cleaned = append(cleaned, line)
			urls = append(urls, line)
		}
	}

	return cleaned, urls
}

// CleanURLFile rewrites the file at path with duplicate URLs removed and
// returns the unique URLs in first-occurrence order.
func CleanURLFile(path string, logger *Logger) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read url file %q: %w", path, err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	cleaned, urls := CleanLines(lines)

	dropped := 0
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" && !strings.HasPrefix(t, "#") {
			dropped++
		}
	}
	dropped -= len(urls)
	if dropped > 0 {
		logger.Warn("[urls] Removed %d duplicate URL(s) from %s", dropped, path)
	}

	if err := os.WriteFile(path, []byte(strings.Join(cleaned, "\n")+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("rewrite url file %q: %w", path, err)
	}

	logger.Info("[urls] %s cleaned — %d unique URL(s)", path, len(urls))
	return urls, nil
}
