package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SplitURL splits a plain-HTTP url into host and page. The scheme prefix is
// optional; the host part may carry an explicit port ("example.com:8080").
// The returned page has no leading slash.
func SplitURL(url string) (string, string, error) {
	if strings.HasPrefix(url, "https://") {
		return "", "", fmt.Errorf("https is not supported: %w", ErrBadURL)
	}
	trimmed := strings.TrimPrefix(url, "http://")
	host, page, found := strings.Cut(trimmed, "/")
	if !found || host == "" {
		return "", "", fmt.Errorf("%w: %s", ErrBadURL, url)
	}
	return host, page, nil
}

// InferOutputPath derives a file name from the page when no output path was
// given on the command line.
func InferOutputPath(page string) string {
	parts := strings.Split(page, "/")
	name := parts[len(parts)-1]
	if name == "" {
		return "download"
	}
	return name
}

// RenewOutputPath adds a numeric suffix to avoid clobbering an existing file.
func RenewOutputPath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		newPath := fmt.Sprintf("%s.%d%s", base, i, ext)
		if _, err := os.Stat(newPath); os.IsNotExist(err) {
			return newPath
		}
	}
}

func ReadDownloadList(filePath string) ([]DownloadEntry, error) {
	log := GetLogger("config")
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading YAML file: %v", err)
	}
	var entries []DownloadEntry
	err = yaml.Unmarshal(data, &entries)
	if err != nil {
		return nil, fmt.Errorf("error parsing YAML file: %v", err)
	}
	for i, entry := range entries {
		if entry.URL == "" {
			return nil, fmt.Errorf("missing URL for entry %d", i+1)
		}
	}
	log.Debug().Int("entries", len(entries)).Msg("Parsed download list")
	return entries, nil
}
