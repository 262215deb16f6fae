// Package file contains helpers for reading local list files, such as the
// dataset exclude list passed with --exclude_file.
package file

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadList reads a text file and returns its entries in file order.
//
// Each line may hold one entry or several comma-separated entries. Blank
// lines, blank entries and lines starting with '#' (after trimming) are
// skipped, so list files can carry comments and separators.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, entry := range strings.Split(line, ",") {
			if entry = strings.TrimSpace(entry); entry != "" {
				out = append(out, entry)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read list %s: %w", path, err)
	}
	return out, nil
}
