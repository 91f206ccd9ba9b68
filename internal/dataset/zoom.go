package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/debtlens/schema"
)

// LoadZoomWindows reads a repo,from,to CSV. An empty path yields no windows.
func LoadZoomWindows(path string) (map[string]schema.ZoomWindow, error) {
	if path == "" {
		return map[string]schema.ZoomWindow{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	windows, err := ReadZoomWindows(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return windows, nil
}

// ReadZoomWindows parses zoom windows keyed by repository.
// The header row is optional; later rows override earlier ones for the same repository.
func ReadZoomWindows(r io.Reader) (map[string]schema.ZoomWindow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	windows := make(map[string]schema.ZoomWindow)
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "repo") {
			continue
		}
		from, err := ParseDate(row[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		to, err := ParseDate(row[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if to.Before(from) {
			return nil, fmt.Errorf("line %d: window ends before it starts", line)
		}
		repo := strings.TrimSpace(row[0])
		windows[repo] = schema.ZoomWindow{Repo: repo, From: from, To: to}
	}
	return windows, nil
}
