package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/parquet"
	"github.com/huangsam/debtlens/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// shortCommitLen is how much of a commit identifier the hotspot table shows.
const shortCommitLen = 10

// WriteHotspotsFile persists the full hotspot listing of a repository. Rows keep the
// schema of the uncleaned dataset and gain a DELTA column.
func WriteHotspotsFile(path string, listing schema.HotspotListing, precision int) error {
	return writeCSVFile(path, hotspotHeader(listing), hotspotRows(listing, precision))
}

// PrintHotspots outputs a ranked hotspot listing, dispatching based on the output
// format configured.
func PrintHotspots(listing schema.HotspotListing, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteHotspotsJSON(w, listing)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteHotspotsParquet(parquet.ConvertHotspots(listing), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, hotspotHeader(listing), func(cw *csv.Writer) error {
				return cw.WriteAll(hotspotRows(listing, cfg.Precision))
			})
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHotspotsTable(w, listing, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

func hotspotHeader(listing schema.HotspotListing) []string {
	header := slices.Clone(listing.Header)
	if len(header) == 0 {
		header = slices.Clone(schema.RequiredColumns)
	}
	return append(header, schema.ColDelta)
}

// hotspotRows renders each hotspot in the dataset column order. The original cells
// are reused when they line up with the header, otherwise they are rebuilt from
// the parsed fields.
func hotspotRows(listing schema.HotspotListing, precision int) [][]string {
	header := hotspotHeader(listing)
	columns := header[:len(header)-1]
	fmtFloat, _ := createFormatters(precision)

	rows := make([][]string, 0, len(listing.Hotspots))
	for _, h := range listing.Hotspots {
		var row []string
		if len(h.Raw) == len(columns) {
			row = slices.Clone(h.Raw)
		} else {
			row = make([]string, len(columns))
			for i, col := range columns {
				row[i] = hotspotCell(listing.Repo, h, col, fmtFloat)
			}
		}
		rows = append(rows, append(row, fmtFloat(h.Delta)))
	}
	return rows
}

func hotspotCell(repo string, h schema.HotspotRecord, col string, fmtFloat func(float64) string) string {
	switch col {
	case schema.ColRepo:
		return repo
	case schema.ColCommit:
		return h.Commit
	case schema.ColParent:
		return strings.Join(h.Parents, " ")
	case schema.ColAuthorDate:
		return h.Date.Format(time.DateOnly)
	case schema.ColDebt:
		return fmtFloat(h.Debt)
	case schema.ColMicroservices:
		return fmtFloat(h.Microservices)
	default:
		return ""
	}
}

// writeHotspotsTable generates and writes the human-readable hotspot table.
func writeHotspotsTable(w io.Writer, listing schema.HotspotListing, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Commit", "Date", "Debt", "Delta", "Microservices"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, h := range listing.Hotspots {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			shortCommit(h.Commit),
			h.Date.Format(time.DateOnly),
			contract.FormatFloat(h.Debt, cfg.Precision),
			signedDelta(h.Delta, cfg.Precision, cfg.UseColors),
			contract.FormatFloat(h.Microservices, 0),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing top %d hotspots of %s\n", len(listing.Hotspots), listing.Repo); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Ranking completed in %v\n", duration.Round(time.Millisecond)); err != nil {
		return err
	}
	return nil
}

// WriteHotspotsJSON writes the listing with a rank per hotspot.
func WriteHotspotsJSON(w io.Writer, listing schema.HotspotListing) error {
	type jsonHotspot struct {
		Rank          int      `json:"rank"`
		Commit        string   `json:"commit"`
		Parents       []string `json:"parents"`
		Date          string   `json:"date"`
		Debt          *float64 `json:"debt"`
		Microservices *float64 `json:"microservices"`
		Delta         *float64 `json:"delta"`
	}
	type jsonListing struct {
		Repo     string        `json:"repo"`
		Hotspots []jsonHotspot `json:"hotspots"`
	}

	out := jsonListing{Repo: listing.Repo, Hotspots: make([]jsonHotspot, 0, len(listing.Hotspots))}
	for i, h := range listing.Hotspots {
		parents := h.Parents
		if parents == nil {
			parents = []string{}
		}
		out.Hotspots = append(out.Hotspots, jsonHotspot{
			Rank:          i + 1,
			Commit:        h.Commit,
			Parents:       parents,
			Date:          h.Date.Format(time.DateOnly),
			Debt:          optionalFloat(h.Debt),
			Microservices: optionalFloat(h.Microservices),
			Delta:         optionalFloat(h.Delta),
		})
	}
	return writeJSON(w, out)
}

func shortCommit(commit string) string {
	if len(commit) > shortCommitLen {
		return commit[:shortCommitLen]
	}
	return commit
}
