// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregate

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/pollsync/models"
)

// ExportTimeLayout formats the "Exported" row.
const ExportTimeLayout = "2006-01-02 15:04:05"

// ExportFilename is the download name for a poll's CSV export.
func ExportFilename(pollID string) string {
	return "poll-results-" + pollID + ".csv"
}

// ExportRows lays out the CSV export: metadata rows, a column header, then one
// row per option in stored order.
func ExportRows(poll models.Poll, exportedAt time.Time) [][]string {
	rows := [][]string{
		{"Poll Results Export"},
		{},
		{"Title", poll.Title},
		{"Description", poll.Description},
		{"Total Votes", strconv.Itoa(poll.TotalVotes)},
		{"Exported", exportedAt.Format(ExportTimeLayout)},
		{},
		{"Option", "Votes", "Percentage"},
	}

	for _, opt := range poll.Options {
		rows = append(rows, []string{
			opt.Text,
			strconv.Itoa(opt.Votes),
			fmt.Sprintf("%.2f%%", share(opt, poll)),
		})
	}
	return rows
}

// WriteCSV joins each row with commas and rows with newlines. Fields are not
// quoted, so a comma inside a value shifts the columns.
func WriteCSV(w io.Writer, rows [][]string) error {
	bw := bufio.NewWriter(w)
	for i, row := range rows {
		if i > 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(strings.Join(row, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// VotesCast renders the poll's vote total for display, e.g. "1,204 votes cast".
func VotesCast(poll models.Poll) string {
	if poll.TotalVotes == 1 {
		return "1 vote cast"
	}
	return humanize.Comma(int64(poll.TotalVotes)) + " votes cast"
}
