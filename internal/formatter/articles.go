// Package formatter renders article lists and pipeline states for the terminal.
package formatter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"localnews/internal/models"
	"localnews/internal/news"
	"localnews/pkg/utils"
)

// Options controls table rendering.
type Options struct {
	// TitleWidth truncates titles to this many terminal cells; 0 disables truncation.
	TitleWidth int
	ShowURL    bool
}

// RenderArticles renders articles as a markdown table with columns padded to
// their display width, so CJK and other wide characters line up.
func RenderArticles(articles []models.Article, opts Options) string {
	text := utils.NewStringHelper()

	header := []string{"#", "Date", "Section", "Title", "Author"}
	if opts.ShowURL {
		header = append(header, "URL")
	}

	rows := [][]string{header}

	for i, article := range articles {
		row := []string{
			strconv.Itoa(i + 1),
			article.DisplayDate(),
			escapeCell(article.Section),
			escapeCell(text.TruncateString(article.Title, opts.TitleWidth)),
			escapeCell(article.Author),
		}

		if opts.ShowURL {
			row = append(row, escapeCell(article.URL))
		}

		rows = append(rows, row)
	}

	return strings.Join(formatTable(rows), "\n") + "\n"
}

// RenderJSON renders articles as indented JSON.
func RenderJSON(articles []models.Article) (string, error) {
	if articles == nil {
		articles = []models.Article{}
	}

	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return string(data) + "\n", nil
}

// StatusMessage returns the user-facing message for a failure classification.
func StatusMessage(failure news.Failure) string {
	switch failure {
	case news.FailureNone:
		return ""
	case news.FailureNoConnection:
		return "No internet connection."
	case news.FailureHTTPError:
		return "The news service returned an error. Please try again later."
	case news.FailureParseError:
		return "The news service sent a response that could not be read."
	case news.FailureEmpty:
		return "No news articles found."
	default:
		return "Unknown error."
	}
}

// RenderResult renders a pipeline result: the table on success, otherwise the status message.
func RenderResult(result news.Result, opts Options) string {
	if !result.OK() {
		return StatusMessage(result.Failure) + "\n"
	}

	summary := fmt.Sprintf("Showing %d articles", len(result.Articles))
	if result.Page.Total > 0 {
		summary += fmt.Sprintf(" of %d", result.Page.Total)
	}

	return RenderArticles(result.Articles, opts) + "\n" + summary + "\n"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// formatTable lays out rows as a markdown table. The first row is the header;
// a separator row is generated after it.
func formatTable(table [][]string) []string {
	if len(table) == 0 {
		return nil
	}

	colCount := 0
	for _, row := range table {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	// Calculate max widths (using display width)
	colWidths := make([]int, colCount)

	for _, row := range table {
		for i := 0; i < len(row) && i < colCount; i++ {
			width := runewidth.StringWidth(row[i])
			if width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	// Ensure min width for separator (usually 3 dashes "---")
	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	separator := make([]string, colCount)
	for i, width := range colWidths {
		separator[i] = strings.Repeat("-", width)
	}

	result := []string{formatRow(table[0], colWidths), formatRow(separator, colWidths)}

	for _, row := range table[1:] {
		result = append(result, formatRow(row, colWidths))
	}

	return result
}

func formatRow(row []string, colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, width := range colWidths {
		sb.WriteString(" ")

		content := ""
		if j < len(row) {
			content = row[j]
		}

		sb.WriteString(content)

		// Pad with spaces based on display width
		if padding := width - runewidth.StringWidth(content); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}
