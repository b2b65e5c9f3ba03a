package news

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"localnews/internal/dates"
	"localnews/internal/models"
	"localnews/pkg/utils"
)

// Page is one page of search results together with the API's paging envelope.
type Page struct {
	Status      string
	OrderBy     string
	Articles    []models.Article
	Total       int
	CurrentPage int
	Pages       int
	PageSize    int
	// Skipped counts result elements that were not JSON objects.
	Skipped int
}

// Parser converts content API search responses into articles.
type Parser struct {
	text *utils.StringHelper
}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{
		text: utils.NewStringHelper(),
	}
}

// Parse extracts the articles from a search response. The returned slice is
// never nil. A *ParseError is returned alongside an empty slice when the
// document is not valid JSON or has no response.results array; empty input is
// not an error.
func (p *Parser) Parse(raw string) ([]models.Article, error) {
	page, err := p.ParsePage(raw)

	return page.Articles, err
}

// ParsePage is Parse plus the paging envelope.
func (p *Parser) ParsePage(raw string) (Page, error) {
	page := Page{Articles: []models.Article{}}

	if strings.TrimSpace(raw) == "" {
		return page, nil
	}

	if !gjson.Valid(raw) {
		return page, &ParseError{Cause: ErrMalformedJSON}
	}

	response := gjson.Get(raw, "response")
	if !response.IsObject() {
		return page, &ParseError{Cause: ErrMissingResults}
	}

	page.Status = response.Get("status").String()
	if page.Status == "error" {
		return page, &ParseError{Cause: fmt.Errorf("%w: %s", ErrAPIStatus, response.Get("message").String())}
	}

	results := response.Get("results")
	if !results.IsArray() {
		return page, &ParseError{Cause: ErrMissingResults}
	}

	page.Total = int(response.Get("total").Int())
	page.CurrentPage = int(response.Get("currentPage").Int())
	page.Pages = int(response.Get("pages").Int())
	page.PageSize = int(response.Get("pageSize").Int())
	page.OrderBy = response.Get("orderBy").String()

	results.ForEach(func(_, element gjson.Result) bool {
		if !element.IsObject() {
			page.Skipped++

			return true
		}

		page.Articles = append(page.Articles, p.parseArticle(element))

		return true
	})

	return page, nil
}

// parseArticle reads one result object. Missing fields default to empty strings.
func (p *Parser) parseArticle(element gjson.Result) models.Article {
	return models.Article{
		Title:       p.text.NormalizeWhitespace(element.Get("webTitle").String()),
		Author:      parseAuthor(element.Get("tags")),
		Section:     p.text.NormalizeWhitespace(element.Get("sectionName").String()),
		URL:         p.text.TrimWhitespace(element.Get("webUrl").String()),
		PublishedAt: dates.Parse(element.Get("webPublicationDate").String()),
	}
}

// parseAuthor takes the first contributor tag's name.
func parseAuthor(tags gjson.Result) string {
	if !tags.IsArray() {
		return models.NoAuthorProvided
	}

	list := tags.Array()
	if len(list) == 0 {
		return models.NoAuthorProvided
	}

	author := strings.TrimSpace(list[0].Get("webTitle").String())
	if author == "" {
		return models.NoAuthorProvided
	}

	return author
}
