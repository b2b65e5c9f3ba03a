// Package models defines the article records produced by the news pipeline.
package models

import "localnews/internal/dates"

// NoAuthorProvided is used when the API returns no contributor tag.
const NoAuthorProvided = "No Author Provided"

// UnknownDate is shown in place of an absent publication date.
const UnknownDate = "Unknown date"

// Article represents a single news article returned by the content API.
type Article struct {
	PublishedAt dates.Date `json:"publishedAt"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Section     string     `json:"section"`
	URL         string     `json:"url"`
}

// DisplayDate returns the publication date as "Jan 02, 2006", or UnknownDate.
func (a Article) DisplayDate() string {
	return a.PublishedAt.Display(UnknownDate)
}
