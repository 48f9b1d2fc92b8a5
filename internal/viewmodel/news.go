package viewmodel

import (
	"github.com/smartb3/smartb3/pkg/models"
	"github.com/smartb3/smartb3/pkg/utils"
)

// NewsItem is one headline.
type NewsItem struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Source    string `json:"source"`
	Summary   string `json:"summary,omitempty"`
	Published string `json:"published,omitempty"`
}

// News is the headlines card.
type News struct {
	Panel
	Items []NewsItem `json:"items"`
}

// BuildNews renders headlines with their publication time in BRT.
func BuildNews(articles []models.NewsArticle, p Panel) News {
	out := News{Panel: p}
	for _, a := range articles {
		item := NewsItem{Title: a.Title, URL: a.URL, Source: a.Source, Summary: a.Summary}
		if !a.PublishedAt.IsZero() {
			item.Published = utils.FormatDateTimeBRT(a.PublishedAt)
		}
		out.Items = append(out.Items, item)
	}
	return out
}
