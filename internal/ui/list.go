package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/vtx/internal/formatter"
	"github.com/desertthunder/vtx/internal/models"
)

var _ list.Item = historyItem{}

// historyItem wraps [models.HistoryItem] to implement [list.Item].
type historyItem struct {
	item models.HistoryItem
}

func (i historyItem) FilterValue() string { return i.item.Filename }
func (i historyItem) Title() string       { return i.item.Filename }
func (i historyItem) Description() string {
	desc := i.item.CreatedAt.DateString()
	if lang := i.item.LanguageLabel(); lang != "" {
		desc = fmt.Sprintf("%s • %s", desc, lang)
	}
	return fmt.Sprintf("%s • %s", desc, formatter.Excerpt(i.item.Transcript))
}

func historyItems(items []models.HistoryItem) []list.Item {
	out := make([]list.Item, len(items))
	for i, item := range items {
		out[i] = historyItem{item: item}
	}
	return out
}
