// Package news simulates headline sentiment and an economic calendar.
package news

import (
	"time"

	"pricepeak/internal/model"
	"pricepeak/internal/random"
)

const generalKey = "General"

var headlines = map[string][]string{
	"Crude Oil": {"OPEC+ maintains production quotas.", "Geopolitical tensions cause price spike."},
	"Gold":      {"Fed interest rate decision looms.", "Central bank purchases hit record highs."},
	"Copper":    {"China's manufacturing data shows weakness.", "Green energy projects bolster copper outlook."},
	generalKey:  {"Global inflation data hotter than expected.", "Strong US dollar pressures commodities."},
}

// Headlines returns the stock headlines for each instrument that has any,
// followed by the general ones, each tagged with a random sentiment.
func Headlines(ids []string, src random.Source) []model.Headline {
	var texts []string
	for _, id := range ids {
		texts = append(texts, headlines[id]...)
	}
	texts = append(texts, headlines[generalKey]...)

	out := make([]model.Headline, len(texts))
	for i, h := range texts {
		out[i] = model.Headline{Headline: h, Sentiment: sentiment(src.Uniform())}
	}
	return out
}

func sentiment(u float64) model.Sentiment {
	switch {
	case u < 0.3:
		return model.SentimentBearish
	case u > 0.7:
		return model.SentimentBullish
	default:
		return model.SentimentNeutral
	}
}

type scheduled struct {
	daysFromNow int
	time        string
	event       string
	importance  string
}

var calendar = []scheduled{
	{2, "8:30 AM", "US CPI Data Release (MoM)", "High"},
	{8, "2:00 PM", "FOMC Meeting Statement", "High"},
	{15, "10:00 AM", "Crude Oil Inventories", "Medium"},
	{22, "4:00 AM", "China Manufacturing PMI", "Medium"},
}

// Calendar returns the upcoming releases relative to now.
func Calendar(now time.Time) []model.CalendarEvent {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	out := make([]model.CalendarEvent, len(calendar))
	for i, e := range calendar {
		out[i] = model.CalendarEvent{
			Date:       day.AddDate(0, 0, e.daysFromNow),
			Time:       e.time,
			Event:      e.event,
			Importance: e.importance,
		}
	}
	return out
}
