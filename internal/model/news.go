package model

import "time"

// Sentiment labels a simulated headline.
type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
	SentimentNeutral Sentiment = "Neutral"
)

// Headline is a simulated news item.
type Headline struct {
	Headline  string    `json:"headline"`
	Sentiment Sentiment `json:"sentiment"`
}

// CalendarEvent is an upcoming macro release.
type CalendarEvent struct {
	Date       time.Time `json:"date"`
	Time       string    `json:"time"`
	Event      string    `json:"event"`
	Importance string    `json:"importance"`
}
