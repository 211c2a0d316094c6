package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/MikeSquared-Agency/scribe/internal/index"
	"github.com/MikeSquared-Agency/scribe/internal/search"
)

// SearchRequest is the POST /api/v1/search body.
type SearchRequest struct {
	Query  string  `json:"query"`
	K      int     `json:"k"`
	Alpha  float64 `json:"alpha"`
	Beta   float64 `json:"beta"`
	Regex  bool    `json:"regex"`
	Filter string  `json:"filter"`
}

func (r SearchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Query, validation.Required, validation.Length(1, 1024)),
		validation.Field(&r.K, validation.Min(0), validation.Max(100)),
	)
}

type SearchResponse struct {
	Query   string          `json:"query"`
	Mode    string          `json:"mode"` // "hybrid" or "lexical"
	Results []search.Result `json:"results"`
}

type ConversationsResponse struct {
	Conversations []index.ConversationSummary `json:"conversations"`
}

type StatusResponse struct {
	Agent         string `json:"agent"`
	Documents     int    `json:"documents"`
	Vectors       int    `json:"vectors"`
	Conversations int    `json:"conversations"`
}

type errorResponse struct {
	Error string `json:"error"`
}
