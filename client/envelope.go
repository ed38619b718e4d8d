package client

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/vaintrub/docebo-go/models"
)

// envelope is the outer shape of every platform response: {"data": ...}.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// pageData is the data object of a collection response.
type pageData struct {
	Items       []models.Record `json:"items"`
	HasMoreData flexBool        `json:"has_more_data"`
	TotalCount  flexInt         `json:"total_count"`
	CurrentPage flexInt         `json:"current_page"`
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// flexBool accepts a JSON bool, 0/1, or "true"/"false".
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "true", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}
