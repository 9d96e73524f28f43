// internal/domain/hashtag/document.go

package hashtag

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrMalformedDocument is returned when a document has no usable countries section
var ErrMalformedDocument = errors.New("malformed hashtag document")

// CountryData is one country's section of a source document.
// Records that failed to decode are kept as nil so list positions survive.
type CountryData struct {
	Region   string
	Hashtags []*Record
}

// Document is one raw source: a mapping from country code to its hashtags.
// A nil section means the country was present but could not be decoded.
type Document struct {
	Source    string
	Countries map[string]*CountryData
}

// StoredDocument is a raw source document as persisted, before decoding
type StoredDocument struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Body      []byte    `json:"-"`
	FetchedAt time.Time `json:"fetchedAt"`
}

type rawDocument struct {
	Countries map[string]json.RawMessage `json:"countries"`
}

type rawCountry struct {
	Region   string            `json:"region"`
	Hashtags []json.RawMessage `json:"hashtags"`
}

// DecodeDocument parses a source document, skipping malformed parts.
// A missing countries key returns an empty document and ErrMalformedDocument.
// Country codes are upper-cased; "MY" wins over "my" when both are present.
func DecodeDocument(source string, data []byte) (Document, error) {
	doc := Document{Source: source}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return doc, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if raw.Countries == nil {
		return doc, fmt.Errorf("%w: missing countries", ErrMalformedDocument)
	}

	// Keys that normalize to the same code keep the first in sorted raw order
	keys := make([]string, 0, len(raw.Countries))
	for key := range raw.Countries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	doc.Countries = make(map[string]*CountryData, len(keys))
	for _, key := range keys {
		code := strings.ToUpper(strings.TrimSpace(key))
		if code == "" {
			continue
		}
		if _, dup := doc.Countries[code]; dup {
			continue
		}
		doc.Countries[code] = decodeCountry(raw.Countries[key])
	}

	return doc, nil
}

func decodeCountry(section json.RawMessage) *CountryData {
	var rc rawCountry
	if err := json.Unmarshal(section, &rc); err != nil || rc.Hashtags == nil {
		return nil
	}

	country := &CountryData{
		Region:   rc.Region,
		Hashtags: make([]*Record, len(rc.Hashtags)),
	}
	for i, item := range rc.Hashtags {
		var rec Record
		if err := json.Unmarshal(item, &rec); err != nil {
			continue
		}
		country.Hashtags[i] = &rec
	}
	return country
}
