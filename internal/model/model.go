package model

import "time"

// RawDocument is the HTML body of one upstream fetch.
type RawDocument struct {
	URL       string
	Body      []byte
	FetchedAt time.Time
}

// GlobalSnapshot holds the headline counters. A nil field has not been
// extracted yet and is omitted from JSON.
type GlobalSnapshot struct {
	Cases     *int64 `json:"cases,omitempty"`
	Deaths    *int64 `json:"deaths,omitempty"`
	Recovered *int64 `json:"recovered,omitempty"`
}

// Empty reports whether no counter is set.
func (g GlobalSnapshot) Empty() bool {
	return g.Cases == nil && g.Deaths == nil && g.Recovered == nil
}

// CountryRecord is one row of the per-country table.
type CountryRecord struct {
	Country     string `json:"country"`
	Cases       int64  `json:"cases"`
	TodayCases  int64  `json:"todayCases"`
	Deaths      int64  `json:"deaths"`
	TodayDeaths int64  `json:"todayDeaths"`
	Recovered   int64  `json:"recovered"`
	Critical    int64  `json:"critical"`
}

// Snapshot is the full cached view served by the API.
type Snapshot struct {
	GlobalSnapshot
	Countries          []CountryRecord `json:"countries"`
	GlobalUpdatedAt    time.Time       `json:"globalUpdatedAt"`
	CountriesUpdatedAt time.Time       `json:"countriesUpdatedAt"`
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}
