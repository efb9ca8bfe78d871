package apifootball

import "encoding/json"

// FixtureStatus holds the fixture clock and phase
type FixtureStatus struct {
	Long    string `json:"long"`
	Short   string `json:"short"` // NS, 1H, HT, 2H, ET, P, FT, AET, PEN, SUSP, ABD, ...
	Elapsed *int   `json:"elapsed"`
}

// FixtureInfo identifies a single fixture
type FixtureInfo struct {
	ID        int           `json:"id"`
	Timezone  string        `json:"timezone"`
	Date      string        `json:"date"`
	Timestamp int64         `json:"timestamp"`
	Status    FixtureStatus `json:"status"`
}

// League identifies the competition a fixture belongs to
type League struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Season  int    `json:"season"`
	Round   string `json:"round"`
}

// TeamRef is the team identity embedded in fixture payloads
type TeamRef struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Winner *bool  `json:"winner"`
}

// FixtureTeams holds both sides of a fixture
type FixtureTeams struct {
	Home TeamRef `json:"home"`
	Away TeamRef `json:"away"`
}

// Goals holds the current score. Nullable before kickoff.
type Goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// FixtureRecord is one entry of the /fixtures response
type FixtureRecord struct {
	Fixture FixtureInfo  `json:"fixture"`
	League  League       `json:"league"`
	Teams   FixtureTeams `json:"teams"`
	Goals   Goals        `json:"goals"`
}

// StatEntry is one (type, value) statistic pair. The type is free text
// ("Total Shots", "Ball Possession", "expected_goals", ...) and the value
// is polymorphic: number, percent string, or null.
type StatEntry struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// TeamStatistics is one team's statistics list from /fixtures/statistics
type TeamStatistics struct {
	Team       TeamRef     `json:"team"`
	Statistics []StatEntry `json:"statistics"`
}

// EventTime is the moment an event occurred
type EventTime struct {
	Elapsed int  `json:"elapsed"`
	Extra   *int `json:"extra"`
}

// EventActor is the player (or substitute/assist) tied to an event
type EventActor struct {
	ID   *int   `json:"id"`
	Name string `json:"name"`
}

// MatchEvent is one entry of the /fixtures/events response
type MatchEvent struct {
	Time   EventTime  `json:"time"`
	Team   TeamRef    `json:"team"`
	Player EventActor `json:"player"`
	Assist EventActor `json:"assist"`
	Type   string     `json:"type"` // Goal, Card, subst, Var
	Detail string     `json:"detail"`
}

// BetValue is one priced outcome of a pre-match bet market
type BetValue struct {
	Value string `json:"value"` // "Home", "Over 2.5", "Home -1.5", ...
	Odd   string `json:"odd"`
}

// Bet is one named pre-match bet market
type Bet struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Values []BetValue `json:"values"`
}

// BookmakerOdds is one bookmaker's pre-match market list
type BookmakerOdds struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Bets []Bet  `json:"bets"`
}

// PreMatchOdds is one entry of the /odds response
type PreMatchOdds struct {
	Fixture    FixtureInfo     `json:"fixture"`
	League     League          `json:"league"`
	Update     string          `json:"update"`
	Bookmakers []BookmakerOdds `json:"bookmakers"`
}

// LiveBetValue is one outcome of a live market. Unlike pre-match values it
// carries a structured line and main/suspended flags.
type LiveBetValue struct {
	Value     string  `json:"value"`
	Odd       string  `json:"odd"`
	Handicap  *string `json:"handicap"`
	Main      *bool   `json:"main"`
	Suspended bool    `json:"suspended"`
}

// LiveBet is one market of the live odds feed, identified by a fixed
// numeric id (33 Asian Handicap, 36 Over/Under, 59 Fulltime Result,
// 25 Total Goals fallback).
type LiveBet struct {
	ID     int            `json:"id"`
	Name   string         `json:"name"`
	Values []LiveBetValue `json:"values"`
}

// LiveOdds is one entry of the /odds/live response: a flat market list
// directly on the fixture, no bookmaker level.
type LiveOdds struct {
	Fixture FixtureInfo `json:"fixture"`
	League  League      `json:"league"`
	Update  string      `json:"update"`
	Odds    []LiveBet   `json:"odds"`
}

// OddsPayload is the tagged union over the two incompatible upstream odds
// shapes. The shape is resolved once where raw data enters the system;
// downstream code switches on the populated variant instead of re-probing.
type OddsPayload struct {
	Live     *LiveOdds
	PreMatch *PreMatchOdds
}

// IsLive reports whether the payload carries the live shape
func (p *OddsPayload) IsLive() bool {
	return p != nil && p.Live != nil
}

// Empty reports whether neither variant is populated
func (p *OddsPayload) Empty() bool {
	return p == nil || (p.Live == nil && p.PreMatch == nil)
}

// TeamSeasonStatistics is the subset of /teams/statistics used for
// late-game tendency lookups: goal share by minute bucket.
type TeamSeasonStatistics struct {
	Team  TeamRef `json:"team"`
	Goals struct {
		For struct {
			Minute map[string]MinuteShare `json:"minute"` // "76-90" -> share
		} `json:"for"`
	} `json:"goals"`
}

// MinuteShare is one minute-bucket entry of the goals distribution
type MinuteShare struct {
	Total      *int   `json:"total"`
	Percentage string `json:"percentage"` // "23%" or ""
}
