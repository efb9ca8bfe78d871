package apifootball

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// GetLiveFixtures retrieves all fixtures currently in play
func (c *Client) GetLiveFixtures() ([]FixtureRecord, error) {
	params := url.Values{}
	params.Set("live", "all")

	env, err := c.get("/fixtures", params)
	if err != nil {
		return nil, err
	}

	var fixtures []FixtureRecord
	if err := json.Unmarshal(env.Response, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fixtures: %w", err)
	}

	return fixtures, nil
}

// GetFixture retrieves a single fixture by id
func (c *Client) GetFixture(fixtureID int) (*FixtureRecord, error) {
	params := url.Values{}
	params.Set("id", strconv.Itoa(fixtureID))

	env, err := c.get("/fixtures", params)
	if err != nil {
		return nil, err
	}

	var fixtures []FixtureRecord
	if err := json.Unmarshal(env.Response, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fixture: %w", err)
	}

	if len(fixtures) == 0 {
		return nil, nil
	}
	return &fixtures[0], nil
}

// GetFixtureStatistics retrieves per-team statistics for a fixture
func (c *Client) GetFixtureStatistics(fixtureID int) ([]TeamStatistics, error) {
	params := url.Values{}
	params.Set("fixture", strconv.Itoa(fixtureID))

	env, err := c.get("/fixtures/statistics", params)
	if err != nil {
		return nil, err
	}

	var stats []TeamStatistics
	if err := json.Unmarshal(env.Response, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statistics: %w", err)
	}

	return stats, nil
}

// GetFixtureEvents retrieves the timestamped event list for a fixture
func (c *Client) GetFixtureEvents(fixtureID int) ([]MatchEvent, error) {
	params := url.Values{}
	params.Set("fixture", strconv.Itoa(fixtureID))

	env, err := c.get("/fixtures/events", params)
	if err != nil {
		return nil, err
	}

	var events []MatchEvent
	if err := json.Unmarshal(env.Response, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal events: %w", err)
	}

	return events, nil
}

// GetHeadToHead retrieves the most recent head-to-head fixtures of two teams
func (c *Client) GetHeadToHead(homeTeamID, awayTeamID, last int) ([]FixtureRecord, error) {
	params := url.Values{}
	params.Set("h2h", fmt.Sprintf("%d-%d", homeTeamID, awayTeamID))
	if last > 0 {
		params.Set("last", strconv.Itoa(last))
	}

	env, err := c.get("/fixtures/headtohead", params)
	if err != nil {
		return nil, err
	}

	var fixtures []FixtureRecord
	if err := json.Unmarshal(env.Response, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to unmarshal head-to-head fixtures: %w", err)
	}

	return fixtures, nil
}

// GetTeamSeasonStatistics retrieves season statistics for a team in a league
func (c *Client) GetTeamSeasonStatistics(teamID, leagueID, season int) (*TeamSeasonStatistics, error) {
	params := url.Values{}
	params.Set("team", strconv.Itoa(teamID))
	params.Set("league", strconv.Itoa(leagueID))
	params.Set("season", strconv.Itoa(season))

	env, err := c.get("/teams/statistics", params)
	if err != nil {
		return nil, err
	}

	var stats TeamSeasonStatistics
	if err := json.Unmarshal(env.Response, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team statistics: %w", err)
	}

	return &stats, nil
}
