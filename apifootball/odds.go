package apifootball

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// GetPreMatchOdds retrieves the bookmaker-level pre-match odds for a fixture
func (c *Client) GetPreMatchOdds(fixtureID int) (*OddsPayload, error) {
	params := url.Values{}
	params.Set("fixture", strconv.Itoa(fixtureID))

	env, err := c.get("/odds", params)
	if err != nil {
		return nil, err
	}

	var entries []PreMatchOdds
	if err := json.Unmarshal(env.Response, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pre-match odds: %w", err)
	}

	if len(entries) == 0 {
		return &OddsPayload{}, nil
	}
	return &OddsPayload{PreMatch: &entries[0]}, nil
}

// GetLiveOdds retrieves the flat in-play market list for a fixture
func (c *Client) GetLiveOdds(fixtureID int) (*OddsPayload, error) {
	params := url.Values{}
	params.Set("fixture", strconv.Itoa(fixtureID))

	env, err := c.get("/odds/live", params)
	if err != nil {
		return nil, err
	}

	var entries []LiveOdds
	if err := json.Unmarshal(env.Response, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal live odds: %w", err)
	}

	if len(entries) == 0 {
		return &OddsPayload{}, nil
	}
	return &OddsPayload{Live: &entries[0]}, nil
}
