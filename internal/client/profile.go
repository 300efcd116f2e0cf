package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ziadkadry99/docchat/internal/profile"
)

// profileResponse is the backend's answer to POST /profile.
type profileResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Profile profile.Profile `json:"profile"`
	Error   string          `json:"error"`
}

// SyncProfile posts p to the backend and returns the profile as the
// backend normalized it.
func (c *Client) SyncProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("encoding profile: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/profile", bytes.NewReader(payload))
	if err != nil {
		return profile.Profile{}, fmt.Errorf("creating profile request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return profile.Profile{}, err
	}
	defer resp.Body.Close()

	var body profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return profile.Profile{}, fmt.Errorf("decoding profile response: %w", err)
	}
	if !isOK(resp.StatusCode) {
		if body.Error != "" {
			return profile.Profile{}, fmt.Errorf("%s", body.Error)
		}
		return profile.Profile{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return body.Profile, nil
}
