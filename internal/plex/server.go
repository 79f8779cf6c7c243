package plex

import (
	"context"
	"fmt"
)

// Identity holds Plex server identity information.
type Identity struct {
	Name              string `json:"friendlyName"`
	Version           string `json:"version"`
	MachineIdentifier string `json:"machineIdentifier"`
}

// Section is a library section of the server.
type Section struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

type identityResponse struct {
	MediaContainer Identity `json:"MediaContainer"`
}

type sectionsResponse struct {
	MediaContainer struct {
		Size      int       `json:"size"`
		Directory []Section `json:"Directory"`
	} `json:"MediaContainer"`
}

// GetIdentity returns the Plex server name and version.
func (c *Client) GetIdentity(ctx context.Context) (*Identity, error) {
	var result identityResponse
	if err := c.getJSON(ctx, "/", nil, &result); err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}
	return &result.MediaContainer, nil
}

// GetSections returns the library sections of the server.
func (c *Client) GetSections(ctx context.Context) ([]Section, error) {
	var result sectionsResponse
	if err := c.getJSON(ctx, "/library/sections", nil, &result); err != nil {
		return nil, fmt.Errorf("get sections: %w", err)
	}
	return result.MediaContainer.Directory, nil
}
