package plex

import (
	"context"
	"encoding/xml"
	"fmt"
)

type accountsResponse struct {
	MediaContainer struct {
		Size    int         `json:"size"`
		Account []LocalUser `json:"Account"`
	} `json:"MediaContainer"`
}

// plexTVUsersResponse is the XML response from plex.tv /api/users.
type plexTVUsersResponse struct {
	XMLName xml.Name         `xml:"MediaContainer"`
	Users   []RemoteIdentity `xml:"User"`
}

// GetUsers returns the accounts known to the media server.
func (c *Client) GetUsers(ctx context.Context) ([]LocalUser, error) {
	var result accountsResponse
	if err := c.getJSON(ctx, "/accounts", nil, &result); err != nil {
		return nil, fmt.Errorf("get accounts: %w", err)
	}
	return result.MediaContainer.Account, nil
}

// GetPlexTVUsers returns the shared users and home members registered with
// the server owner's plex.tv account.
func (c *Client) GetPlexTVUsers(ctx context.Context) ([]RemoteIdentity, error) {
	body, err := c.getPlexTV(ctx, "/api/users")
	if err != nil {
		return nil, fmt.Errorf("get plex.tv users: %w", err)
	}

	var result plexTVUsersResponse
	if err := xml.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode plex.tv users: %w", err)
	}
	return result.Users, nil
}
