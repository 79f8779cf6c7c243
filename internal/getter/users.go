package getter

import (
	"context"
	"fmt"

	"github.com/vmunix/sweepr/internal/plex"
)

// ReconciledUser is a server account with its authoritative display name.
type ReconciledUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// Reconcile merges the server's accounts with the plex.tv directory. Every
// local user yields exactly one entry, in local order; the plex.tv username
// wins when present and non-empty. Remote-only identities are ignored.
func Reconcile(local []plex.LocalUser, remote []plex.RemoteIdentity) []ReconciledUser {
	names := make(map[int]string, len(remote))
	for _, r := range remote {
		if _, seen := names[r.ID]; !seen {
			names[r.ID] = r.Username
		}
	}

	out := make([]ReconciledUser, 0, len(local))
	for _, u := range local {
		username := u.Name
		if remoteName := names[u.ID]; remoteName != "" {
			username = remoteName
		}
		out = append(out, ReconciledUser{ID: u.ID, Username: username})
	}
	return out
}

// Users fetches and reconciles both user directories. A plex.tv failure
// degrades to local names; a server failure is returned.
func (e *Evaluator) Users(ctx context.Context) ([]ReconciledUser, error) {
	local, err := e.provider.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	remote, err := e.provider.GetPlexTVUsers(ctx)
	if err != nil {
		e.log.Warn("plex.tv directory unavailable, using local names", "error", err)
		remote = nil
	}

	return Reconcile(local, remote), nil
}

// usernamesOf returns the usernames of users whose id is in ids, in user order.
func usernamesOf(users []ReconciledUser, ids map[int]struct{}) []string {
	out := make([]string, 0, len(ids))
	for _, u := range users {
		if _, ok := ids[u.ID]; ok {
			out = append(out, u.Username)
		}
	}
	return out
}
