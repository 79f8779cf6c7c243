// Package plex provides the Plex Media Server data model and a client that
// serves metadata, watch history, playlists and user directories.
package plex

import "time"

// Item types as reported in the "type" attribute of library metadata.
const (
	TypeMovie   = "movie"
	TypeShow    = "show"
	TypeSeason  = "season"
	TypeEpisode = "episode"
)

// DataType is the numeric Plex library type used by section listings.
type DataType int

const (
	DataTypeUnspecified DataType = 0
	DataTypeMovie       DataType = 1
	DataTypeShow        DataType = 2
	DataTypeSeason      DataType = 3
	DataTypeEpisode     DataType = 4
)

// DataTypeFor maps an item type string to its numeric data type.
func DataTypeFor(itemType string) DataType {
	switch itemType {
	case TypeMovie:
		return DataTypeMovie
	case TypeShow:
		return DataTypeShow
	case TypeSeason:
		return DataTypeSeason
	case TypeEpisode:
		return DataTypeEpisode
	default:
		return DataTypeUnspecified
	}
}

// Tag is a single tag entry (collection, label, genre, cast role).
type Tag struct {
	Tag string `json:"tag"`
}

// MediaFacet holds the technical details of one media version.
type MediaFacet struct {
	VideoResolution string `json:"videoResolution,omitempty"`
	Bitrate         *int   `json:"bitrate,omitempty"`
	VideoCodec      string `json:"videoCodec,omitempty"`
}

// MediaItem is a movie, show, season or episode as returned by
// /library/metadata/{ratingKey}. Optional numeric fields are pointers so a
// legitimate zero can be told apart from an absent attribute.
type MediaItem struct {
	RatingKey             string       `json:"ratingKey"`
	Key                   string       `json:"key,omitempty"`
	Type                  string       `json:"type"`
	Title                 string       `json:"title,omitempty"`
	Index                 int          `json:"index,omitempty"`
	ParentIndex           int          `json:"parentIndex,omitempty"`
	ParentRatingKey       string       `json:"parentRatingKey,omitempty"`
	GrandparentRatingKey  string       `json:"grandparentRatingKey,omitempty"`
	LibrarySectionID      int          `json:"librarySectionID,omitempty"`
	LeafCount             *int         `json:"leafCount,omitempty"`
	AddedAt               *int64       `json:"addedAt,omitempty"`
	OriginallyAvailableAt string       `json:"originallyAvailableAt,omitempty"`
	Rating                *float64     `json:"rating,omitempty"`
	AudienceRating        *float64     `json:"audienceRating,omitempty"`
	UserRating            *float64     `json:"userRating,omitempty"`
	Role                  []Tag        `json:"Role,omitempty"`
	Collection            []Tag        `json:"Collection,omitempty"`
	Label                 []Tag        `json:"Label,omitempty"`
	Genre                 []Tag        `json:"Genre,omitempty"`
	Media                 []MediaFacet `json:"Media,omitempty"`
}

// WatchEvent is one entry of /status/sessions/history/all.
type WatchEvent struct {
	RatingKey    string `json:"ratingKey,omitempty"`
	AccountID    int    `json:"accountID"`
	ViewedAt     int64  `json:"viewedAt"`
	SeasonIndex  int    `json:"parentIndex,omitempty"`
	EpisodeIndex int    `json:"index,omitempty"`
}

// ViewedTime converts ViewedAt (unix seconds) to a time.
func (e WatchEvent) ViewedTime() time.Time {
	return time.Unix(e.ViewedAt, 0).UTC()
}

// Playlist is a video playlist. RatingKey uniquely identifies it.
type Playlist struct {
	RatingKey    string `json:"ratingKey"`
	Title        string `json:"title"`
	PlaylistType string `json:"playlistType,omitempty"`
	LeafCount    int    `json:"leafCount,omitempty"`
}

// LocalUser is an account known to the media server (/accounts).
type LocalUser struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RemoteIdentity is a user entry from the plex.tv directory.
type RemoteIdentity struct {
	ID       int    `xml:"id,attr"`
	Username string `xml:"username,attr"`
	Title    string `xml:"title,attr"`
	Email    string `xml:"email,attr"`
}
