package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Media types accepted by the service
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// TimestampNew is the display sentinel for a comment that has not been
// confirmed by the server yet. It is never a real value from the server.
const TimestampNew = "new"

var validate = validator.New()

// NotificationPreference controls how a user is notified about group activity
type NotificationPreference string

const (
	NotifyOff  NotificationPreference = "OFF"
	NotifyPush NotificationPreference = "PUSH"
	NotifySMS  NotificationPreference = "SMS"
)

// PhoneNumber holds a display form and the normalized E.164 form
type PhoneNumber struct {
	Display string `json:"display"`
	E164    string `json:"e164"`
}

// User represents a member of a group. Equality is by ID.
type User struct {
	ID                     string                 `json:"id"`
	Name                   string                 `json:"name"`
	PhoneNumber            *PhoneNumber           `json:"phoneNumber,omitempty"`
	NotificationPreference NotificationPreference `json:"notificationPreference,omitempty"`
}

// Dimensions holds pixel dimensions of a media file
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MediaMetadata holds server-assigned metadata for an uploaded media file
type MediaMetadata struct {
	ItemID     string     `json:"itemId"`
	UploadDate time.Time  `json:"uploadDate"`
	Dimensions Dimensions `json:"dimensions"`
	MediaType  string     `json:"mediaType" validate:"oneof=image video"`
}

// MediaItem represents a single uploaded photo or video.
// Filename is the legacy unique key; Metadata.ItemID is the current one.
type MediaItem struct {
	Filename string        `json:"filename"`
	Uploader User          `json:"uploader"`
	Metadata MediaMetadata `json:"metadata"`

	Reactions []Reaction `json:"reactions"`
	Comments  []Comment  `json:"comments"`

	// Transient client-side fields for an item still being uploaded.
	// The server-confirmed representation replaces them after a refresh.
	IsUploadedThisPageLoad bool   `json:"-"`
	LocalURL               string `json:"-"`
	IsDoneUploading        bool   `json:"-"`
}

// Validate checks the item against the service contract. Unknown media
// types are rejected rather than silently defaulted.
func (m *MediaItem) Validate() error {
	return validate.Struct(m)
}

// Post groups one or more media items uploaded together
type Post struct {
	PostID     string      `json:"postId"`
	Uploader   User        `json:"uploader"`
	UploadDate time.Time   `json:"uploadDate"`
	Items      []MediaItem `json:"items"`
	Reactions  []Reaction  `json:"reactions"`
	Comments   []Comment   `json:"comments"`
}

// Reaction is a committed (server-confirmed) emoji reaction by a user.
// In-flight reaction state is tracked separately by the synchronizer and
// joined into ReactionView for rendering.
type Reaction struct {
	User  User   `json:"user"`
	Emoji string `json:"reaction"`
}

// ReactionView is a reaction as presented to the UI, with the pending flag
// derived from the in-flight operation set rather than stored on the domain
// object.
type ReactionView struct {
	User      User   `json:"user"`
	Emoji     string `json:"reaction"`
	IsPending bool   `json:"isPending"`
}

// CommentMedia describes a photo or video attached to a comment
type CommentMedia struct {
	MediaID    string     `json:"mediaId"`
	MediaType  string     `json:"mediaType" validate:"oneof=image video"`
	Dimensions Dimensions `json:"dimensions"`

	// Client-side only: the local file preview, kept after confirmation so
	// rendering does not flicker while the server copy loads.
	LocalURL        string `json:"-"`
	IsDoneUploading bool   `json:"-"`
}

// Validate checks attached media against the service contract
func (m *CommentMedia) Validate() error {
	return validate.Struct(m)
}

// Comment is a text comment with an optional attached media file.
// ID is a client-generated stable identifier: comments from the server get
// one assigned at ingestion, optimistic comments at creation. All reaction
// and lookup operations key by it, never by position.
type Comment struct {
	ID        string        `json:"-"`
	Comment   string        `json:"comment"`
	Timestamp time.Time     `json:"timestamp"`
	User      User          `json:"user"`
	Reactions []Reaction    `json:"reactions"`
	Media     *CommentMedia `json:"media,omitempty"`
}

// PageResult is one page of the media feed
type PageResult struct {
	Media   []MediaItem `json:"media"`
	HasMore bool        `json:"hasMore"`
}
