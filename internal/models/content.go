// internal/models/content.go
package models

import "time"

type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusScheduled ContentStatus = "scheduled"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusFailed    ContentStatus = "failed"
)

type Platform string

const (
	PlatformLinkedIn   Platform = "LinkedIn"
	PlatformTwitter    Platform = "Twitter"
	PlatformFacebook   Platform = "Facebook"
	PlatformInstagram  Platform = "Instagram"
	PlatformBlog       Platform = "Blog"
	PlatformNewsletter Platform = "Newsletter"
)

// ContentPost is one entry on the content calendar.
type ContentPost struct {
	ID         string        `json:"id"`
	PersonName string        `json:"person_name"`
	Platform   Platform      `json:"platform"`
	Content    string        `json:"content"`
	Tags       []string      `json:"tags,omitempty"`
	Status     ContentStatus `json:"status"`

	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	PublishError *string    `json:"publish_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
