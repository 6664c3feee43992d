package models

import "time"

type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ClubID    *string   `json:"clubId,omitempty"`
	Founded   int       `json:"founded,omitempty"`
	Stadium   string    `json:"stadium,omitempty"`
	LogoURL   string    `json:"logoUrl,omitempty"`
	LogoKey   string    `json:"logoKey,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t Team) EntityID() string { return t.ID }
