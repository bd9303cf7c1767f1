package domain

import "time"

// Client is a billable customer organisation. Projects belong to a client.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
