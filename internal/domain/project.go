package domain

import "time"

// Project groups tasks under a client.
type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ClientID  int64     `json:"clientId"`
	CreatedAt time.Time `json:"createdAt"`
}
