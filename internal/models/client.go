package models

// ClientStatusActive marks a client whose campaigns are being managed.
const ClientStatusActive = "active"

// Client is one agency account. Credentials are resolved at config load from
// environment variables and never serialized back out.
type Client struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Slug           string   `json:"slug" yaml:"slug"`
	Status         string   `json:"status" yaml:"status"` // active, paused, churned
	MetaAccountID  string   `json:"meta_account_id" yaml:"meta_account_id"`
	MetaToken      string   `json:"-" yaml:"-"`
	CommissionRate float64  `json:"commission_rate" yaml:"commission_rate"`
	Funnels        []string `json:"funnels" yaml:"funnels"`
}

// IsActive reports whether the client is under active management.
func (c Client) IsActive() bool {
	return c.Status == ClientStatusActive
}
