package api

// Config holds the HTTP server settings.
type Config struct {
	Enabled        bool    `json:"enabled"`
	Port           int     `json:"port"`
	RateLimitRPS   float64 `json:"rate_limit_rps"`
	RateLimitBurst int     `json:"rate_limit_burst"`

	// ConstraintTTLMinutes bounds how long a stored constraint set stays
	// valid.
	ConstraintTTLMinutes int `json:"constraint_ttl_minutes"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Port <= 0 {
		c.Port = 8080
	}
	if c.RateLimitRPS <= 0 {
		c.RateLimitRPS = 10
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = 5
	}
	if c.ConstraintTTLMinutes <= 0 {
		c.ConstraintTTLMinutes = 60
	}
}
