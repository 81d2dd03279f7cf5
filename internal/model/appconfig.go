package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default cutting settings applied to new projects and CLI runs
	DefaultKerf        int  `json:"default_kerf"`
	DefaultMargin      int  `json:"default_margin"`
	DefaultAllowRotate bool `json:"default_allow_rotate"`

	// Application preferences
	ListenAddr     string   `json:"listen_addr"` // HTTP API address for "serve"
	RecentProjects []string `json:"recent_projects"`
}

// DefaultAppConfig returns an AppConfig populated with the values from
// DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultKerf:        defaults.Kerf,
		DefaultMargin:      defaults.Margin,
		DefaultAllowRotate: defaults.AllowRotate,
		ListenAddr:         ":8080",
		RecentProjects:     []string{},
	}
}

// ApplyToSettings copies the default values from AppConfig into a Settings struct.
func (c AppConfig) ApplyToSettings(s *Settings) {
	s.Kerf = c.DefaultKerf
	s.Margin = c.DefaultMargin
	s.AllowRotate = c.DefaultAllowRotate
}

// AddRecentProject moves path to the front of the recent list, keeping at most max entries.
func (c *AppConfig) AddRecentProject(path string, max int) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			recent = append(recent, p)
		}
	}
	if max > 0 && len(recent) > max {
		recent = recent[:max]
	}
	c.RecentProjects = recent
}
