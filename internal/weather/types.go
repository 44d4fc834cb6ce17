package weather

// Alert is one normalized weather alert
type Alert struct {
	Event       string `json:"event"`
	Effective   string `json:"effective"`
	Expires     string `json:"expires"`
	Description string `json:"description"`
	Headline    string `json:"headline,omitempty"`
	Severity    string `json:"severity,omitempty"`
	Areas       string `json:"areas,omitempty"`
}
