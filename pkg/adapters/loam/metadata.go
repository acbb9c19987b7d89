package loam

// TaskMetadata is the frontmatter of a task document.
// It uses "mapstructure" tags to match the YAML keys written by hand.
type TaskMetadata struct {
	ID     string `json:"id" mapstructure:"id"`
	Parent string `json:"parent" mapstructure:"parent"`
	Title  string `json:"title" mapstructure:"title"`
	Status string `json:"status" mapstructure:"status"`

	// Created accepts RFC 3339 timestamps or plain dates (2006-01-02).
	Created string `json:"created,omitempty" mapstructure:"created"`
}
