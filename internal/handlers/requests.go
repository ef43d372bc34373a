package handlers

// RaceCreateRequest represents a request to create a race
type RaceCreateRequest struct {
	Seed                   string `json:"seed"`
	Description            string `json:"description"`
	AdditionalInstructions string `json:"additional_instructions"`
	CategoryID             int    `json:"category_id"`
}

// RaceUpdateRequest represents a request to edit a race
type RaceUpdateRequest struct {
	Seed                   string `json:"seed"`
	Description            string `json:"description"`
	AdditionalInstructions string `json:"additional_instructions"`
	CategoryID             int    `json:"category_id"`
}

// RaceEndRequest represents a request to end a race
type RaceEndRequest struct {
	PostResults bool `json:"post_results"`
}

// RosterAssignRequest represents a request to assign a racer to a race
type RosterAssignRequest struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// SubmissionCreateRequest represents a racer submitting a result. The
// racer's identity comes from the request headers, not the body.
type SubmissionCreateRequest struct {
	FinishTimeIGT  string `json:"finish_time_igt"`
	FinishTimeRTA  string `json:"finish_time_rta"`
	CollectionRate int    `json:"collection_rate"`
	NextMode       string `json:"next_mode"`
	Comment        string `json:"comment"`
	VodLink        string `json:"vod_link"`
}

// ForfeitRequest represents a racer forfeiting a race
type ForfeitRequest struct {
	Comment string `json:"comment"`
}

// CategoryCreateRequest represents a request to create a category
type CategoryCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
