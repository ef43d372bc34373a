package models

// Category groups races, e.g. "Weekly" or "Tournament"
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Race represents a single async race. A race with no roster rows is a
// public race; a race with one or more roster rows is an assigned race.
type Race struct {
	ID                     int    `json:"id"`
	StartDate              string `json:"start_date"`
	Seed                   string `json:"seed"`
	Description            string `json:"description"`
	AdditionalInstructions string `json:"additional_instructions,omitempty"`
	CategoryID             int    `json:"category_id"`
	Active                 bool   `json:"active"`
}

// Racer is a community member known to the system, keyed by their
// external chat-platform user ID. WheelWeight is carried for the mode
// wheel feature and is not used by the core logic.
type Racer struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	WheelWeight int    `json:"wheel_weight"`
}

// Submission is a racer's result for one race. At most one submission
// exists per (race, user) pair; a re-submit overwrites in place.
type Submission struct {
	ID             int    `json:"id"`
	SubmitDate     string `json:"submit_date"`
	RaceID         int    `json:"race_id"`
	UserID         int64  `json:"user_id"`
	Username       string `json:"username"`
	FinishTimeRTA  string `json:"finish_time_rta"`
	FinishTimeIGT  string `json:"finish_time_igt"`
	CollectionRate int    `json:"collection_rate"`
	NextMode       string `json:"next_mode,omitempty"`
	Comment        string `json:"comment,omitempty"`
	VodLink        string `json:"vod_link,omitempty"`
}

// RosterEntry records that a racer is assigned to a race. RaceInfoTime
// is stamped the first time the racer views the race info and never
// overwritten, for verification purposes.
type RosterEntry struct {
	ID           int    `json:"id"`
	RaceID       int    `json:"race_id"`
	UserID       int64  `json:"user_id"`
	RaceInfoTime string `json:"race_info_time,omitempty"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
