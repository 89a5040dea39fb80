package zenith

type WatchlistState struct {
	ID          string `json:"ID"`
	Name        string `json:"Name"`
	Description string `json:"Description,omitempty"`
	Category    string `json:"Category,omitempty"`
	IsWritable  bool   `json:"IsWritable"`
}

type WatchlistDetails struct {
	Name        Field[string] `json:"Name,omitzero"`
	Description Field[string] `json:"Description,omitzero"`
	Category    Field[string] `json:"Category,omitzero"`
}

type WatchlistMemberChange struct {
	O       string   `json:"O"`
	Symbols []string `json:"Symbols,omitempty"`
	// Index is the insert position on Add. Absent appends.
	Index *int `json:"Index,omitempty"`
}

type WatchlistUpdate struct {
	Details *WatchlistDetails       `json:"Details,omitempty"`
	Members []WatchlistMemberChange `json:"Members,omitempty"`
}

type AddToWatchlistRequest struct {
	WatchlistID string   `json:"WatchlistID"`
	Members     []string `json:"Members"`
}

type NotificationChannel struct {
	ID           string `json:"ID"`
	Name         string `json:"Name"`
	Description  string `json:"Description,omitempty"`
	Enabled      bool   `json:"Enabled"`
	Distribution string `json:"Distribution"`
}

// ErrorData is the payload of an Error action.
type ErrorData struct {
	Code    string `json:"Code,omitempty"`
	Message string `json:"Message"`
}
