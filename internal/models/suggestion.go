package models

// SuggestedUser pairs a candidate profile with its computed affinity score.
// The score is a ranking detail and stays internal.
type SuggestedUser struct {
	User  *UserBasicInfo `json:"user"`
	Score int            `json:"-"`
}

// SuggestionListView is the read model returned to the suggestions panel.
type SuggestionListView struct {
	Candidates []SuggestedUser `json:"candidates"`
}
