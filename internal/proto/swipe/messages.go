package swipe

// Ids travel as decimal strings.

type SuggestRequest struct {
	SeekerId string `json:"seeker_id"`
	Limit    int32  `json:"limit,omitempty"`
}

func (x *SuggestRequest) GetSeekerId() string {
	if x != nil {
		return x.SeekerId
	}
	return ""
}

func (x *SuggestRequest) GetLimit() int32 {
	if x != nil {
		return x.Limit
	}
	return 0
}

type Candidate struct {
	UserId      string            `json:"user_id"`
	DisplayName string            `json:"display_name"`
	City        string            `json:"city,omitempty"`
	Country     string            `json:"country,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Languages   []string          `json:"languages,omitempty"`
	Appearance  map[string]string `json:"appearance,omitempty"`
	DistanceKm  *float64          `json:"distance_km,omitempty"`
}

type SuggestResponse struct {
	Candidates []*Candidate `json:"candidates"`
}

func (x *SuggestResponse) GetCandidates() []*Candidate {
	if x != nil {
		return x.Candidates
	}
	return nil
}

type RecordDecisionRequest struct {
	ActorId  string `json:"actor_id"`
	TargetId string `json:"target_id"`
	// Action is LIKE or PASS, case-insensitive.
	Action string `json:"action"`
}

func (x *RecordDecisionRequest) GetActorId() string {
	if x != nil {
		return x.ActorId
	}
	return ""
}

func (x *RecordDecisionRequest) GetTargetId() string {
	if x != nil {
		return x.TargetId
	}
	return ""
}

func (x *RecordDecisionRequest) GetAction() string {
	if x != nil {
		return x.Action
	}
	return ""
}

type RecordDecisionResponse struct {
	Action  string `json:"action"`
	Matched bool   `json:"matched"`
	Mutual  bool   `json:"mutual"`
}

type ListMutualMatchesRequest struct {
	UserId          string  `json:"user_id"`
	Limit           int32   `json:"limit,omitempty"`
	PaginationToken *string `json:"pagination_token,omitempty"`
}

func (x *ListMutualMatchesRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

func (x *ListMutualMatchesRequest) GetLimit() int32 {
	if x != nil {
		return x.Limit
	}
	return 0
}

func (x *ListMutualMatchesRequest) GetPaginationToken() string {
	if x != nil && x.PaginationToken != nil {
		return *x.PaginationToken
	}
	return ""
}

type Match struct {
	UserId          string `json:"user_id"`
	DisplayName     string `json:"display_name"`
	City            string `json:"city,omitempty"`
	Country         string `json:"country,omitempty"`
	MatchedAtUnixMs uint64 `json:"matched_at_unix_ms"`
}

type ListMutualMatchesResponse struct {
	Matches             []*Match `json:"matches"`
	NextPaginationToken *string  `json:"next_pagination_token,omitempty"`
}

func (x *ListMutualMatchesResponse) GetNextPaginationToken() string {
	if x != nil && x.NextPaginationToken != nil {
		return *x.NextPaginationToken
	}
	return ""
}

type ListLikesReceivedRequest struct {
	UserId          string  `json:"user_id"`
	Limit           int32   `json:"limit,omitempty"`
	PaginationToken *string `json:"pagination_token,omitempty"`
}

func (x *ListLikesReceivedRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

func (x *ListLikesReceivedRequest) GetLimit() int32 {
	if x != nil {
		return x.Limit
	}
	return 0
}

func (x *ListLikesReceivedRequest) GetPaginationToken() string {
	if x != nil && x.PaginationToken != nil {
		return *x.PaginationToken
	}
	return ""
}

type Liker struct {
	UserId        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	LikedAtUnixMs uint64 `json:"liked_at_unix_ms"`
	LikedBack     bool   `json:"liked_back"`
}

type ListLikesReceivedResponse struct {
	Likers              []*Liker `json:"likers"`
	NextPaginationToken *string  `json:"next_pagination_token,omitempty"`
}

func (x *ListLikesReceivedResponse) GetNextPaginationToken() string {
	if x != nil && x.NextPaginationToken != nil {
		return *x.NextPaginationToken
	}
	return ""
}

type CountMatchingRequest struct {
	UserId string `json:"user_id"`
}

func (x *CountMatchingRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

type CountMatchingResponse struct {
	LikesReceived uint64 `json:"likes_received"`
	Mutual        uint64 `json:"mutual"`
}

type UndoRequest struct {
	ActorId string `json:"actor_id"`
}

func (x *UndoRequest) GetActorId() string {
	if x != nil {
		return x.ActorId
	}
	return ""
}

type UndoResponse struct {
	Undone   bool   `json:"undone"`
	TargetId string `json:"target_id,omitempty"`
	Action   string `json:"action,omitempty"`
}

type ResetRequest struct {
	ActorId string `json:"actor_id"`
	// Mode is "soft" or "hard"; empty means hard.
	Mode string `json:"mode,omitempty"`
}

func (x *ResetRequest) GetActorId() string {
	if x != nil {
		return x.ActorId
	}
	return ""
}

func (x *ResetRequest) GetMode() string {
	if x != nil {
		return x.Mode
	}
	return ""
}

type ResetResponse struct {
	Cleared uint32 `json:"cleared"`
	Mode    string `json:"mode"`
}

type Preferences struct {
	Tags                []string            `json:"tags,omitempty"`
	Languages           []string            `json:"languages,omitempty"`
	City                string              `json:"city,omitempty"`
	Country             string              `json:"country,omitempty"`
	CenterLat           *float64            `json:"center_lat,omitempty"`
	CenterLng           *float64            `json:"center_lng,omitempty"`
	RadiusKm            *float64            `json:"radius_km,omitempty"`
	Appearance          map[string][]string `json:"appearance,omitempty"`
	AutoMessageEnabled  bool                `json:"auto_message_enabled"`
	AutoMessageTemplate string              `json:"auto_message_template,omitempty"`
}

type GetPreferencesRequest struct {
	UserId string `json:"user_id"`
}

func (x *GetPreferencesRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

type PreferencesResponse struct {
	Preferences *Preferences `json:"preferences"`
}

func (x *PreferencesResponse) GetPreferences() *Preferences {
	if x != nil {
		return x.Preferences
	}
	return nil
}

// PreferencesPatch updates only the fields present in the request.
type PreferencesPatch struct {
	Tags                *[]string            `json:"tags,omitempty"`
	Languages           *[]string            `json:"languages,omitempty"`
	City                *string              `json:"city,omitempty"`
	Country             *string              `json:"country,omitempty"`
	CenterLat           *float64             `json:"center_lat,omitempty"`
	CenterLng           *float64             `json:"center_lng,omitempty"`
	RadiusKm            *float64             `json:"radius_km,omitempty"`
	ClearLocation       bool                 `json:"clear_location,omitempty"`
	Appearance          *map[string][]string `json:"appearance,omitempty"`
	AutoMessageEnabled  *bool                `json:"auto_message_enabled,omitempty"`
	AutoMessageTemplate *string              `json:"auto_message_template,omitempty"`
}

type UpdatePreferencesRequest struct {
	UserId string            `json:"user_id"`
	Patch  *PreferencesPatch `json:"patch"`
}

func (x *UpdatePreferencesRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

func (x *UpdatePreferencesRequest) GetPatch() *PreferencesPatch {
	if x != nil {
		return x.Patch
	}
	return nil
}
