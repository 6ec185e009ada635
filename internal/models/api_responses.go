package models

// RecordView is the rendered, cacheable representation of a single record.
type RecordView struct {
	EIN            int64            `json:"ein"`
	Names          []string         `json:"names"`
	Marked         []string         `json:"marked_names"`
	Representative *string          `json:"representative"`
	TotalNames     int              `json:"total_names"`
	Mappings       map[string]int64 `json:"name_ein_mappings"`
	Status         Status           `json:"completion_status"`
}

// ListItem is one row of the paginated record listing.
type ListItem struct {
	EIN      int64  `json:"ein"`
	IsEdited bool   `json:"is_edited"`
	Status   Status `json:"completion_status"`
}

// Pagination carries listing metadata.
type Pagination struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// ListResponse is the paginated record listing.
type ListResponse struct {
	Items      []ListItem `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Stats aggregates review progress across the whole store.
type Stats struct {
	TotalRecords       int `json:"total_eins"`
	EditedRecords      int `json:"edited_eins"`
	TotalNames         int `json:"total_names"`
	TotalMappings      int `json:"total_mappings"`
	DoneCount          int `json:"done_count"`
	PartiallyDoneCount int `json:"partially_done_count"`
	NotStartedCount    int `json:"not_started_count"`
}

// UpdateResult reports the outcome of a save, recomputed after the mutation.
type UpdateResult struct {
	TransferredCount int     `json:"transferred_count"`
	PendingCount     int     `json:"pending_count"`
	MappingsCount    int     `json:"mappings_count"`
	MarkedCount      int     `json:"marked_count"`
	TotalNames       int     `json:"total_names"`
	Representative   *string `json:"representative"`
	Status           Status  `json:"completion_status"`
}

// Operator is the authenticated user loaded from the OIDC session.
type Operator struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
