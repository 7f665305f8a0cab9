package transfer

type PostCreation struct {
	Content      string   `json:"content"`
	MediaRefs    []string `json:"media_refs"`
	Status       string   `json:"status"`
	ScheduledFor string   `json:"scheduled_for"`
	ThreadOrder  int      `json:"thread_order"`
	ParentID     string   `json:"parent_id"`
}

type PostUpdate struct {
	ID           string    `json:"id"`
	Content      *string   `json:"content"`
	MediaRefs    *[]string `json:"media_refs"`
	Status       *string   `json:"status"`
	ScheduledFor *string   `json:"scheduled_for"`
	ThreadOrder  *int      `json:"thread_order"`
	ParentID     *string   `json:"parent_id"`
}

type MediaUploadResult struct {
	MediaRef string `json:"media_ref"`
	FileURL  string `json:"file_url"`
}
