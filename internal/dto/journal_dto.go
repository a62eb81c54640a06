package dto

type CreateJournalRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	PrRef    string `json:"pr_ref,omitempty"`
}

type CreateJournalResponse struct {
	JournalID string `json:"journal_id"`
}

type JournalLookupResponse struct {
	Found     bool   `json:"found"`
	JournalID string `json:"journal_id,omitempty"`
}
