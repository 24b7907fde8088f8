package dto

type CreateCommentRequest struct {
	Content  string `json:"content"`
	IsPublic *bool  `json:"is_public"`
}

type SignedURLResponse struct {
	SignedURL string `json:"signed_url"`
	ExpiresIn int    `json:"expires_in"`
}
