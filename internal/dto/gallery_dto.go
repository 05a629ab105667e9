package dto

import "time"

// VoteRequest casts or replaces a guest vote on a project.
type VoteRequest struct {
	Stars int `json:"stars" validate:"required,min=1,max=5"`
}

// PaginationMeta describes the page window of a listing.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// GalleryProjectResponse is one entry of the public ranking listing.
type GalleryProjectResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	VideoURL    string    `json:"video_url,omitempty"`
	PointsTotal int       `json:"points_total"`
	VoteCount   int       `json:"vote_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// GalleryListResponse is the paginated public ranking listing.
type GalleryListResponse struct {
	Items      []GalleryProjectResponse `json:"items"`
	Pagination PaginationMeta           `json:"pagination"`
}
