package api

import "github.com/starford/blognotes/internal/models"

// CreateNoteRequest is the request body for saving a note. Staged attachments
// of the caller's session are attached automatically.
type CreateNoteRequest struct {
	Title   string `json:"title" example:"Trip"`
	Content string `json:"content" example:"<p>Hello</p>"`
}

// NoteListResponse wraps the stored collection.
type NoteListResponse struct {
	Notes []models.Note `json:"notes"`
	Total int           `json:"total" example:"1"`
}

// StageAttachmentsRequest stages files by descriptor only, as supplied by a
// file picker.
type StageAttachmentsRequest struct {
	Files []models.Attachment `json:"files"`
}

// AttachmentListResponse lists the session's staged attachments in order.
type AttachmentListResponse struct {
	Files []models.Attachment `json:"files"`
}

// ThemeRequest sets the page theme.
type ThemeRequest struct {
	Theme string `json:"theme" example:"dark"`
}

// ThemeResponse reports the page theme.
type ThemeResponse struct {
	Theme string `json:"theme" example:"light"`
}
