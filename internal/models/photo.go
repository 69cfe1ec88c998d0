package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Photo represents an uploaded photo together with its embedded comments
type Photo struct {
	ID       bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID   string        `json:"user_id" bson:"user_id"`
	FileName string        `json:"file_name" bson:"file_name"`
	DateTime time.Time     `json:"date_time" bson:"date_time"`
	Comments []Comment     `json:"comments" bson:"comments"`
}

// Comment is owned by its photo and never stored on its own
type Comment struct {
	ID       bson.ObjectID `json:"_id" bson:"_id"`
	Comment  string        `json:"comment" bson:"comment"`
	UserID   string        `json:"user_id" bson:"user_id,omitempty"`
	DateTime time.Time     `json:"date_time" bson:"date_time"`
}

// PhotoView is what photosOfUser returns: comments in full, no author profiles
type PhotoView struct {
	ID       bson.ObjectID `json:"_id"`
	UserID   string        `json:"user_id"`
	FileName string        `json:"file_name"`
	DateTime time.Time     `json:"date_time"`
	Comments []CommentView `json:"comments"`
}

type CommentView struct {
	ID       bson.ObjectID `json:"_id"`
	Comment  string        `json:"comment"`
	DateTime time.Time     `json:"date_time"`
	UserID   string        `json:"user_id"`
}

// View projects a photo to its client-facing form
func (p Photo) View() PhotoView {
	comments := make([]CommentView, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, CommentView{
			ID:       c.ID,
			Comment:  c.Comment,
			DateTime: c.DateTime,
			UserID:   c.UserID,
		})
	}
	return PhotoView{
		ID:       p.ID,
		UserID:   p.UserID,
		FileName: p.FileName,
		DateTime: p.DateTime,
		Comments: comments,
	}
}

type AddCommentRequest struct {
	Comment string `json:"comment"`
	UserID  string `json:"userId"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// CommentEvent is pushed to websocket subscribers of a photo
type CommentEvent struct {
	Event   string  `json:"event"`
	PhotoID string  `json:"photo_id"`
	Comment Comment `json:"comment"`
}
