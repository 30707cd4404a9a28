package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ArchivedDocument is a completed document exported to MongoDB.
type ArchivedDocument struct {
	ID          primitive.ObjectID `json:"id"           bson:"_id,omitempty"`
	UserID      string             `json:"user_id"      bson:"user_id"`
	JobID       string             `json:"job_id"       bson:"job_id"`
	Kind        DocumentKind       `json:"kind"         bson:"kind"`
	Topic       string             `json:"topic"        bson:"topic"`
	Source      DocumentSource     `json:"source"       bson:"source"`
	HTMLContent string             `json:"html_content" bson:"html_content"`
	ObjectKey   string             `json:"object_key"   bson:"object_key"`
	ModelUsed   string             `json:"model_used"   bson:"model_used"`
	CreatedAt   time.Time          `json:"created_at"   bson:"created_at"`
}

// Outcome records whether a remote call succeeded or its fallback was used.
type Outcome struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Component string    `json:"component"`
	Operation string    `json:"operation"`
	Fallback  bool      `json:"fallback"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
