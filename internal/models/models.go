package models

import (
	"time"

	"github.com/lib/pq"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

type User struct {
	UserID      string    `json:"userId" db:"user_id"`
	DisplayName string    `json:"displayName" db:"display_name"`
	Role        Role      `json:"role" db:"role"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Actor is the already authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type Question struct {
	QuestionID  string         `json:"questionId" db:"question_id"`
	Text        string         `json:"text" db:"text"`
	IsPublic    bool           `json:"isPublic" db:"is_public"`
	AskedBy     string         `json:"askedBy" db:"asked_by"`
	AIAnswer    string         `json:"aiAnswer" db:"ai_answer"`
	TopAnswerID *string        `json:"topAnswerId" db:"top_answer_id"`
	Tags        pq.StringArray `json:"tags" db:"tags"`
	Category    string         `json:"category" db:"category"`
	IsFlagged   bool           `json:"isFlagged" db:"is_flagged"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}

type Answer struct {
	AnswerID        string    `json:"answerId" db:"answer_id"`
	QuestionID      string    `json:"questionId" db:"question_id"`
	Text            string    `json:"text" db:"text"`
	AnsweredBy      string    `json:"answeredBy" db:"answered_by"`
	Language        string    `json:"language" db:"language"`
	UpvotesCount    int       `json:"upvotesCount" db:"upvotes_count"`
	IsFlagged       bool      `json:"isFlagged" db:"is_flagged"`
	IsHidden        bool      `json:"isHidden" db:"is_hidden"`
	HiddenTemporary bool      `json:"hiddenTemporary" db:"hidden_temporary"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// Eligible reports whether the answer may be chosen as a question's top answer.
func (a *Answer) Eligible() bool {
	return !a.IsFlagged && !a.IsHidden && !a.HiddenTemporary
}

type Vote struct {
	VoteID     string    `json:"voteId" db:"vote_id"`
	QuestionID string    `json:"questionId" db:"question_id"`
	AnswerID   string    `json:"answerId" db:"answer_id"`
	VotedBy    string    `json:"votedBy" db:"voted_by"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

type ItemType string

const (
	ItemQuestion ItemType = "question"
	ItemAnswer   ItemType = "answer"
	ItemMessage  ItemType = "message"
)

type FlagStatus string

const (
	FlagPending   FlagStatus = "pending"
	FlagDismissed FlagStatus = "dismissed"
	FlagResolved  FlagStatus = "resolved"
	FlagRejected  FlagStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s FlagStatus) Terminal() bool {
	return s == FlagDismissed || s == FlagResolved || s == FlagRejected
}

type Flag struct {
	FlagID                      string     `json:"flagId" db:"flag_id"`
	ItemType                    ItemType   `json:"itemType" db:"item_type"`
	ItemID                      string     `json:"itemId" db:"item_id"`
	ReportedBy                  string     `json:"reportedBy" db:"reported_by"`
	Reason                      string     `json:"reason" db:"reason"`
	Status                      FlagStatus `json:"status" db:"status"`
	CreatedAt                   time.Time  `json:"createdAt" db:"created_at"`
	NotificationSentAt          *time.Time `json:"notificationSentAt" db:"notification_sent_at"`
	NotificationSentAtDismissed *time.Time `json:"notificationSentAtDismissed" db:"notification_sent_at_dismissed"`
}

type NotificationType string

const (
	NotiTopAnswerChanged NotificationType = "top_answer_changed"
	NotiAnswerUpvoted    NotificationType = "answer_upvoted"
	NotiQuestionAnswered NotificationType = "question_answered"
	NotiQuestionUpdated  NotificationType = "question_updated"
	NotiFlagResolved     NotificationType = "flag_resolved"
	NotiFlagRejected     NotificationType = "flag_rejected"
	NotiFlagDismissed    NotificationType = "flag_dismissed"
	NotiContentRemoved   NotificationType = "content_removed"
)

type Notification struct {
	ID        string           `json:"id" bson:"_id"`
	UserID    string           `json:"userId" bson:"user_id"`
	Type      NotificationType `json:"type" bson:"type"`
	Title     string           `json:"title" bson:"title"`
	Message   string           `json:"message" bson:"message"`
	Data      map[string]any   `json:"data" bson:"data"`
	Read      bool             `json:"read" bson:"read"`
	CreatedAt time.Time        `json:"createdAt" bson:"created_at"`
}
