package models

// Channel kinds at the messaging backend.
const (
	ChannelDirect = "direct"
	ChannelGroup  = "group"
)

// Channel is the application-side view of a conversation owned by the
// external messaging backend.
type Channel struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Name      string   `json:"name,omitempty"`
	CreatorID string   `json:"creatorId"`
	Members   []string `json:"members"`
}

// CreateDirectChannelRequest starts (or resumes) a one-on-one conversation.
type CreateDirectChannelRequest struct {
	RecipientID string `json:"recipientId" validate:"required"`
}

// CreateGroupChannelRequest starts a group conversation. The creator plus at
// least two other members are required.
type CreateGroupChannelRequest struct {
	MemberIDs []string `json:"memberIds" validate:"required,min=2,dive,required"`
	Name      string   `json:"name,omitempty" validate:"omitempty,max=120"`
}

// AddMemberRequest adds a user to an existing channel.
type AddMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
}
