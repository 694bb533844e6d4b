package models

// ConnectRequest is the body of POST /api/connect: identity info in, opaque
// chat credential out. The token has no inspectable structure client-side.
type ConnectRequest struct {
	UserID      string `json:"userId" validate:"required"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// ConnectResponse carries the minted chat credential.
type ConnectResponse struct {
	Token string `json:"token"`
}

// PrivateChatRequest is the body of POST /api/privChat. Calling it twice for
// the same pair returns the same channel id without duplicating membership.
type PrivateChatRequest struct {
	UserID        string `json:"userId" validate:"required"`
	Username      string `json:"username,omitempty"`
	DisplayName   string `json:"displayName,omitempty"`
	RecipientID   string `json:"recipientId" validate:"required"`
	RecipientName string `json:"recipientName,omitempty"`
}

// PrivateChatResponse carries the credential and the direct channel id.
type PrivateChatResponse struct {
	Token     string `json:"token"`
	ChannelID string `json:"channelId"`
}
