package vault

// Event topics published by the vault module.
const (
	TopicUserRegistered = "vault.user.registered"
	TopicUserLogin      = "vault.user.login"
	TopicUserLogout     = "vault.user.logout"
)

// UserEvent is the payload for all vault topics.
type UserEvent struct {
	Username string `json:"username"`
	RemoteIP string `json:"remote_ip,omitempty"`
}
