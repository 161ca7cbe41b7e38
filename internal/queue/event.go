// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used by the notification pipeline.
const (
    EmailQueueName = "notify.email"
    PushQueueName  = "notify.push"
)

// EmailRequestedEvent is published when the service wants an email sent:
// recovery codes from the forgot-password flow and the direct
// /notifications/email endpoint.  Delivery is fire-and-forget; a failed
// send never fails the credential operation that requested it.
type EmailRequestedEvent struct {
    To          string `json:"to"`
    From        string `json:"from"`
    Subject     string `json:"subject"`
    Body        string `json:"body"`
    RequestedAt string `json:"requested_at"`
}

// PushRequestedEvent is published for the /notifications/push endpoint.
// DeviceToken is the target user's registered FCM token.
type PushRequestedEvent struct {
    UserID      uint64 `json:"user_id"`
    DeviceToken string `json:"device_token"`
    Title       string `json:"title"`
    Body        string `json:"body"`
    RequestedAt string `json:"requested_at"`
}
