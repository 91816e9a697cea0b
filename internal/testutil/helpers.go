package testutil

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/rateworks/critica/internal/models"
	"github.com/rateworks/critica/internal/utils"
)

// TestJWTSecret signs tokens in tests.
const TestJWTSecret = "test-secret-key"

// AuthHeader returns the Authorization header value for the user.
func AuthHeader(t *testing.T, user *models.User) string {
	token, err := utils.GenerateToken(user, TestJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate test token: %v", err)
	}
	return "Bearer " + token
}

// CaptureNotifier records outbound notifications instead of sending them.
type CaptureNotifier struct {
	mu    sync.Mutex
	Sends []CapturedSend
}

type CapturedSend struct {
	Recipient string
	Subject   string
	Body      string
}

func (n *CaptureNotifier) Send(recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sends = append(n.Sends, CapturedSend{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	})
	return nil
}

// LastBody returns the body of the most recent send, or "".
func (n *CaptureNotifier) LastBody() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Sends) == 0 {
		return ""
	}
	return n.Sends[len(n.Sends)-1].Body
}

var codeRegex = regexp.MustCompile(`confirmation code: ([0-9a-z-]+)\.`)

// ExtractCode pulls the confirmation code out of a captured notification
// body.
func ExtractCode(t *testing.T, body string) string {
	m := codeRegex.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("No confirmation code found in notification body: %q", body)
	}
	return m[1]
}
