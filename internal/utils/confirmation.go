package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rateworks/critica/internal/models"
)

// CodeGenerator issues and checks confirmation codes. Codes are stateless:
// nothing is stored server-side. A code is an HMAC over a hash of the
// user's mutable state plus an issue timestamp, so any profile edit (or the
// LastLoginAt stamp written on a successful exchange) invalidates every
// outstanding code for that user, and codes expire after ttl.
type CodeGenerator struct {
	secret []byte
	ttl    time.Duration
}

func NewCodeGenerator(secret string, ttl time.Duration) *CodeGenerator {
	return &CodeGenerator{secret: []byte(secret), ttl: ttl}
}

// Make issues a confirmation code for the user's current state.
func (g *CodeGenerator) Make(user *models.User) string {
	return g.makeAt(user, time.Now())
}

// Check reports whether code is a valid, unexpired code for the user's
// current state.
func (g *CodeGenerator) Check(user *models.User, code string) bool {
	tsPart, sig, ok := strings.Cut(code, "-")
	if !ok {
		return false
	}

	issued, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}

	now := time.Now()
	if issued > now.Unix() || now.Sub(time.Unix(issued, 0)) > g.ttl {
		return false
	}

	expected := g.sign(user, issued)
	return hmac.Equal([]byte(sig), []byte(expected))
}

func (g *CodeGenerator) makeAt(user *models.User, now time.Time) string {
	issued := now.Unix()
	return strconv.FormatInt(issued, 36) + "-" + g.sign(user, issued)
}

func (g *CodeGenerator) sign(user *models.User, issued int64) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(stateHash(user)))
	mac.Write([]byte(strconv.FormatInt(issued, 10)))
	return hex.EncodeToString(mac.Sum(nil))[:32]
}

// stateHash folds every mutable user field into the signed material.
// Timestamps are truncated to seconds so a database round trip does not
// change the hash.
func stateHash(user *models.User) string {
	lastLogin := int64(0)
	if user.LastLoginAt != nil {
		lastLogin = user.LastLoginAt.Unix()
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%t|%d",
		user.ID,
		user.Username,
		user.Email,
		user.Role,
		user.Bio,
		user.FirstName,
		user.LastName,
		user.Confirmed,
		lastLogin,
	)
}
