package handler_test

import (
	"net/http"
	"testing"

	"github.com/rateworks/critica/internal/models"
	"github.com/rateworks/critica/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type AuthFlowTestSuite struct {
	suite.Suite
	env *testEnv
}

func (s *AuthFlowTestSuite) SetupSuite() {
	s.env = newTestEnv(s.T())
}

func (s *AuthFlowTestSuite) TearDownSuite() {
	s.env.testDB.Teardown(s.T())
}

func (s *AuthFlowTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.env.testDB.DB)
	s.env.notifier.Sends = nil
}

func (s *AuthFlowTestSuite) signup(username, email string) *http.Response {
	w := s.env.request(s.T(), http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"username": username,
		"email":    email,
	}, "")
	return w.Result()
}

func (s *AuthFlowTestSuite) TestSignupTokenMeFlow() {
	t := s.T()

	w := s.env.request(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"username": "reader",
		"email":    "reader@example.com",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "reader", body["username"])
	assert.Equal(t, "reader@example.com", body["email"])
	// The code travels by mail only.
	assert.NotContains(t, w.Body.String(), "confirmation_code")

	assert.Len(t, s.env.notifier.Sends, 1)
	assert.Equal(t, "reader@example.com", s.env.notifier.Sends[0].Recipient)
	code := testutil.ExtractCode(t, s.env.notifier.LastBody())

	w = s.env.request(t, http.MethodPost, "/api/v1/auth/token", map[string]string{
		"username":          "reader",
		"confirmation_code": code,
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	token, ok := decode(t, w)["token"].(string)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	w = s.env.request(t, http.MethodGet, "/api/v1/users/me", nil, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, "reader", me["username"])
	assert.Equal(t, string(models.RoleUser), me["role"])
}

func (s *AuthFlowTestSuite) TestSignupIsRepeatable() {
	t := s.T()

	resp := s.signup("reader", "reader@example.com")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = s.signup("reader", "reader@example.com")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	s.env.testDB.DB.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
	assert.Len(t, s.env.notifier.Sends, 2)

	// The reissued code still works.
	code := testutil.ExtractCode(t, s.env.notifier.LastBody())
	w := s.env.request(t, http.MethodPost, "/api/v1/auth/token", map[string]string{
		"username":          "reader",
		"confirmation_code": code,
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func (s *AuthFlowTestSuite) TestExchangeInvalidatesEarlierCodes() {
	t := s.T()

	s.signup("reader", "reader@example.com")
	firstCode := testutil.ExtractCode(t, s.env.notifier.LastBody())
	s.signup("reader", "reader@example.com")
	secondCode := testutil.ExtractCode(t, s.env.notifier.LastBody())

	w := s.env.request(t, http.MethodPost, "/api/v1/auth/token", map[string]string{
		"username":          "reader",
		"confirmation_code": secondCode,
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Exchanging stamped the account, so the older code is dead.
	w = s.env.request(t, http.MethodPost, "/api/v1/auth/token", map[string]string{
		"username":          "reader",
		"confirmation_code": firstCode,
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (s *AuthFlowTestSuite) TestSignupRejectsReservedUsername() {
	resp := s.signup("me", "me@example.com")
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
}

func (s *AuthFlowTestSuite) TestSignupRejectsBadUsername() {
	resp := s.signup("no spaces allowed", "reader@example.com")
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
}

func (s *AuthFlowTestSuite) TestSignupRejectsIdentityConflict() {
	t := s.T()

	resp := s.signup("reader", "reader@example.com")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Same username, different email.
	resp = s.signup("reader", "other@example.com")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Same email, different username.
	resp = s.signup("other", "reader@example.com")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func (s *AuthFlowTestSuite) TestTokenForUnknownUser() {
	w := s.env.request(s.T(), http.MethodPost, "/api/v1/auth/token", map[string]string{
		"username":          "ghost",
		"confirmation_code": "1-abc",
	}, "")
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *AuthFlowTestSuite) TestTokenWithWrongCode() {
	t := s.T()

	s.signup("reader", "reader@example.com")

	w := s.env.request(t, http.MethodPost, "/api/v1/auth/token", map[string]string{
		"username":          "reader",
		"confirmation_code": "1z9-deadbeefdeadbeefdeadbeefdeadbeef",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (s *AuthFlowTestSuite) TestMeRequiresToken() {
	w := s.env.request(s.T(), http.MethodGet, "/api/v1/users/me", nil, "")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func TestAuthFlowTestSuite(t *testing.T) {
	suite.Run(t, new(AuthFlowTestSuite))
}
