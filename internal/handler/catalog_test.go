package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/rateworks/critica/internal/models"
	"github.com/rateworks/critica/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type CatalogTestSuite struct {
	suite.Suite
	env        *testEnv
	adminAuth  string
	readerAuth string
	modAuth    string
	admin      *models.User
	reader     *models.User
}

func (s *CatalogTestSuite) SetupSuite() {
	s.env = newTestEnv(s.T())
}

func (s *CatalogTestSuite) TearDownSuite() {
	s.env.testDB.Teardown(s.T())
}

func (s *CatalogTestSuite) SetupTest() {
	t := s.T()
	testutil.CleanDatabase(t, s.env.testDB.DB)

	s.admin = testutil.CreateTestUser(t, s.env.testDB.DB, "admin", "admin@example.com", models.RoleAdmin)
	s.reader = testutil.CreateTestUser(t, s.env.testDB.DB, "reader", "reader@example.com", models.RoleUser)
	moderator := testutil.CreateTestUser(t, s.env.testDB.DB, "mod", "mod@example.com", models.RoleModerator)

	s.adminAuth = testutil.AuthHeader(t, s.admin)
	s.readerAuth = testutil.AuthHeader(t, s.reader)
	s.modAuth = testutil.AuthHeader(t, moderator)
}

func (s *CatalogTestSuite) TestAnonymousCanList() {
	t := s.T()
	testutil.CreateTestCategory(t, s.env.testDB.DB, "Movies", "movies")

	w := s.env.request(t, http.MethodGet, "/api/v1/categories", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])
}

func (s *CatalogTestSuite) TestWritesRequireAdmin() {
	t := s.T()
	payload := map[string]string{"name": "Movies", "slug": "movies"}

	w := s.env.request(t, http.MethodPost, "/api/v1/categories", payload, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.env.request(t, http.MethodPost, "/api/v1/categories", payload, s.readerAuth)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Moderators own reviews and comments, not the catalog.
	w = s.env.request(t, http.MethodPost, "/api/v1/categories", payload, s.modAuth)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.env.request(t, http.MethodPost, "/api/v1/categories", payload, s.adminAuth)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func (s *CatalogTestSuite) TestCategoryLifecycle() {
	t := s.T()

	w := s.env.request(t, http.MethodPost, "/api/v1/categories", map[string]string{
		"name": "Movies", "slug": "movies",
	}, s.adminAuth)
	assert.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	assert.Equal(t, "Movies", created["name"])
	assert.Equal(t, "movies", created["slug"])

	// Duplicate slug is a validation failure, not a crash.
	w = s.env.request(t, http.MethodPost, "/api/v1/categories", map[string]string{
		"name": "Films", "slug": "movies",
	}, s.adminAuth)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.env.request(t, http.MethodPatch, "/api/v1/categories/movies", map[string]string{
		"name": "Cinema",
	}, s.adminAuth)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cinema", decode(t, w)["name"])

	w = s.env.request(t, http.MethodDelete, "/api/v1/categories/movies", nil, s.adminAuth)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.env.request(t, http.MethodDelete, "/api/v1/categories/movies", nil, s.adminAuth)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (s *CatalogTestSuite) TestSlugValidation() {
	t := s.T()

	w := s.env.request(t, http.MethodPost, "/api/v1/genres", map[string]string{
		"name": "Drama", "slug": "no spaces!",
	}, s.adminAuth)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Contains(t, body["fields"], "slug")
}

func (s *CatalogTestSuite) TestCreateTitleWithRefs() {
	t := s.T()
	testutil.CreateTestCategory(t, s.env.testDB.DB, "Movies", "movies")
	testutil.CreateTestGenre(t, s.env.testDB.DB, "Drama", "drama")
	testutil.CreateTestGenre(t, s.env.testDB.DB, "Comedy", "comedy")

	w := s.env.request(t, http.MethodPost, "/api/v1/titles", map[string]any{
		"name":     "The Apartment",
		"year":     1960,
		"category": "movies",
		"genre":    []string{"drama", "comedy"},
	}, s.adminAuth)
	assert.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	assert.Equal(t, "The Apartment", body["name"])
	assert.Nil(t, body["rating"])
	category, ok := body["category"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "movies", category["slug"])
	assert.Len(t, body["genre"], 2)
}

func (s *CatalogTestSuite) TestCreateTitleUnknownSlug() {
	t := s.T()

	w := s.env.request(t, http.MethodPost, "/api/v1/titles", map[string]any{
		"name":     "Orphan",
		"year":     2000,
		"category": "missing",
	}, s.adminAuth)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (s *CatalogTestSuite) TestCreateTitleInFuture() {
	t := s.T()

	w := s.env.request(t, http.MethodPost, "/api/v1/titles", map[string]any{
		"name": "Not Yet",
		"year": 3000,
	}, s.adminAuth)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Contains(t, body["fields"], "year")
}

func (s *CatalogTestSuite) TestTitleFilters() {
	t := s.T()
	db := s.env.testDB.DB

	movies := testutil.CreateTestCategory(t, db, "Movies", "movies")
	books := testutil.CreateTestCategory(t, db, "Books", "books")
	scifi := testutil.CreateTestGenre(t, db, "Science Fiction", "sci-fi")
	horror := testutil.CreateTestGenre(t, db, "Horror", "horror")

	dune := testutil.CreateTestTitle(t, db, "Dune", 1965, books)
	alien := testutil.CreateTestTitle(t, db, "Alien", 1979, movies)
	aliens := testutil.CreateTestTitle(t, db, "Aliens", 1986, movies)
	assert.NoError(t, db.Create(&models.TitleGenre{TitleID: dune.ID, GenreID: scifi.ID}).Error)
	assert.NoError(t, db.Create(&models.TitleGenre{TitleID: alien.ID, GenreID: scifi.ID}).Error)
	assert.NoError(t, db.Create(&models.TitleGenre{TitleID: alien.ID, GenreID: horror.ID}).Error)
	assert.NoError(t, db.Create(&models.TitleGenre{TitleID: aliens.ID, GenreID: horror.ID}).Error)

	w := s.env.request(t, http.MethodGet, "/api/v1/titles?category=movies", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["count"])

	w = s.env.request(t, http.MethodGet, "/api/v1/titles?name=alien", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["count"])

	w = s.env.request(t, http.MethodGet, "/api/v1/titles?year=1965", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])
	results := body["results"].([]any)
	assert.Equal(t, "Dune", results[0].(map[string]any)["name"])

	w = s.env.request(t, http.MethodGet, "/api/v1/titles?genre=sci-fi", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["count"])

	w = s.env.request(t, http.MethodGet, "/api/v1/titles?genre=horror&name=aliens", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, float64(1), body["count"])
	results = body["results"].([]any)
	assert.Equal(t, "Aliens", results[0].(map[string]any)["name"])
}

// Filtering through the genre join table must not disturb the rating
// aggregate computed in the same query.
func (s *CatalogTestSuite) TestGenreFilterKeepsRating() {
	t := s.T()
	db := s.env.testDB.DB

	horror := testutil.CreateTestGenre(t, db, "Horror", "horror")
	alien := testutil.CreateTestTitle(t, db, "Alien", 1979, nil)
	assert.NoError(t, db.Create(&models.TitleGenre{TitleID: alien.ID, GenreID: horror.ID}).Error)
	testutil.CreateTestReview(t, db, alien, s.reader, "Still terrifying", 9)
	testutil.CreateTestReview(t, db, alien, s.admin, "A classic", 8)

	w := s.env.request(t, http.MethodGet, "/api/v1/titles?genre=horror", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])
	row := body["results"].([]any)[0].(map[string]any)
	assert.InDelta(t, 8.5, row["rating"], 0.001)
}

func (s *CatalogTestSuite) TestTitleRatingAggregation() {
	t := s.T()
	db := s.env.testDB.DB

	title := testutil.CreateTestTitle(t, db, "Solaris", 1972, nil)
	testutil.CreateTestReview(t, db, title, s.admin, "Slow but rewarding", 9)
	testutil.CreateTestReview(t, db, title, s.reader, "Too slow", 6)

	w := s.env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/titles/%d", title.ID), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.InDelta(t, 7.5, body["rating"], 0.001)
}

func (s *CatalogTestSuite) TestDeletingCategoryKeepsTitles() {
	t := s.T()
	db := s.env.testDB.DB

	movies := testutil.CreateTestCategory(t, db, "Movies", "movies")
	title := testutil.CreateTestTitle(t, db, "Stalker", 1979, movies)

	w := s.env.request(t, http.MethodDelete, "/api/v1/categories/movies", nil, s.adminAuth)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/titles/%d", title.ID), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["category"])
}

func (s *CatalogTestSuite) TestPagination() {
	t := s.T()
	db := s.env.testDB.DB

	for i := 0; i < 3; i++ {
		testutil.CreateTestGenre(t, db, fmt.Sprintf("Genre %d", i), fmt.Sprintf("genre-%d", i))
	}

	w := s.env.request(t, http.MethodGet, "/api/v1/genres?limit=2", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(3), body["count"])
	assert.Len(t, body["results"], 2)

	w = s.env.request(t, http.MethodGet, "/api/v1/genres?limit=2&offset=2", nil, "")
	assert.Len(t, decode(t, w)["results"], 1)
}

func TestCatalogTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}
