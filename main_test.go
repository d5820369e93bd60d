package main

import (
	"os"
	"testing"

	"stayhub-server/models"
	"stayhub-server/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/iris-contrib/httpexpect/v2"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/httptest"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	os.Setenv("ACCESS_TOKEN_SECRET", "test-access-secret")
	os.Setenv("REFRESH_TOKEN_SECRET", "test-refresh-secret")

	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	os.Setenv("REDIS_URL", mr.Addr())
	storage.InitializeRedis()

	code := m.Run()
	mr.Close()
	os.Exit(code)
}

func setupTest(t *testing.T) *httpexpect.Expect {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // one in-memory database per test

	storage.DB = db
	storage.Migrate(db)

	return httptest.New(t, newApp())
}

type testUser struct {
	ID          uint
	Username    string
	AccessToken string
	Refresh     string
}

func registerUser(t *testing.T, e *httpexpect.Expect, username string) testUser {
	t.Helper()

	obj := e.POST("/api/user/register").WithJSON(iris.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "sup3r-secret",
	}).Expect().Status(iris.StatusOK).JSON().Object()

	return testUser{
		ID:          uint(obj.Value("ID").Number().Raw()),
		Username:    username,
		AccessToken: obj.Value("accessToken").String().Raw(),
		Refresh:     obj.Value("refreshToken").String().Raw(),
	}
}

func createListing(t *testing.T, e *httpexpect.Expect, u testUser, title, city string, price float64) uint {
	t.Helper()

	obj := e.POST("/api/listings").
		WithHeader("Authorization", "Bearer "+u.AccessToken).
		WithJSON(iris.Map{
			"title":       title,
			"description": "A lovely place to stay",
			"address":     "1 Main Street",
			"city":        city,
			"country":     "France",
			"price":       price,
			"amenities":   "wifi,kitchen",
		}).Expect().Status(iris.StatusCreated).JSON().Object()

	return uint(obj.Value("id").Number().Raw())
}

func createBooking(t *testing.T, e *httpexpect.Expect, u testUser, listingID uint, start, end string) uint {
	t.Helper()

	obj := e.POST("/api/bookings").
		WithHeader("Authorization", "Bearer "+u.AccessToken).
		WithJSON(iris.Map{
			"listingID": listingID,
			"startDate": start,
			"endDate":   end,
		}).Expect().Status(iris.StatusCreated).JSON().Object()

	return uint(obj.Value("id").Number().Raw())
}

func createReview(t *testing.T, e *httpexpect.Expect, u testUser, listingID uint, rating int, comment string) uint {
	t.Helper()

	obj := e.POST("/api/reviews").
		WithHeader("Authorization", "Bearer "+u.AccessToken).
		WithJSON(iris.Map{
			"listingID": listingID,
			"rating":    rating,
			"comment":   comment,
		}).Expect().Status(iris.StatusCreated).JSON().Object()

	return uint(obj.Value("id").Number().Raw())
}

func TestRegisterLoginAndRefresh(t *testing.T) {
	e := setupTest(t)

	u := registerUser(t, e, "alice")
	require.NotZero(t, u.ID)
	require.NotEmpty(t, u.AccessToken)

	// duplicate username/email is rejected
	e.POST("/api/user/register").WithJSON(iris.Map{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "sup3r-secret",
	}).Expect().Status(iris.StatusConflict)

	obj := e.POST("/api/user/login").WithJSON(iris.Map{
		"email":    "alice@example.com",
		"password": "sup3r-secret",
	}).Expect().Status(iris.StatusOK).JSON().Object()
	obj.Value("username").String().IsEqual("alice")

	e.POST("/api/user/login").WithJSON(iris.Map{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}).Expect().Status(iris.StatusUnauthorized)

	// refresh rotates the pair and consumes the old refresh token
	e.POST("/api/user/refresh").WithJSON(iris.Map{
		"refreshToken": u.Refresh,
	}).Expect().Status(iris.StatusOK).JSON().Object().
		Value("accessToken").String().NotEmpty()

	e.POST("/api/user/refresh").WithJSON(iris.Map{
		"refreshToken": u.Refresh,
	}).Expect().Status(iris.StatusNotFound)
}

func TestAnonymousReadsAndGatedWrites(t *testing.T) {
	e := setupTest(t)

	u := registerUser(t, e, "host")
	id := createListing(t, e, u, "Harbor View", "Marseille", 80)

	e.GET("/api/listings").Expect().Status(iris.StatusOK).JSON().Array().Length().IsEqual(1)
	e.GET("/api/bookings").Expect().Status(iris.StatusOK)
	e.GET("/api/reviews").Expect().Status(iris.StatusOK)
	e.GET("/api/listings/{id}", id).Expect().Status(iris.StatusOK)

	e.POST("/api/listings").WithJSON(iris.Map{"title": "x"}).Expect().Status(iris.StatusUnauthorized)
	e.PATCH("/api/listings/{id}", id).WithJSON(iris.Map{"price": 1}).Expect().Status(iris.StatusUnauthorized)
	e.DELETE("/api/listings/{id}", id).Expect().Status(iris.StatusUnauthorized)
	e.POST("/api/bookings").WithJSON(iris.Map{"listingID": id}).Expect().Status(iris.StatusUnauthorized)
	e.POST("/api/reviews").WithJSON(iris.Map{"listingID": id}).Expect().Status(iris.StatusUnauthorized)
}

func TestCreateBindsOwnerToPrincipal(t *testing.T) {
	e := setupTest(t)

	host := registerUser(t, e, "host")
	guest := registerUser(t, e, "guest")
	listingID := createListing(t, e, host, "City Loft", "Lyon", 120)

	// owner and server fields in the payload are ignored
	obj := e.POST("/api/bookings").
		WithHeader("Authorization", "Bearer "+guest.AccessToken).
		WithJSON(iris.Map{
			"listingID": listingID,
			"startDate": "2026-10-01",
			"endDate":   "2026-10-05",
			"guestID":   9999,
			"guest":     "someone-else",
			"status":    "confirmed",
		}).Expect().Status(iris.StatusCreated).JSON().Object()

	obj.Value("guest").String().IsEqual("guest")
	obj.Value("status").String().IsEqual("pending")

	var booking models.Booking
	require.NoError(t, storage.DB.First(&booking).Error)
	require.Equal(t, guest.ID, booking.GuestID)
	require.Equal(t, "pending", booking.Status)

	review := e.POST("/api/reviews").
		WithHeader("Authorization", "Bearer "+guest.AccessToken).
		WithJSON(iris.Map{
			"listingID": listingID,
			"rating":    4,
			"comment":   "great stay",
			"guestID":   9999,
		}).Expect().Status(iris.StatusCreated).JSON().Object()
	review.Value("guest").String().IsEqual("guest")

	listing := e.POST("/api/listings").
		WithHeader("Authorization", "Bearer "+guest.AccessToken).
		WithJSON(iris.Map{
			"title":       "Guest's Own",
			"description": "d",
			"address":     "2 Side Street",
			"city":        "Nice",
			"country":     "France",
			"price":       60,
			"ownerID":     host.ID,
		}).Expect().Status(iris.StatusCreated).JSON().Object()
	listing.Value("owner").String().IsEqual("guest")
}

func TestUpdateKeepsServerFields(t *testing.T) {
	e := setupTest(t)

	host := registerUser(t, e, "host")
	guest := registerUser(t, e, "guest")
	listingID := createListing(t, e, host, "Old Mill", "Arles", 95)
	bookingID := createBooking(t, e, guest, listingID, "2026-07-01", "2026-07-08")

	obj := e.PATCH("/api/bookings/{id}", bookingID).
		WithHeader("Authorization", "Bearer "+guest.AccessToken).
		WithJSON(iris.Map{
			"startDate": "2026-07-02",
			"status":    "confirmed",
			"guestID":   9999,
			"listingID": 9999,
		}).Expect().Status(iris.StatusOK).JSON().Object()

	obj.Value("startDate").String().IsEqual("2026-07-02")
	obj.Value("endDate").String().IsEqual("2026-07-08")
	obj.Value("status").String().IsEqual("pending")
	obj.Value("guest").String().IsEqual("guest")
	obj.Value("listing").String().IsEqual("Old Mill")

	// listing ownership survives an update attempt too
	upd := e.PATCH("/api/listings/{id}", listingID).
		WithHeader("Authorization", "Bearer "+host.AccessToken).
		WithJSON(iris.Map{"price": 99, "ownerID": guest.ID}).
		Expect().Status(iris.StatusOK).JSON().Object()
	upd.Value("owner").String().IsEqual("host")
	upd.Value("price").Number().IsEqual(99)
}

func TestOwnershipForbiddenMatrix(t *testing.T) {
	e := setupTest(t)

	u1 := registerUser(t, e, "u1")
	u2 := registerUser(t, e, "u2")
	listingID := createListing(t, e, u1, "Paris Flat", "Paris", 100)

	// U2 is not the owner
	e.PATCH("/api/listings/{id}", listingID).
		WithHeader("Authorization", "Bearer "+u2.AccessToken).
		WithJSON(iris.Map{"price": 50}).
		Expect().Status(iris.StatusForbidden)

	e.GET("/api/listings/{id}", listingID).Expect().Status(iris.StatusOK).
		JSON().Object().Value("price").Number().IsEqual(100)

	e.DELETE("/api/listings/{id}", listingID).
		WithHeader("Authorization", "Bearer "+u2.AccessToken).
		Expect().Status(iris.StatusForbidden)

	// the owner succeeds with the identical request
	e.PATCH("/api/listings/{id}", listingID).
		WithHeader("Authorization", "Bearer "+u1.AccessToken).
		WithJSON(iris.Map{"price": 50}).
		Expect().Status(iris.StatusOK).
		JSON().Object().Value("price").Number().IsEqual(50)
}

func TestBookingModifiableByGuestOrListingOwner(t *testing.T) {
	e := setupTest(t)

	host := registerUser(t, e, "host")
	guest := registerUser(t, e, "guest")
	stranger := registerUser(t, e, "stranger")
	listingID := createListing(t, e, host, "Beach Hut", "Biarritz", 70)
	bookingID := createBooking(t, e, guest, listingID, "2026-08-01", "2026-08-03")
	reviewID := createReview(t, e, guest, listingID, 5, "lovely")

	// a third party may not touch either resource
	e.PATCH("/api/bookings/{id}", bookingID).
		WithHeader("Authorization", "Bearer "+stranger.AccessToken).
		WithJSON(iris.Map{"endDate": "2026-08-04"}).
		Expect().Status(iris.StatusForbidden)
	e.DELETE("/api/reviews/{id}", reviewID).
		WithHeader("Authorization", "Bearer "+stranger.AccessToken).
		Expect().Status(iris.StatusForbidden)

	// the listing owner may
	e.PATCH("/api/bookings/{id}", bookingID).
		WithHeader("Authorization", "Bearer "+host.AccessToken).
		WithJSON(iris.Map{"endDate": "2026-08-04"}).
		Expect().Status(iris.StatusOK).
		JSON().Object().Value("endDate").String().IsEqual("2026-08-04")

	e.DELETE("/api/reviews/{id}", reviewID).
		WithHeader("Authorization", "Bearer "+host.AccessToken).
		Expect().Status(iris.StatusNoContent)

	// and so may the guest, for their own booking
	e.DELETE("/api/bookings/{id}", bookingID).
		WithHeader("Authorization", "Bearer "+guest.AccessToken).
		Expect().Status(iris.StatusNoContent)
}

func TestRetrieveRoundTrip(t *testing.T) {
	e := setupTest(t)

	host := registerUser(t, e, "host")
	id := createListing(t, e, host, "Stone Cottage", "Aix", 150)

	obj := e.GET("/api/listings/{id}", id).Expect().Status(iris.StatusOK).JSON().Object()
	obj.Value("id").Number().IsEqual(id)
	obj.Value("owner").String().IsEqual("host")
	obj.Value("title").String().IsEqual("Stone Cottage")
	obj.Value("city").String().IsEqual("Aix")
	obj.Value("price").Number().IsEqual(150)
	obj.Value("amenities").String().IsEqual("wifi,kitchen")
	obj.Value("createdAt").String().NotEmpty()
	obj.Value("updatedAt").String().NotEmpty()

	e.GET("/api/listings/999").Expect().Status(iris.StatusNotFound)
	e.GET("/api/bookings/999").Expect().Status(iris.StatusNotFound)
	e.GET("/api/reviews/999").Expect().Status(iris.StatusNotFound)
}

func TestDeleteListingCascades(t *testing.T) {
	e := setupTest(t)

	host := registerUser(t, e, "host")
	guest := registerUser(t, e, "guest")
	listingID := createListing(t, e, host, "Doomed Villa", "Cannes", 300)
	bookingID := createBooking(t, e, guest, listingID, "2026-09-01", "2026-09-05")
	reviewID := createReview(t, e, guest, listingID, 3, "ok")

	e.DELETE("/api/listings/{id}", listingID).
		WithHeader("Authorization", "Bearer "+host.AccessToken).
		Expect().Status(iris.StatusNoContent)

	e.GET("/api/listings/{id}", listingID).Expect().Status(iris.StatusNotFound)
	e.GET("/api/bookings/{id}", bookingID).Expect().Status(iris.StatusNotFound)
	e.GET("/api/reviews/{id}", reviewID).Expect().Status(iris.StatusNotFound)
}

func TestValidationErrors(t *testing.T) {
	e := setupTest(t)

	u := registerUser(t, e, "u1")
	auth := "Bearer " + u.AccessToken

	// missing required fields
	e.POST("/api/listings").WithHeader("Authorization", auth).
		WithJSON(iris.Map{"title": "No Address"}).
		Expect().Status(iris.StatusBadRequest).
		JSON().Object().Value("errors").Object().ContainsKey("city")

	// negative price
	e.POST("/api/listings").WithHeader("Authorization", auth).
		WithJSON(iris.Map{
			"title": "t", "description": "d", "address": "a",
			"city": "c", "country": "f", "price": -5,
		}).Expect().Status(iris.StatusBadRequest).
		JSON().Object().Value("errors").Object().ContainsKey("price")

	// unresolvable reference id
	e.POST("/api/bookings").WithHeader("Authorization", auth).
		WithJSON(iris.Map{
			"listingID": 424242,
			"startDate": "2026-01-01",
			"endDate":   "2026-01-02",
		}).Expect().Status(iris.StatusBadRequest).
		JSON().Object().Value("errors").Object().ContainsKey("listingID")

	// malformed date
	listingID := createListing(t, e, u, "Datey", "Dijon", 10)
	e.POST("/api/bookings").WithHeader("Authorization", auth).
		WithJSON(iris.Map{
			"listingID": listingID,
			"startDate": "01/02/2026",
			"endDate":   "2026-01-02",
		}).Expect().Status(iris.StatusBadRequest).
		JSON().Object().Value("errors").Object().ContainsKey("startDate")

	// negative rating
	e.POST("/api/reviews").WithHeader("Authorization", auth).
		WithJSON(iris.Map{"listingID": listingID, "rating": -1}).
		Expect().Status(iris.StatusBadRequest).
		JSON().Object().Value("errors").Object().ContainsKey("rating")
}

func TestSearchAndOrdering(t *testing.T) {
	e := setupTest(t)

	host := registerUser(t, e, "host")
	guest := registerUser(t, e, "guest")
	parisID := createListing(t, e, host, "Paris Flat", "Paris", 100)
	londonID := createListing(t, e, host, "London Loft", "London", 200)

	createBooking(t, e, guest, parisID, "2026-05-10", "2026-05-12")
	createBooking(t, e, guest, parisID, "2026-05-20", "2026-05-22")
	createBooking(t, e, guest, londonID, "2026-05-15", "2026-05-17")

	// substring search across the listing relation, newest start first
	arr := e.GET("/api/bookings").
		WithQuery("search", "Paris").
		WithQuery("ordering", "-start_date").
		Expect().Status(iris.StatusOK).JSON().Array()
	arr.Length().IsEqual(2)
	arr.Element(0).Object().Value("startDate").String().IsEqual("2026-05-20")
	arr.Element(1).Object().Value("startDate").String().IsEqual("2026-05-10")

	// search is case-insensitive and matches listing fields
	e.GET("/api/listings").WithQuery("search", "paris").
		Expect().Status(iris.StatusOK).JSON().Array().Length().IsEqual(1)

	// ordering by whitelisted column, ascending
	listings := e.GET("/api/listings").WithQuery("ordering", "price").
		Expect().Status(iris.StatusOK).JSON().Array()
	listings.Element(0).Object().Value("price").Number().IsEqual(100)
	listings.Element(1).Object().Value("price").Number().IsEqual(200)

	// unknown ordering keys fall back to the default instead of erroring
	e.GET("/api/listings").WithQuery("ordering", "password").
		Expect().Status(iris.StatusOK).JSON().Array().Length().IsEqual(2)
}

func TestListPagination(t *testing.T) {
	e := setupTest(t)

	host := registerUser(t, e, "host")
	createListing(t, e, host, "One", "Pau", 10)
	createListing(t, e, host, "Two", "Pau", 20)
	createListing(t, e, host, "Three", "Pau", 30)

	obj := e.GET("/api/listings").
		WithQuery("page", 1).WithQuery("per_page", 2).
		Expect().Status(iris.StatusOK).JSON().Object()
	obj.Value("data").Array().Length().IsEqual(2)
	obj.Value("meta").Object().Value("total").Number().IsEqual(3)
}

func TestSavedListings(t *testing.T) {
	e := setupTest(t)

	u1 := registerUser(t, e, "u1")
	u2 := registerUser(t, e, "u2")
	listingID := createListing(t, e, u1, "Keeper", "Lille", 45)

	// only the path owner can touch their saved list
	e.GET("/api/user/{id}/listings/saved", u1.ID).
		WithHeader("Authorization", "Bearer "+u2.AccessToken).
		Expect().Status(iris.StatusForbidden)

	e.PATCH("/api/user/{id}/listings/saved", u2.ID).
		WithHeader("Authorization", "Bearer "+u2.AccessToken).
		WithJSON(iris.Map{"listingID": listingID, "op": "add"}).
		Expect().Status(iris.StatusNoContent)

	arr := e.GET("/api/user/{id}/listings/saved", u2.ID).
		WithHeader("Authorization", "Bearer "+u2.AccessToken).
		Expect().Status(iris.StatusOK).JSON().Array()
	arr.Length().IsEqual(1)
	arr.Element(0).Object().Value("title").String().IsEqual("Keeper")

	// saving an unknown listing fails reference validation
	e.PATCH("/api/user/{id}/listings/saved", u2.ID).
		WithHeader("Authorization", "Bearer "+u2.AccessToken).
		WithJSON(iris.Map{"listingID": 9999, "op": "add"}).
		Expect().Status(iris.StatusBadRequest)

	e.PATCH("/api/user/{id}/listings/saved", u2.ID).
		WithHeader("Authorization", "Bearer "+u2.AccessToken).
		WithJSON(iris.Map{"listingID": listingID, "op": "remove"}).
		Expect().Status(iris.StatusNoContent)

	e.GET("/api/user/{id}/listings/saved", u2.ID).
		WithHeader("Authorization", "Bearer "+u2.AccessToken).
		Expect().Status(iris.StatusOK).JSON().Array().Length().IsEqual(0)
}
