package main

import (
	"log"
	"os"

	"stayhub-server/routes"
	"stayhub-server/storage"
	"stayhub-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/kataras/iris/v12/websocket"
)

func newApp() *iris.Application {
	app := iris.New()
	app.Validator = validator.New()

	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
		user.Get("/{id}/listings/saved", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.GetUserSavedListings)
		user.Patch("/{id}/listings/saved", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AlterUserSavedListings)
	}

	listings := app.Party("/api/listings")
	{
		listings.Get("/", routes.ListListings)
		listings.Post("/", accessTokenVerifierMiddleware, routes.CreateListing)
		listings.Get("/{id:uint}", routes.GetListing)
		listings.Put("/{id:uint}", accessTokenVerifierMiddleware, routes.UpdateListing)
		listings.Patch("/{id:uint}", accessTokenVerifierMiddleware, routes.UpdateListing)
		listings.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeleteListing)
	}

	bookings := app.Party("/api/bookings")
	{
		bookings.Get("/", routes.ListBookings)
		bookings.Post("/", accessTokenVerifierMiddleware, routes.CreateBooking)
		bookings.Get("/{id:uint}", routes.GetBooking)
		bookings.Put("/{id:uint}", accessTokenVerifierMiddleware, routes.UpdateBooking)
		bookings.Patch("/{id:uint}", accessTokenVerifierMiddleware, routes.UpdateBooking)
		bookings.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeleteBooking)
	}

	reviews := app.Party("/api/reviews")
	{
		reviews.Get("/", routes.ListReviews)
		reviews.Post("/", accessTokenVerifierMiddleware, routes.CreateReview)
		reviews.Get("/{id:uint}", routes.GetReview)
		reviews.Put("/{id:uint}", accessTokenVerifierMiddleware, routes.UpdateReview)
		reviews.Patch("/{id:uint}", accessTokenVerifierMiddleware, routes.UpdateReview)
		reviews.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeleteReview)
	}

	ws := routes.NewRealtimeServer()
	app.Get("/ws/{id:uint}", websocket.Handler(ws, routes.RealtimeConnectionID))

	return app
}

func main() {
	godotenv.Load()
	storage.InitializeDB()
	storage.InitializeRedis()

	app := newApp()

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
