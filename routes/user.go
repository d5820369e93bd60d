package routes

import (
	"encoding/json"
	"strings"

	"stayhub-server/models"
	"stayhub-server/storage"
	"stayhub-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type RegisterUserInput struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=256"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AlterSavedListingsInput struct {
	ListingID uint   `json:"listingID" validate:"required"`
	Op        string `json:"op" validate:"required,oneof=add remove"`
}

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var newUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&newUser, userInput.Username, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if userExists {
		utils.CreateAccountConflict(ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	newUser = models.User{
		Username: userInput.Username,
		Email:    strings.ToLower(userInput.Email),
		Password: hashedPassword,
	}

	if result := storage.DB.Create(&newUser); result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	returnUser(newUser, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	errorMsg := "Invalid email or password."

	var existingUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, "", userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	returnUser(existingUser, ctx)
}

// GetUserSavedListings returns the full listing rows for the ids the user has
// saved.
func GetUserSavedListings(ctx iris.Context) {
	id := ctx.Params().Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	var savedListings []uint
	if user.SavedListings != nil {
		if err := json.Unmarshal(user.SavedListings, &savedListings); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	var listings []models.Listing
	listingsExist := storage.DB.Preload("Owner").Where("id IN ?", savedListings).Find(&listings)
	if listingsExist.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	responses := make([]ListingResponse, 0, len(listings))
	for _, listing := range listings {
		responses = append(responses, newListingResponse(listing))
	}
	ctx.JSON(responses)
}

func AlterUserSavedListings(ctx iris.Context) {
	id := ctx.Params().Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	var req AlterSavedListingsInput
	err := ctx.ReadJSON(&req)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var listing models.Listing
	listingExists := storage.DB.Find(&listing, req.ListingID)
	if listingExists.RowsAffected == 0 {
		utils.CreateFieldError(ctx, "listingID", "listing does not exist")
		return
	}

	var saved []uint
	if user.SavedListings != nil {
		if unmarshalErr := json.Unmarshal(user.SavedListings, &saved); unmarshalErr != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	switch req.Op {
	case "add":
		if !slices.Contains(saved, req.ListingID) {
			saved = append(saved, req.ListingID)
		}
	case "remove":
		if i := slices.Index(saved, req.ListingID); i >= 0 {
			saved = slices.Delete(saved, i, i+1)
		}
	}

	marshalled, marshalErr := json.Marshal(saved)
	if marshalErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	user.SavedListings = marshalled

	if result := storage.DB.Model(user).Update("saved_listings", user.SavedListings); result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

func getUserByID(id string, ctx iris.Context) *models.User {
	var user models.User
	userExists := storage.DB.Find(&user, id)

	if userExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil
	}

	if userExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil
	}

	return &user
}

func getAndHandleUserExists(user *models.User, username string, email string) (exists bool, err error) {
	var userExistsQuery *gorm.DB
	if username != "" {
		userExistsQuery = storage.DB.Where("email = ? OR username = ?", strings.ToLower(email), username).Limit(1).Find(user)
	} else {
		userExistsQuery = storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(user)
	}

	if userExistsQuery.Error != nil {
		return false, userExistsQuery.Error
	}

	return userExistsQuery.RowsAffected > 0, nil
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user.ID)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"ID":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}
