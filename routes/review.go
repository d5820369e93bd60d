package routes

import (
	"time"

	"stayhub-server/models"
	"stayhub-server/storage"
	"stayhub-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
)

type CreateReviewInput struct {
	ListingID uint   `json:"listingID" validate:"required"`
	Rating    int    `json:"rating" validate:"gte=0"`
	Comment   string `json:"comment" validate:"max=2000"`
}

type UpdateReviewInput struct {
	Rating  *int    `json:"rating" validate:"omitempty,gte=0"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

type ReviewResponse struct {
	ID        uint      `json:"id"`
	Listing   string    `json:"listing"`
	Guest     string    `json:"guest"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func newReviewResponse(review models.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID,
		Listing:   review.Listing.Title,
		Guest:     review.Guest.Username,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}

var (
	reviewSearchColumns = []string{`"Listing".title`, `"Guest".username`, "reviews.comment"}
	reviewOrderColumns  = map[string]string{
		"rating":     "reviews.rating",
		"created_at": "reviews.created_at",
	}
)

const reviewDefaultOrder = "reviews.created_at DESC"

func ListReviews(ctx iris.Context) {
	term := ctx.URLParamDefault("search", "")
	ordering := ctx.URLParamDefault("ordering", "")

	base := func() *gorm.DB {
		return applySearch(
			storage.DB.Model(&models.Review{}).Joins("Listing").Joins("Guest"),
			term, reviewSearchColumns)
	}

	q := applyOrdering(base(), ordering, reviewOrderColumns, reviewDefaultOrder)
	q, page, perPage := applyPage(ctx, q)

	var reviews []models.Review
	if err := q.Find(&reviews).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	responses := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, newReviewResponse(review))
	}

	if page > 0 {
		var total int64
		base().Count(&total)
		utils.JSONPage(ctx, responses, page, perPage, total)
		return
	}
	ctx.JSON(responses)
}

func CreateReview(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateReviewInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var listing models.Listing
	listingExists := storage.DB.Find(&listing, input.ListingID)
	if listingExists.RowsAffected == 0 {
		utils.CreateFieldError(ctx, "listingID", "listing does not exist")
		return
	}

	review := models.Review{
		ListingID: listing.ID,
		GuestID:   claims.ID,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}

	if result := storage.DB.Create(&review); result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Preload("Listing").Preload("Guest").Find(&review, review.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(newReviewResponse(review))
}

func GetReview(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var review models.Review
	reviewExists := storage.DB.Preload("Listing").Preload("Guest").Find(&review, id)

	if reviewExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(newReviewResponse(review))
}

func UpdateReview(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var review models.Review
	reviewExists := storage.DB.Preload("Listing").Preload("Guest").Find(&review, id)

	if reviewExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if !canModifyReview(claims.ID, &review) {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	var input UpdateReviewInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Rating != nil {
		review.Rating = *input.Rating
	}
	if input.Comment != nil {
		review.Comment = *input.Comment
	}

	if result := storage.DB.Omit("Listing", "Guest").Save(&review); result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(newReviewResponse(review))
}

func DeleteReview(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var review models.Review
	reviewExists := storage.DB.Preload("Listing").Find(&review, id)

	if reviewExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if !canModifyReview(claims.ID, &review) {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	if result := storage.DB.Delete(&models.Review{}, review.ID); result.Error != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", result.Error.Error(), ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}
