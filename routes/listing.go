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

type CreateListingInput struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description string  `json:"description" validate:"required"`
	Address     string  `json:"address" validate:"required,max=255"`
	City        string  `json:"city" validate:"required,max=100"`
	Country     string  `json:"country" validate:"required,max=100"`
	Price       float64 `json:"price" validate:"gte=0"`
	Amenities   string  `json:"amenities" validate:"max=255"`
	Photo       string  `json:"photo" validate:"omitempty,url"`
}

type UpdateListingInput struct {
	Title       *string  `json:"title" validate:"omitempty,max=255"`
	Description *string  `json:"description"`
	Address     *string  `json:"address" validate:"omitempty,max=255"`
	City        *string  `json:"city" validate:"omitempty,max=100"`
	Country     *string  `json:"country" validate:"omitempty,max=100"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Amenities   *string  `json:"amenities" validate:"omitempty,max=255"`
	Photo       *string  `json:"photo" validate:"omitempty,url"`
}

type ListingResponse struct {
	ID          uint      `json:"id"`
	Owner       string    `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Price       float64   `json:"price"`
	Amenities   string    `json:"amenities"`
	Photo       string    `json:"photo"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newListingResponse(listing models.Listing) ListingResponse {
	return ListingResponse{
		ID:          listing.ID,
		Owner:       listing.Owner.Username,
		Title:       listing.Title,
		Description: listing.Description,
		Address:     listing.Address,
		City:        listing.City,
		Country:     listing.Country,
		Price:       listing.Price,
		Amenities:   listing.Amenities,
		Photo:       listing.Photo,
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	}
}

var (
	listingSearchColumns = []string{"title", "city", "country", "amenities"}
	listingOrderColumns  = map[string]string{
		"price":      "price",
		"created_at": "created_at",
	}
)

const listingDefaultOrder = "created_at DESC"

func ListListings(ctx iris.Context) {
	term := ctx.URLParamDefault("search", "")
	ordering := ctx.URLParamDefault("ordering", "")

	base := func() *gorm.DB {
		return applySearch(storage.DB.Model(&models.Listing{}), term, listingSearchColumns)
	}

	q := applyOrdering(base().Preload("Owner"), ordering, listingOrderColumns, listingDefaultOrder)
	q, page, perPage := applyPage(ctx, q)

	var listings []models.Listing
	if err := q.Find(&listings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	responses := make([]ListingResponse, 0, len(listings))
	for _, listing := range listings {
		responses = append(responses, newListingResponse(listing))
	}

	if page > 0 {
		var total int64
		base().Count(&total)
		utils.JSONPage(ctx, responses, page, perPage, total)
		return
	}
	ctx.JSON(responses)
}

func CreateListing(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateListingInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	listing := models.Listing{
		OwnerID:     claims.ID,
		Title:       input.Title,
		Description: input.Description,
		Address:     input.Address,
		City:        input.City,
		Country:     input.Country,
		Price:       input.Price,
		Amenities:   input.Amenities,
		Photo:       input.Photo,
	}

	if result := storage.DB.Create(&listing); result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Preload("Owner").Find(&listing, listing.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(newListingResponse(listing))
}

func GetListing(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var listing models.Listing
	listingExists := storage.DB.Preload("Owner").Find(&listing, id)

	if listingExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(newListingResponse(listing))
}

func UpdateListing(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var listing models.Listing
	listingExists := storage.DB.Preload("Owner").Find(&listing, id)

	if listingExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if !canModifyListing(claims.ID, &listing) {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	var input UpdateListingInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Title != nil {
		listing.Title = *input.Title
	}
	if input.Description != nil {
		listing.Description = *input.Description
	}
	if input.Address != nil {
		listing.Address = *input.Address
	}
	if input.City != nil {
		listing.City = *input.City
	}
	if input.Country != nil {
		listing.Country = *input.Country
	}
	if input.Price != nil {
		listing.Price = *input.Price
	}
	if input.Amenities != nil {
		listing.Amenities = *input.Amenities
	}
	if input.Photo != nil {
		listing.Photo = *input.Photo
	}

	if result := storage.DB.Omit("Owner").Save(&listing); result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(newListingResponse(listing))
}

// DeleteListing removes the listing together with every booking and review
// that references it, in one transaction.
func DeleteListing(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var listing models.Listing
	listingExists := storage.DB.Find(&listing, id)

	if listingExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if !canModifyListing(claims.ID, &listing) {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", listing.ID).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", listing.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Listing{}, listing.ID).Error
	})
	if err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", err.Error(), ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}
