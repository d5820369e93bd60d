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

const dateLayout = "2006-01-02"

type CreateBookingInput struct {
	ListingID uint   `json:"listingID" validate:"required"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
}

type UpdateBookingInput struct {
	StartDate *string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

type BookingResponse struct {
	ID        uint      `json:"id"`
	Listing   string    `json:"listing"`
	Guest     string    `json:"guest"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newBookingResponse(booking models.Booking) BookingResponse {
	return BookingResponse{
		ID:        booking.ID,
		Listing:   booking.Listing.Title,
		Guest:     booking.Guest.Username,
		StartDate: booking.StartDate.Format(dateLayout),
		EndDate:   booking.EndDate.Format(dateLayout),
		Status:    booking.Status,
		CreatedAt: booking.CreatedAt,
		UpdatedAt: booking.UpdatedAt,
	}
}

var (
	bookingSearchColumns = []string{`"Listing".title`, `"Guest".username`, "bookings.status"}
	bookingOrderColumns  = map[string]string{
		"start_date": "bookings.start_date",
		"created_at": "bookings.created_at",
	}
)

const bookingDefaultOrder = "bookings.created_at DESC"

func ListBookings(ctx iris.Context) {
	term := ctx.URLParamDefault("search", "")
	ordering := ctx.URLParamDefault("ordering", "")

	base := func() *gorm.DB {
		return applySearch(
			storage.DB.Model(&models.Booking{}).Joins("Listing").Joins("Guest"),
			term, bookingSearchColumns)
	}

	q := applyOrdering(base(), ordering, bookingOrderColumns, bookingDefaultOrder)
	q, page, perPage := applyPage(ctx, q)

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	responses := make([]BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		responses = append(responses, newBookingResponse(booking))
	}

	if page > 0 {
		var total int64
		base().Count(&total)
		utils.JSONPage(ctx, responses, page, perPage, total)
		return
	}
	ctx.JSON(responses)
}

func CreateBooking(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateBookingInput
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

	startDate, _ := time.Parse(dateLayout, input.StartDate)
	endDate, _ := time.Parse(dateLayout, input.EndDate)

	booking := models.Booking{
		ListingID: listing.ID,
		GuestID:   claims.ID,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    "pending",
	}

	if result := storage.DB.Create(&booking); result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Preload("Listing").Preload("Guest").Find(&booking, booking.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(newBookingResponse(booking))
}

func GetBooking(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var booking models.Booking
	bookingExists := storage.DB.Preload("Listing").Preload("Guest").Find(&booking, id)

	if bookingExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(newBookingResponse(booking))
}

func UpdateBooking(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var booking models.Booking
	bookingExists := storage.DB.Preload("Listing").Preload("Guest").Find(&booking, id)

	if bookingExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if !canModifyBooking(claims.ID, &booking) {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	var input UpdateBookingInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.StartDate != nil {
		startDate, _ := time.Parse(dateLayout, *input.StartDate)
		booking.StartDate = startDate
	}
	if input.EndDate != nil {
		endDate, _ := time.Parse(dateLayout, *input.EndDate)
		booking.EndDate = endDate
	}

	if result := storage.DB.Omit("Listing", "Guest").Save(&booking); result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(newBookingResponse(booking))
}

func DeleteBooking(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var booking models.Booking
	bookingExists := storage.DB.Preload("Listing").Find(&booking, id)

	if bookingExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if !canModifyBooking(claims.ID, &booking) {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	if result := storage.DB.Delete(&models.Booking{}, booking.ID); result.Error != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", result.Error.Error(), ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}
