package routes

import "stayhub-server/models"

// Reads are public; these predicates gate update and delete only. A booking
// or review can be modified by the guest who wrote it or by the owner of the
// listing it refers to, so hosts can clear out stale bookings and reviews on
// their own listings.

func canModifyListing(userID uint, listing *models.Listing) bool {
	return listing.OwnerID == userID
}

func canModifyBooking(userID uint, booking *models.Booking) bool {
	return booking.GuestID == userID || booking.Listing.OwnerID == userID
}

func canModifyReview(userID uint, review *models.Review) bool {
	return review.GuestID == userID || review.Listing.OwnerID == userID
}
