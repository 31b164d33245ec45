package http

import (
	"log/slog"
	"net/http"

	"github.com/cartflow/storefront/internal/domain"
	"github.com/cartflow/storefront/internal/service"
	"github.com/cartflow/storefront/pkg/httputil"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateReviewRequest is the JSON request body for creating a review.
type CreateReviewRequest struct {
	ProductID string   `json:"productId" validate:"required"`
	Comment   string   `json:"comment" validate:"required"`
	Rating    *float64 `json:"rating" validate:"required,gte=0,lte=5"`
}

// UpdateReviewRequest is the JSON request body for changing a review.
type UpdateReviewRequest struct {
	Comment *string  `json:"comment" validate:"omitempty,min=1"`
	Rating  *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

// --- Response DTOs ---

// ReviewResponse acknowledges a review change and carries the product's new
// rating.
type ReviewResponse struct {
	Message string         `json:"message"`
	Review  *domain.Review `json:"review,omitempty"`
	Rating  float64        `json:"rating"`
}

// ReviewCountResponse is returned by the total-reviews endpoint.
type ReviewCountResponse struct {
	TotalReviews int64 `json:"totalReviews"`
}

// --- Handlers ---

// CreateReview handles POST /api/reviews
// @Summary Review a product
// @Tags reviews
// @Accept json
// @Produce json
// @Param request body CreateReviewRequest true "Review to submit"
// @Success 201 {object} ReviewResponse
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Router /api/reviews [post]
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	review, rating, err := h.service.CreateReview(r.Context(), &service.CreateReviewInput{
		ProductID: req.ProductID,
		UserID:    callerFromRequest(r).UserID,
		Comment:   req.Comment,
		Rating:    *req.Rating,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, ReviewResponse{
		Message: "Review created successfully",
		Review:  review,
		Rating:  rating,
	})
}

// UpdateReview handles PATCH /api/reviews/{id}
// @Summary Change a review
// @Description Allowed for the review's author and for admins
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path string true "Review ID"
// @Param request body UpdateReviewRequest true "Fields to change"
// @Success 200 {object} ReviewResponse
// @Failure 403 {object} httputil.ErrorResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Router /api/reviews/{id} [patch]
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathParam(w, r, "id", "review id")
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	review, rating, err := h.service.UpdateReview(r.Context(), callerFromRequest(r), id, domain.ReviewPatch{
		Comment: req.Comment,
		Rating:  req.Rating,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ReviewResponse{
		Message: "Review updated successfully",
		Review:  review,
		Rating:  rating,
	})
}

// DeleteReview handles DELETE /api/reviews/{id}
// @Summary Delete a review
// @Description Allowed for the review's author and for admins
// @Tags reviews
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} ReviewResponse
// @Failure 403 {object} httputil.ErrorResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Router /api/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathParam(w, r, "id", "review id")
	if !ok {
		return
	}

	rating, err := h.service.DeleteReview(r.Context(), callerFromRequest(r), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ReviewResponse{
		Message: "Review deleted successfully",
		Rating:  rating,
	})
}

// ListUserReviews handles GET /api/reviews/user/{userId}
// @Summary List the reviews written by a user
// @Tags reviews
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} domain.Review
// @Router /api/reviews/user/{userId} [get]
func (h *ReviewHandler) ListUserReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.PathParam(w, r, "userId", "user id")
	if !ok {
		return
	}

	reviews, err := h.service.ListUserReviews(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, reviews)
}

// CountReviews handles GET /api/reviews/total-reviews
// @Summary Count all reviews
// @Tags reviews
// @Produce json
// @Success 200 {object} ReviewCountResponse
// @Router /api/reviews/total-reviews [get]
func (h *ReviewHandler) CountReviews(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.CountReviews(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ReviewCountResponse{TotalReviews: n})
}
