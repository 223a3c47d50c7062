package http

import (
	"net/http"
	"strconv"

	"ucycle/pkg/logger"
	"ucycle/services/giveaway/internal/usecase"

	"github.com/gin-gonic/gin"
)

const defaultRadiusKm = 10

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

type CreatePostRequest struct {
	ImageBase64 string   `json:"image_base64" binding:"required"`
	Images      []string `json:"images"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	ExpiryHours *int     `json:"expiry_hours"`
	Latitude    *float64 `json:"latitude" binding:"required"`
	Longitude   *float64 `json:"longitude" binding:"required"`
}

type AnalyzeImageRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

// CreatePost godoc
// @Summary      Create a giveaway post
// @Description  Screens every image, fuzzes the location and stores the post as active. Additional images are screened after the primary one, in order.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        request body CreatePostRequest true "New post"
// @Success      201  {object}  entity.Post
// @Failure      400  {object}  map[string]interface{}
// @Failure      429  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	input := usecase.SubmitInput{
		PrimaryImage: req.ImageBase64,
		Images:       req.Images,
		Title:        req.Title,
		Category:     req.Category,
		Description:  req.Description,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
	}
	if req.ExpiryHours != nil {
		input.ExpiryHours = *req.ExpiryHours
	}

	post, err := h.postUseCase.Submit(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err, "Post")
		return
	}

	c.JSON(http.StatusCreated, post)
}

// ListPosts godoc
// @Summary      List posts
// @Description  Expires overdue posts, then lists active posts (or all, with include_expired). Optional category and distance filters.
// @Tags         posts
// @Produce      json
// @Param        include_expired query bool false "Include collected, expired and removed posts"
// @Param        category query string false "Category filter"
// @Param        near_lat query number false "Latitude of the search centre"
// @Param        near_lng query number false "Longitude of the search centre"
// @Param        radius_km query number false "Search radius in km (default 10)"
// @Success      200  {array}   entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	input := usecase.ListInput{Category: c.Query("category")}

	if raw := c.Query("include_expired"); raw != "" {
		includeExpired, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "include_expired must be a boolean")
			return
		}
		input.IncludeExpired = includeExpired
	}

	latRaw, lngRaw := c.Query("near_lat"), c.Query("near_lng")
	if latRaw != "" || lngRaw != "" {
		lat, errLat := strconv.ParseFloat(latRaw, 64)
		lng, errLng := strconv.ParseFloat(lngRaw, 64)
		if errLat != nil || errLng != nil {
			badRequest(c, "near_lat and near_lng must both be numbers")
			return
		}
		radius := float64(defaultRadiusKm)
		if raw := c.Query("radius_km"); raw != "" {
			r, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				badRequest(c, "radius_km must be a number")
				return
			}
			radius = r
		}
		input.Near = &usecase.NearFilter{Latitude: lat, Longitude: lng, RadiusKm: radius}
	}

	posts, err := h.postUseCase.List(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err, "Post")
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GetPost godoc
// @Summary      Get post by ID
// @Description  Returns the post in any status. Expiry is not re-evaluated here.
// @Tags         posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postUseCase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// MarkCollected godoc
// @Summary      Mark a post as collected
// @Tags         posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /posts/{id}/collected [patch]
func (h *PostHandler) MarkCollected(c *gin.Context) {
	if err := h.postUseCase.MarkCollected(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "Post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post marked as collected"})
}

// OpenGraph godoc
// @Summary      Share preview metadata
// @Tags         posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.OpenGraph
// @Failure      404  {object}  map[string]string
// @Router       /og/{id} [get]
func (h *PostHandler) OpenGraph(c *gin.Context) {
	og, err := h.postUseCase.OpenGraph(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Post")
		return
	}

	c.JSON(http.StatusOK, og)
}

// AnalyzeImage godoc
// @Summary      Suggest listing details for a photo
// @Description  Drafts a title, category and description. Falls back to a generic suggestion when the model is unavailable.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        request body AnalyzeImageRequest true "Photo"
// @Success      200  {object}  safety.Suggestion
// @Failure      400  {object}  map[string]interface{}
// @Router       /analyze-image [post]
func (h *PostHandler) AnalyzeImage(c *gin.Context) {
	var req AnalyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	suggestion, err := h.postUseCase.AnalyzeImage(c.Request.Context(), req.ImageBase64)
	if err != nil {
		respondError(c, h.logger, err, "Image")
		return
	}

	c.JSON(http.StatusOK, suggestion)
}
