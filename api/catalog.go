package api

import (
	"net/http"

	"github.com/bromosky/aventra/internal/domain"
	"github.com/bromosky/aventra/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the JSON used by the booking form's price preview.
type CatalogHandler struct {
	service booking.BookingUseCase
}

type packagesResponse struct {
	Packages  []domain.Package `json:"packages"`
	DPPercent int              `json:"dp_percent"`
}

func NewCatalogHandler(service booking.BookingUseCase) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) Register(router *gin.RouterGroup) {
	router.GET("/packages", h.packages)
	router.GET("/health", h.health)
}

func (h *CatalogHandler) packages(c *gin.Context) {
	c.JSON(http.StatusOK, packagesResponse{
		Packages:  h.service.Packages(),
		DPPercent: h.service.DepositPercent(),
	})
}

func (h *CatalogHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
