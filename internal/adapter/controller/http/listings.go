package httpctrl

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	listingsjson "github.com/papercircuit/elektronVersion/internal/adapter/presenter/listings"
	dm "github.com/papercircuit/elektronVersion/internal/domain/listing"
)

type ListingsController struct {
	Snap *LatestSnapshot
}

func NewListingsController(snap *LatestSnapshot) *ListingsController {
	return &ListingsController{Snap: snap}
}

func (c *ListingsController) Register(r *gin.Engine) {
	r.GET("/listings", c.all)
}

// GET /listings — latest reconciled set; ?make=Fender&model=Jazzmaster narrows it.
func (c *ListingsController) all(ctx *gin.Context) {
	set, ok := c.Snap.Get()
	if !ok {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "no cycle has completed yet"})
		return
	}

	mk := strings.TrimSpace(ctx.Query("make"))
	md := strings.TrimSpace(ctx.Query("model"))
	if mk != "" || md != "" {
		filtered := make(dm.Set, 0, len(set))
		for _, l := range set {
			if mk != "" && !strings.EqualFold(l.Make, mk) {
				continue
			}
			if md != "" && !strings.EqualFold(l.Model, md) {
				continue
			}
			filtered = append(filtered, l)
		}
		set = filtered
	}

	ctx.JSON(http.StatusOK, gin.H{
		"count":    len(set),
		"listings": listingsjson.Rows(set),
	})
}
