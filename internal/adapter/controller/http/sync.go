package httpctrl

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	dm "github.com/papercircuit/elektronVersion/internal/domain/listing"
)

type CycleRunner interface {
	RunCycle(ctx context.Context) (dm.Set, error)
}

type Reconfigurer interface {
	Reconfigure(interval time.Duration)
	Interval() time.Duration
}

// SyncController exposes the manual controls the original app had over IPC:
// trigger a cycle now, change the fetch interval at runtime.
type SyncController struct {
	Run   CycleRunner
	Sched Reconfigurer
	Auth  gin.HandlerFunc
}

func NewSyncController(run CycleRunner, sched Reconfigurer, auth gin.HandlerFunc) *SyncController {
	return &SyncController{Run: run, Sched: sched, Auth: auth}
}

func (c *SyncController) Register(r *gin.Engine) {
	g := r.Group("/sync")
	if c.Auth != nil {
		g.Use(c.Auth)
	}
	g.POST("", c.trigger)
	g.PUT("/interval", c.reconfigure)
	g.GET("/interval", c.interval)
}

func (c *SyncController) trigger(ctx *gin.Context) {
	set, err := c.Run.RunCycle(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"listings": len(set)})
}

// PUT /sync/interval?every=30m
func (c *SyncController) reconfigure(ctx *gin.Context) {
	raw := ctx.Query("every")
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "every must be a positive duration, e.g. 30m"})
		return
	}
	c.Sched.Reconfigure(d)
	ctx.JSON(http.StatusOK, gin.H{"interval": d.String()})
}

func (c *SyncController) interval(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"interval": c.Sched.Interval().String()})
}
