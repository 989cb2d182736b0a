package core

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	sm "github.com/Arushi-290602/Captial-Asset-Price-Management/service/models"
)

const (
	DefaultAddr   = ":8080"
	AllowedOrigin = "http://localhost:3000"
)

func GetHttpServer(sc ServiceContext, addr string) *http.Server {
	if addr == "" {
		addr = DefaultAddr
	}

	engine := gin.Default()

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/api/ping", ping)
	engine.GET("/api/analysis/symbols", getAnalysisSettings)
	engine.GET("/api/analysis", func(c *gin.Context) { runAnalysisByGet(c, sc) })
	engine.POST("/api/analysis", func(c *gin.Context) { runAnalysisByPost(c, sc) })

	// several symbols at the free tier rate limit take minutes, not seconds
	server := &http.Server{
		Addr:           addr,
		Handler:        engine,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   5 * time.Minute,
		MaxHeaderBytes: 1 << 20,
	}

	return server
}

func ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func getAnalysisSettings(c *gin.Context) {
	res := sm.GetAnalysisSettingsResources()
	c.JSON(http.StatusOK, sm.GetServiceResponseOk(&res))
}

func runAnalysisByGet(c *gin.Context, sc ServiceContext) {
	req := sm.AnalysisRequest{Years: sm.DefaultLookbackYears}

	if symbols := c.Query("symbols"); symbols != "" {
		req.Symbols = strings.Split(symbols, ",")
	}

	if years := c.Query("years"); years != "" {
		n, err := strconv.Atoi(years)
		if err != nil {
			c.JSON(http.StatusBadRequest, sm.GetServiceResponseError("invalid_request", "years must be a whole number"))
			return
		}
		req.Years = n
	}

	runAnalysis(c, sc, req)
}

func runAnalysisByPost(c *gin.Context, sc ServiceContext) {
	var req sm.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, sm.GetServiceResponseError("invalid_request", err.Error()))
		return
	}

	if req.Years == 0 {
		req.Years = sm.DefaultLookbackYears
	}

	runAnalysis(c, sc, req)
}

func runAnalysis(c *gin.Context, sc ServiceContext, req sm.AnalysisRequest) {
	if len(req.Symbols) == 0 {
		req.Symbols = sm.GetAnalysisSettingsResources().DefaultSymbols
	}

	rc := sc.WithContext(c.Request.Context())
	rc.Logger = rc.logger().With(zap.String("clientIp", c.ClientIP()))

	res, err := rc.RunAnalysis(req.Symbols, req.Years)
	if err != nil {
		status, kind := errorStatus(err)
		if status == http.StatusInternalServerError {
			rc.logger().Error("analysis failed", zap.Error(err))
		}
		c.JSON(status, sm.GetServiceResponseError(kind, err.Error()))
		return
	}

	c.JSON(http.StatusOK, sm.GetServiceResponseOk(res))
}

// errorStatus maps a failed analysis onto an http status and an error kind for the body
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, ErrNoOverlappingData):
		return http.StatusUnprocessableEntity, "no_overlapping_data"
	case errors.Is(err, ErrZeroBaselinePrice):
		return http.StatusUnprocessableEntity, "zero_baseline_price"
	case errors.Is(err, ErrZeroPrice):
		return http.StatusUnprocessableEntity, "zero_price"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
