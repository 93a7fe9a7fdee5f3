package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/medirec/internal/logging"
	"github.com/Skufu/medirec/internal/metadata"
	"github.com/Skufu/medirec/internal/model"
	"github.com/Skufu/medirec/internal/predict"
	"github.com/Skufu/medirec/internal/textnorm"
)

// App is everything the handlers need. It is built once at startup and only
// read afterwards.
type App struct {
	Predictor *predict.Service
	Metadata  *metadata.Store
	ModelInfo *model.Metadata
	DB        HealthChecker
	Log       *logrus.Entry
}

type PredictRequest struct {
	Symptoms string `json:"symptoms" form:"symptoms"`
}

type Recommendation struct {
	Disease     string   `json:"disease"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Precautions []string `json:"precautions"`
	Medications []string `json:"medications"`
	Diet        []string `json:"diet"`
	Workout     []string `json:"workout"`
	Symptoms    string   `json:"symptoms,omitempty"`
}

const consultFallback = "Consult a healthcare professional for specific guidance."

var commonSymptoms = []string{
	"itching", "cough", "high_fever", "headache", "stomach_pain", "vomiting",
	"fatigue", "chest_pain", "nausea", "dizziness", "back_pain", "joint_pain",
}

func setupRouter(app *App, staticRoot string, maxBody int64) *gin.Engine {
	router := gin.New()
	router.Use(
		requestLogger(logging.OrDiscard(app.Log).WithField("component", "http")),
		gin.Recovery(),
		limitBodySize(maxBody),
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.Static("/static", staticRoot)
	router.StaticFile("/", filepath.Join(staticRoot, "index.html"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", app.ready)

	api := router.Group("/api")
	api.POST("/predict", app.predict)
	api.GET("/diseases/:name", app.disease)
	api.GET("/symptoms/common", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"symptoms": commonSymptoms})
	})
	api.GET("/model", app.modelInfo)

	return router
}

func (a *App) ready(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok", "model": "loaded", "db": "disabled"}

	if !a.Predictor.Available() {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["model"] = "unavailable"
	}

	if a.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		body["db"] = "ok"
		if err := a.DB.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["db"] = fmt.Sprintf("unhealthy: %v", err)
		}
	}

	c.JSON(status, body)
}

func (a *App) predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	symptoms := strings.TrimSpace(req.Symptoms)
	if symptoms == "" || strings.EqualFold(symptoms, "symptoms") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please enter your symptoms to get a prediction"})
		return
	}

	res := a.Predictor.Predict(symptoms)
	switch res.Status {
	case predict.StatusUnavailable:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model not available, train the model first"})
		return
	case predict.StatusFailed:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to predict, please check your symptoms and try again"})
		return
	}

	rec := a.recommend(res.Label)
	rec.Symptoms = symptoms
	c.JSON(http.StatusOK, rec)
}

func (a *App) disease(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	info := a.Metadata.Lookup(name)
	if !info.Found() {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no information about %q", name)})
		return
	}
	c.JSON(http.StatusOK, a.recommend(textnorm.Title(name)))
}

func (a *App) modelInfo(c *gin.Context) {
	if a.ModelInfo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model not available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"createdAt":    a.ModelInfo.CreatedAt,
		"labels":       len(a.ModelInfo.Labels),
		"features":     a.ModelInfo.Features,
		"trainRecords": a.ModelInfo.TrainRecords,
		"trainedRows":  a.ModelInfo.TrainedRows,
		"accuracy":     a.ModelInfo.Accuracy,
	})
}

// recommend joins the metadata tables for disease, filling gaps from the
// disease category.
func (a *App) recommend(disease string) Recommendation {
	info := a.Metadata.Lookup(disease)
	category := metadata.Categorize(disease)
	guide := metadata.Knowledge(category)

	rec := Recommendation{
		Disease:     disease,
		Category:    string(category),
		Description: fmt.Sprintf("Information about %s is being updated in our database.", disease),
		Precautions: orFallback(info.Precautions, guide.Precautions),
		Medications: orFallback(info.Medications, guide.Medications),
		Diet:        orFallback(info.Diet, []string{consultFallback}),
		Workout:     orFallback(info.Workout, guide.Exercises),
	}
	if info.Description.Found && len(info.Description.Values) > 0 {
		rec.Description = info.Description.Values[0]
	}
	if info.Treatments.Found && len(info.Treatments.Values) > 0 {
		rec.Medications = append([]string{"Enhanced Treatment: " + info.Treatments.Values[0]}, rec.Medications...)
	}
	return rec
}

func orFallback(f metadata.Field, fallback []string) []string {
	if f.Found && len(f.Values) > 0 {
		return f.Values
	}
	return fallback
}
