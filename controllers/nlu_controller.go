package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rashedsumon/ai-receptionist/metrics"
	"github.com/rashedsumon/ai-receptionist/nlu"
)

type NLUController struct {
	nlu *nlu.HybridNLU
}

func NewNLUController(hybrid *nlu.HybridNLU) *NLUController {
	return &NLUController{
		nlu: hybrid,
	}
}

type predictRequest struct {
	Text string `json:"text" binding:"required"`
}

// Predict classifies a single piece of text
func (nc *NLUController) Predict(c *gin.Context) {
	var req predictRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	prediction := nc.nlu.PredictIntent(req.Text)
	metrics.RecordPrediction(string(prediction.Label), string(prediction.Source))

	c.JSON(http.StatusOK, prediction)
}

// Train retrains the classifier from an uploaded CSV. The optional
// text_column and label_column form fields override column discovery.
func (nc *NLUController) Train(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing dataset file",
			"details": err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to read dataset file",
			"details": err.Error(),
		})
		return
	}
	defer file.Close()

	var cols *nlu.ColumnOptions
	textCol, labelCol := c.PostForm("text_column"), c.PostForm("label_column")
	if textCol != "" || labelCol != "" {
		cols = &nlu.ColumnOptions{}
		if textCol != "" {
			cols.TextColumns = []string{textCol}
		}
		if labelCol != "" {
			cols.LabelColumns = []string{labelCol}
		}
	}

	result, err := nc.nlu.TrainFromReader(file, cols)
	metrics.RecordTraining(result.OK)
	if err != nil {
		c.JSON(trainingStatus(err), gin.H{
			"ok":      result.OK,
			"message": result.Message,
			"error":   "Training failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Status reports whether a classifier is loaded and what it knows
func (nc *NLUController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, nc.nlu.Status())
}

// trainingStatus maps dataset problems to 422 and everything else to 500.
func trainingStatus(err error) int {
	switch {
	case errors.Is(err, nlu.ErrColumnsNotFound),
		errors.Is(err, nlu.ErrNoExamples),
		errors.Is(err, nlu.ErrSingleClass),
		errors.Is(err, nlu.ErrEmptyVocabulary):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
