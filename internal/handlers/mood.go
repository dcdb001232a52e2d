package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/myaralbdany4-glitch/MoodLens/internal/apierr"
	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
	"github.com/myaralbdany4-glitch/MoodLens/internal/requestdata"
	"github.com/myaralbdany4-glitch/MoodLens/internal/services"
	"github.com/myaralbdany4-glitch/MoodLens/internal/types"
)

// Generic analysis failure messages shown to the user. Anything that is not
// an input validation error surfaces as one of these, with the classified
// code kept for diagnostics.
const (
	faceAnalysisErrMsg  = "خطأ في تحليل الصورة"
	voiceAnalysisErrMsg = "خطأ في تحليل الصوت"
)

type MoodHandler struct {
	log             *logger.Logger
	analysisService services.AnalysisService
	historyService  services.HistoryService
	feedbackService services.FeedbackService
}

func NewMoodHandler(
	log *logger.Logger,
	analysisService services.AnalysisService,
	historyService services.HistoryService,
	feedbackService services.FeedbackService,
) *MoodHandler {
	return &MoodHandler{
		log:             log.With("handler", "MoodHandler"),
		analysisService: analysisService,
		historyService:  historyService,
		feedbackService: feedbackService,
	}
}

func (mh *MoodHandler) AnalyzeFace(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.New("User not found"))
		return
	}

	var req struct {
		ImageData string `json:"imageData"`
	}
	_ = c.ShouldBindJSON(&req)

	result, err := mh.analysisService.AnalyzeFace(c.Request.Context(), rd.UserID, req.ImageData)
	if err != nil {
		mh.respondAnalysisError(c, err, faceAnalysisErrMsg)
		return
	}
	RespondOK(c, result)
}

func (mh *MoodHandler) AnalyzeVoice(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.New("User not found"))
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "audio_required", errors.New("ملف صوتي مطلوب للتحليل"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "audio_unreadable", err)
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "audio_unreadable", err)
		return
	}

	result, err := mh.analysisService.AnalyzeVoice(c.Request.Context(), rd.UserID, fileHeader.Filename, audio)
	if err != nil {
		mh.respondAnalysisError(c, err, voiceAnalysisErrMsg)
		return
	}
	RespondOK(c, result)
}

// respondAnalysisError passes input validation failures through untouched and
// collapses everything else into a generic localized 500.
func (mh *MoodHandler) respondAnalysisError(c *gin.Context, err error, genericMsg string) {
	apiErr := apierr.From(err)
	if apiErr != nil && apiErr.Status == http.StatusBadRequest {
		RespondError(c, apiErr.Status, apiErr.Code, apiErr.Err)
		return
	}
	code := "analysis_failed"
	if apiErr != nil {
		code = apiErr.Code
	}
	mh.log.Error("analysis failed", "code", code, "error", err)
	RespondError(c, http.StatusInternalServerError, code, errors.New(genericMsg))
}

func (mh *MoodHandler) GetHistory(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.New("User not found"))
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := mh.historyService.Recent(c.Request.Context(), rd.UserID, limit)
	if err != nil {
		RespondAPIError(c, err, "history_read_failed")
		return
	}
	if rows == nil {
		rows = []*types.MoodSession{}
	}
	RespondOK(c, rows)
}

func (mh *MoodHandler) SubmitFeedback(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.New("User not found"))
		return
	}

	sessionID, err := strconv.ParseInt(c.Param("sessionId"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", errors.New("session id must be numeric"))
		return
	}

	var req struct {
		Rating int `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	if err := mh.feedbackService.Submit(c.Request.Context(), rd.UserID, sessionID, req.Rating); err != nil {
		RespondAPIError(c, err, "feedback_write_failed")
		return
	}
	RespondOK(c, gin.H{"success": true})
}
