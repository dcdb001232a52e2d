package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/myaralbdany4-glitch/MoodLens/internal/apierr"
	"github.com/myaralbdany4-glitch/MoodLens/internal/clients/openai"
	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
	"github.com/myaralbdany4-glitch/MoodLens/internal/repos"
	"github.com/myaralbdany4-glitch/MoodLens/internal/types"
)

// InferenceClient is the delegated-intelligence boundary: prompt in,
// structured result out. Emotion inference is never local.
type InferenceClient interface {
	ChatCompletionJSON(ctx context.Context, system string, user string, images []openai.ImageInput) (string, error)
}

// Transcriber converts an audio payload to text with a language hint.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte, language string) (string, error)
}

// AnalysisResult is what the gateway hands back to the HTTP layer after a
// successful provider call and persistence write.
type AnalysisResult struct {
	SessionID int64               `json:"sessionId"`
	Analysis  *types.MoodAnalysis `json:"analysis"`
}

type AnalysisService interface {
	AnalyzeFace(ctx context.Context, userID string, imageData string) (*AnalysisResult, error)
	AnalyzeVoice(ctx context.Context, userID string, filename string, audio []byte) (*AnalysisResult, error)
}

type analysisService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessionRepo repos.MoodSessionRepo
	ai          InferenceClient
	transcriber Transcriber
}

func NewAnalysisService(
	db *gorm.DB,
	log *logger.Logger,
	sessionRepo repos.MoodSessionRepo,
	ai InferenceClient,
	transcriber Transcriber,
) AnalysisService {
	serviceLog := log.With("service", "AnalysisService")
	return &analysisService{
		db:          db,
		log:         serviceLog,
		sessionRepo: sessionRepo,
		ai:          ai,
		transcriber: transcriber,
	}
}

func (as *analysisService) AnalyzeFace(ctx context.Context, userID string, imageData string) (*AnalysisResult, error) {
	if strings.TrimSpace(imageData) == "" {
		return nil, apierr.Validation("image_required", errors.New("صورة مطلوبة للتحليل"))
	}

	content, err := as.ai.ChatCompletionJSON(ctx, faceAnalysisSystemPrompt, faceAnalysisUserPrompt, []openai.ImageInput{
		{ImageURL: imageData},
	})
	if err != nil {
		return nil, apierr.Upstream("face_analysis_failed", err)
	}

	analysis, err := parseMoodAnalysis(content)
	if err != nil {
		return nil, apierr.Upstream("face_analysis_unparseable", err)
	}

	session, err := as.persist(ctx, userID, types.SessionTypeFace, analysis)
	if err != nil {
		return nil, err
	}

	as.log.Info("face analysis stored", "user_id", userID, "session_id", session.ID, "mood_score", analysis.MoodScore)
	return &AnalysisResult{SessionID: session.ID, Analysis: analysis}, nil
}

func (as *analysisService) AnalyzeVoice(ctx context.Context, userID string, filename string, audio []byte) (*AnalysisResult, error) {
	if len(audio) == 0 {
		return nil, apierr.Validation("audio_required", errors.New("ملف صوتي مطلوب للتحليل"))
	}

	transcript, err := as.transcriber.Transcribe(ctx, filename, audio, types.DefaultPreferredLanguage)
	if err != nil {
		return nil, apierr.Upstream("transcription_failed", err)
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, apierr.Upstream("empty_transcript", errors.New("transcription returned no text"))
	}

	userPrompt := fmt.Sprintf(voiceAnalysisUserPromptFmt, transcript)
	content, err := as.ai.ChatCompletionJSON(ctx, voiceAnalysisSystemPrompt, userPrompt, nil)
	if err != nil {
		return nil, apierr.Upstream("voice_analysis_failed", err)
	}

	analysis, err := parseMoodAnalysis(content)
	if err != nil {
		return nil, apierr.Upstream("voice_analysis_unparseable", err)
	}
	if analysis.Transcription == "" {
		analysis.Transcription = transcript
	}

	session, err := as.persist(ctx, userID, types.SessionTypeVoice, analysis)
	if err != nil {
		return nil, err
	}

	as.log.Info("voice analysis stored", "user_id", userID, "session_id", session.ID, "mood_score", analysis.MoodScore)
	return &AnalysisResult{SessionID: session.ID, Analysis: analysis}, nil
}

// persist is the single write of an analysis: the row lands atomically with
// its full payload or not at all.
func (as *analysisService) persist(ctx context.Context, userID string, sessionType string, analysis *types.MoodAnalysis) (*types.MoodSession, error) {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return nil, apierr.Internal("analysis_encode_failed", err)
	}
	emotionsJSON, err := json.Marshal(analysis.Emotions)
	if err != nil {
		return nil, apierr.Internal("emotions_encode_failed", err)
	}
	recommendationsJSON, err := json.Marshal(analysis.Recommendations)
	if err != nil {
		return nil, apierr.Internal("recommendations_encode_failed", err)
	}

	confidence := analysis.Confidence
	session := &types.MoodSession{
		UserID:            userID,
		SessionType:       sessionType,
		MoodAnalysis:      datatypes.JSON(analysisJSON),
		EmotionsDetected:  datatypes.JSON(emotionsJSON),
		ConfidenceScore:   &confidence,
		AIRecommendations: datatypes.JSON(recommendationsJSON),
	}
	if _, err := as.sessionRepo.Insert(ctx, as.db, session); err != nil {
		return nil, apierr.Internal("session_persist_failed", err)
	}
	return session, nil
}

// parseMoodAnalysis is strict: the provider content must already be the
// expected structure with in-range values. No coercion, no fence stripping.
func parseMoodAnalysis(content string) (*types.MoodAnalysis, error) {
	var analysis types.MoodAnalysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		return nil, fmt.Errorf("parse analysis content: %w", err)
	}
	if analysis.MoodScore < 1 || analysis.MoodScore > 10 {
		return nil, fmt.Errorf("moodScore %d out of range [1,10]", analysis.MoodScore)
	}
	if analysis.Confidence < 0 || analysis.Confidence > 100 {
		return nil, fmt.Errorf("confidence %v out of range [0,100]", analysis.Confidence)
	}
	for _, emotion := range analysis.Emotions {
		if emotion.Confidence < 0 || emotion.Confidence > 100 {
			return nil, fmt.Errorf("emotion %q confidence %v out of range [0,100]", emotion.Name, emotion.Confidence)
		}
	}
	return &analysis, nil
}
