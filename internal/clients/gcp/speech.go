package gcp

import (
	"context"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
)

// SpeechService transcribes short browser-recorded clips via Google
// Speech-to-Text. It satisfies the same Transcriber contract as the OpenAI
// client and is selected with SPEECH_PROVIDER=google.
type SpeechService interface {
	Transcribe(ctx context.Context, filename string, audio []byte, language string) (string, error)
	Close() error
}

type speechService struct {
	log    *logger.Logger
	client *speech.Client
}

func NewSpeechService(log *logger.Logger) (SpeechService, error) {
	serviceLog := log.With("client", "SpeechService")

	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	ctx := context.Background()

	var c *speech.Client
	var err error
	if creds != "" && strings.HasPrefix(creds, "{") {
		c, err = speech.NewClient(ctx, option.WithCredentialsJSON([]byte(creds)))
	} else if creds != "" {
		c, err = speech.NewClient(ctx, option.WithCredentialsFile(creds))
	} else {
		c, err = speech.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("init speech client: %w", err)
	}

	return &speechService{log: serviceLog, client: c}, nil
}

func (s *speechService) Transcribe(ctx context.Context, filename string, audio []byte, language string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio payload")
	}
	if language == "" {
		language = "ar"
	}

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   encodingForFilename(filename),
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}

	resp, err := s.client.Recognize(ctx, req)
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.InvalidArgument {
			return "", fmt.Errorf("speech recognize rejected input: %w", err)
		}
		return "", fmt.Errorf("speech recognize: %w", err)
	}

	var b strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(result.Alternatives[0].Transcript)
	}
	return strings.TrimSpace(b.String()), nil
}

func (s *speechService) Close() error {
	return s.client.Close()
}

// Browser MediaRecorder clips arrive as webm/ogg opus; wav shows up from
// tests and older clients. Anything else lets the service sniff the header.
func encodingForFilename(filename string) speechpb.RecognitionConfig_AudioEncoding {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".webm"):
		return speechpb.RecognitionConfig_WEBM_OPUS
	case strings.HasSuffix(lower, ".ogg"):
		return speechpb.RecognitionConfig_OGG_OPUS
	case strings.HasSuffix(lower, ".wav"):
		return speechpb.RecognitionConfig_LINEAR16
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}
