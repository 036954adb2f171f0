package grpcapi

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/wanghonghua666/AI-CALENDAR/internal/app"
	"github.com/wanghonghua666/AI-CALENDAR/internal/models"
	"github.com/wanghonghua666/AI-CALENDAR/internal/service/transcript"
)

// Server implements SpeechPostProcessorServer on top of the transcript
// handler.
type Server struct {
	app *app.Application
}

// Register adds the service to g.
func Register(g *grpc.Server, application *app.Application) {
	g.RegisterService(&ServiceDesc, &Server{app: application})
}

// Process runs one transcript through the pipeline.
func (s *Server) Process(ctx context.Context, req *ProcessRequest) (*models.TranscriptProcessed, error) {
	ref, err := transcript.ParseReference(req.ReferenceDate, s.app.Processor.Location())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	out, err := s.app.Transcripts.Process(ctx, transcript.Request{
		InteractionID: req.InteractionID,
		TenantID:      req.TenantID,
		SegmentID:     req.SegmentID,
		Text:          req.Text,
		Confidence:    req.Confidence,
		Reference:     ref,
		Source:        transcript.SourceGRPC,
	})
	if err != nil {
		if errors.Is(err, transcript.ErrTextTooLong) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
