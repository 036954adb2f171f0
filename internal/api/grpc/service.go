// Package grpcapi exposes the post-processing pipeline as the gRPC service
// calendar.speech.v1.SpeechPostProcessor.
package grpcapi

import (
	"context"

	"google.golang.org/grpc"

	"github.com/wanghonghua666/AI-CALENDAR/internal/models"
)

// Service and method names.
const (
	ServiceName   = "calendar.speech.v1.SpeechPostProcessor"
	ProcessMethod = "/" + ServiceName + "/Process"
)

// ProcessRequest is a transcript to post-process.
type ProcessRequest struct {
	Text          string  `json:"text"`
	Confidence    float64 `json:"confidence"`
	ReferenceDate string  `json:"referenceDate,omitempty"`
	InteractionID string  `json:"interactionId,omitempty"`
	TenantID      string  `json:"tenantId,omitempty"`
	SegmentID     string  `json:"segmentId,omitempty"`
}

// SpeechPostProcessorServer is the server API.
type SpeechPostProcessorServer interface {
	Process(ctx context.Context, req *ProcessRequest) (*models.TranscriptProcessed, error)
}

// ServiceDesc describes the service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SpeechPostProcessorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Process",
			Handler:    processHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "calendar/speech/v1/postprocess",
}

func processHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ProcessRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SpeechPostProcessorServer).Process(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ProcessMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SpeechPostProcessorServer).Process(ctx, req.(*ProcessRequest))
	}
	return interceptor(ctx, in, info, handler)
}
