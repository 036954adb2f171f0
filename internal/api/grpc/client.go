package grpcapi

import (
	"context"

	"google.golang.org/grpc"

	"github.com/wanghonghua666/AI-CALENDAR/internal/models"
)

// Client calls SpeechPostProcessor over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Process sends one transcript for post-processing.
func (c *Client) Process(ctx context.Context, req *ProcessRequest, opts ...grpc.CallOption) (*models.TranscriptProcessed, error) {
	out := new(models.TranscriptProcessed)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, ProcessMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
