package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	grpcapi "github.com/wanghonghua666/AI-CALENDAR/internal/api/grpc"
)

var sendOpts struct {
	server        string
	confidence    float64
	reference     string
	interactionId string
	tenantId      string
	timeout       time.Duration
}

var sendCmd = &cobra.Command{
	Use:     "send text...",
	Short:   "Send a transcript to a running service over gRPC",
	Args:    cobra.MinimumNArgs(1),
	Example: `  speechctl send --server localhost:50052 明天下午三点开会`,
	RunE:    runSend,
}

func init() {
	f := sendCmd.Flags()
	f.StringVar(&sendOpts.server, "server", "localhost:50052", "gRPC server address")
	f.Float64Var(&sendOpts.confidence, "confidence", 0.9, "Recognizer confidence of the transcript")
	f.StringVar(&sendOpts.reference, "reference", "", "Reference date (YYYY-MM-DD or RFC 3339)")
	f.StringVar(&sendOpts.interactionId, "interaction", "", "Interaction ID (generated when empty)")
	f.StringVar(&sendOpts.tenantId, "tenant", "tenant-demo", "Tenant ID")
	f.DurationVar(&sendOpts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	conn, err := grpc.NewClient(sendOpts.server, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connect %s: %w", sendOpts.server, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), sendOpts.timeout)
	defer cancel()

	out, err := grpcapi.NewClient(conn).Process(ctx, &grpcapi.ProcessRequest{
		Text:          strings.Join(args, " "),
		Confidence:    sendOpts.confidence,
		ReferenceDate: sendOpts.reference,
		InteractionID: sendOpts.interactionId,
		TenantID:      sendOpts.tenantId,
	})
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), out)
}

