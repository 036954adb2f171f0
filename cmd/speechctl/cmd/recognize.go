package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var recognizeOpts struct {
	server        string
	interactionId string
	tenantId      string
	sampleRate    uint32
	timeout       time.Duration
}

var recognizeCmd = &cobra.Command{
	Use:     "recognize file.wav",
	Short:   "Upload a WAV recording to a running service",
	Long:    `Uploads a 16-bit mono PCM WAV recording to POST /v1/speech/recognize and prints the processed transcript.`,
	Args:    cobra.ExactArgs(1),
	Example: `  speechctl recognize --server http://localhost:8080 meeting.wav`,
	RunE:    runRecognize,
}

func init() {
	f := recognizeCmd.Flags()
	f.StringVar(&recognizeOpts.server, "server", "http://localhost:8080", "HTTP server base URL")
	f.StringVar(&recognizeOpts.interactionId, "interaction", "", "Interaction ID (generated when empty)")
	f.StringVar(&recognizeOpts.tenantId, "tenant", "tenant-demo", "Tenant ID")
	f.Uint32Var(&recognizeOpts.sampleRate, "sample-rate", 16000, "Sample rate the service expects")
	f.DurationVar(&recognizeOpts.timeout, "timeout", 60*time.Second, "Request timeout")
	rootCmd.AddCommand(recognizeCmd)
}

func runRecognize(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	info, pcm, err := readWAV(f)
	if err != nil {
		return err
	}
	log.Debug().
		Uint16("channels", info.Channels).
		Uint32("sampleRate", info.SampleRate).
		Uint16("bitsPerSample", info.BitsPerSample).
		Int("bytes", len(pcm)).
		Msg("WAV file loaded")
	if info.SampleRate != recognizeOpts.sampleRate {
		log.Warn().
			Uint32("sampleRate", info.SampleRate).
			Uint32("expected", recognizeOpts.sampleRate).
			Msg("Sample rate mismatch")
	}

	interactionId := recognizeOpts.interactionId
	if interactionId == "" {
		interactionId = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), recognizeOpts.timeout)
	defer cancel()

	out, err := postAudio(ctx, http.DefaultClient, recognizeOpts.server, interactionId, recognizeOpts.tenantId, pcm)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

// postAudio uploads pcm and returns the decoded JSON response.
func postAudio(ctx context.Context, client *http.Client, server, interactionId, tenantId string, pcm []byte) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, server+"/v1/speech/recognize", bytes.NewReader(pcm))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Interaction-Id", interactionId)
	req.Header.Set("X-Tenant-Id", tenantId)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload audio: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s: %s", resp.Status, bytes.TrimSpace(body))
	}

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
