package cmd

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func wavBytes(format, channels uint16, rate uint32, bits uint16, pcm []byte) []byte {
	h := make([]byte, wavHeaderSize)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+len(pcm)))
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], format)
	binary.LittleEndian.PutUint16(h[22:24], channels)
	binary.LittleEndian.PutUint32(h[24:28], rate)
	binary.LittleEndian.PutUint32(h[28:32], rate*uint32(channels)*uint32(bits/8))
	binary.LittleEndian.PutUint16(h[32:34], channels*bits/8)
	binary.LittleEndian.PutUint16(h[34:36], bits)
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(len(pcm)))
	return append(h, pcm...)
}

func TestReadWAV(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	info, got, err := readWAV(bytes.NewReader(wavBytes(1, 1, 16000, 16, pcm)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.SampleRate != 16000 || info.Channels != 1 {
		t.Errorf("unexpected info: %+v", info)
	}
	if !bytes.Equal(got, pcm) {
		t.Errorf("expected pcm %v, got %v", pcm, got)
	}
}

func TestReadWAV_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short", []byte("RIFF")},
		{"not wav", bytes.Repeat([]byte{0}, wavHeaderSize)},
		{"not pcm", wavBytes(3, 1, 16000, 16, nil)},
		{"stereo", wavBytes(1, 2, 16000, 16, nil)},
		{"8-bit", wavBytes(1, 1, 16000, 8, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := readWAV(bytes.NewReader(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPostAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/speech/recognize" || r.Header.Get("X-Interaction-Id") != "int-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(map[string]any{"interactionId": "int-1", "bytes": len(body)})
	}))
	defer srv.Close()

	out, err := postAudio(context.Background(), srv.Client(), srv.URL, "int-1", "t-1", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["bytes"] != float64(3) {
		t.Errorf("expected 3 bytes uploaded, got %v", out["bytes"])
	}

	_, err = postAudio(context.Background(), srv.Client(), srv.URL, "other", "t-1", []byte{1})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("expected 400 error, got %v", err)
	}
}

func TestProcessCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"process", "--timezone", "UTC", "--reference", "2025-06-10", "--json", "明天3点开会"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var res struct {
		CorrectedText string `json:"correctedText"`
		EventInfo     struct {
			Date      string `json:"date"`
			StartTime string `json:"startTime"`
		} `json:"eventInfo"`
	}
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("invalid output %q: %v", out.String(), err)
	}
	if res.EventInfo.Date != "2025-06-11" || res.EventInfo.StartTime != "03:00" {
		t.Errorf("unexpected event: %+v", res.EventInfo)
	}
}
