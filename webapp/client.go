package webapp

import (
	"context"

	"github.com/skillsenselab/voicenotes/httpclient"
)

// transcribeRequest mirrors the transcriber's POST /transcripts body.
type transcribeRequest struct {
	AudioFilePath string `json:"audio_file_path"`
}

// transcribeResponse mirrors the transcriber's success body.
type transcribeResponse struct {
	Message    string `json:"message"`
	Transcript string `json:"transcript"`
}

// RemoteTranscriber calls the transcriber service over HTTP.
type RemoteTranscriber struct {
	client *httpclient.Client
}

// NewRemoteTranscriber creates a RemoteTranscriber on an existing client.
func NewRemoteTranscriber(client *httpclient.Client) *RemoteTranscriber {
	return &RemoteTranscriber{client: client}
}

// RequestTranscription asks the transcriber to ingest the named audio file.
// Any non-2xx response or transport failure is returned as an error; the
// caller decides whether that is fatal.
func (t *RemoteTranscriber) RequestTranscription(ctx context.Context, audioFile string) error {
	_, err := httpclient.PostJSON[transcribeResponse](ctx, t.client, "/transcripts",
		transcribeRequest{AudioFilePath: audioFile})
	return err
}
