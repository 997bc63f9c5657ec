package chat

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"codearena/internal/common/httpclient"
	"codearena/internal/model"
	pkgerrors "codearena/pkg/errors"
	"codearena/pkg/utils/logger"

	"go.uber.org/zap"
)

// ChatPath is the assistant endpoint, relative to the API base.
const ChatPath = "/codeassist/chat"

const readBufferSize = 4096

// Client streams assistant replies.
type Client struct {
	client *httpclient.Client
}

func NewClient(client *httpclient.Client) *Client {
	return &Client{client: client}
}

// Send posts the message with its problem context and hands every piece of
// the streamed reply to onChunk, in arrival order, until the stream ends.
// onChunk is never called when the initial request fails.
func (c *Client) Send(ctx context.Context, message string, pctx model.ProblemContext, onChunk func(string)) error {
	if strings.TrimSpace(message) == "" {
		return pkgerrors.New(pkgerrors.ChatMessageEmpty)
	}
	if pctx.UserID == "" {
		pctx.UserID = model.GuestUserID
	}

	logger.Debug(ctx, "sending chat message", zap.Int("message_length", len(message)), zap.String("concept", pctx.Concept))
	resp, err := c.client.OpenStream(ctx, ChatPath, model.ChatRequest{Message: message, Context: pctx})
	if err != nil {
		return httpclient.RequestError("Failed to send message", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !resp.OK() {
		body, _ := io.ReadAll(resp.Body)
		statusErr := httpclient.StatusError("Failed to send message", resp.StatusCode, body)
		if resp.StatusCode == http.StatusTooManyRequests {
			statusErr.Code = pkgerrors.ChatRateLimited
		}
		logger.Warn(ctx, "chat request rejected", zap.Int("status", resp.StatusCode))
		return statusErr
	}

	return consume(ctx, resp.Body, onChunk)
}

func consume(ctx context.Context, body io.Reader, onChunk func(string)) error {
	buf := make([]byte, readBufferSize)
	chunks := 0
	for {
		n, err := body.Read(buf)
		if n > 0 {
			chunks++
			if onChunk != nil {
				onChunk(string(buf[:n]))
			}
		}
		if errors.Is(err, io.EOF) {
			logger.Debug(ctx, "chat stream finished", zap.Int("chunks", chunks))
			return nil
		}
		if err != nil {
			if ctxErr := pkgerrors.FromContext(ctx.Err()); ctxErr != nil {
				return ctxErr
			}
			logger.Warn(ctx, "chat stream interrupted", zap.Int("chunks", chunks), zap.Error(err))
			return pkgerrors.Wrapf(err, pkgerrors.StreamInterrupted, "chat stream interrupted: %v", err).
				WithDetail("chunks", chunks)
		}
	}
}
