package chat_test

import (
	"context"
	"errors"
	"testing"

	"codearena/internal/chat"
	"codearena/internal/model"
	"codearena/internal/testutil"
	pkgerrors "codearena/pkg/errors"
)

type fakeSender struct {
	chunks []string
	err    error
	got    []string
}

func (f *fakeSender) Send(ctx context.Context, message string, pctx model.ProblemContext, onChunk func(string)) error {
	f.got = append(f.got, message)
	for _, c := range f.chunks {
		onChunk(c)
	}
	return f.err
}

func TestConversationRecordsExchange(t *testing.T) {
	sender := &fakeSender{chunks: []string{"Use ", "a loop."}}
	conv := chat.NewConversation(sender)

	var streamed string
	answer, err := conv.Ask(context.Background(), "  how?  ", model.ProblemContext{}, func(s string) { streamed += s })
	testutil.MustNoError(t, err)

	testutil.AssertEqual(t, answer.Content, "Use a loop.")
	testutil.AssertEqual(t, streamed, "Use a loop.")
	testutil.AssertEqual(t, sender.got[0], "how?")

	msgs := conv.Messages()
	testutil.AssertEqual(t, len(msgs), 2)
	testutil.AssertEqual(t, msgs[0].Role, model.RoleUser)
	testutil.AssertEqual(t, msgs[1].Role, model.RoleAssistant)
	testutil.AssertTrue(t, msgs[0].ID != "" && msgs[0].ID != msgs[1].ID, "messages get distinct ids")
}

func TestConversationApologisesOnFailure(t *testing.T) {
	sender := &fakeSender{chunks: []string{"partial"}, err: errors.New("connection reset")}
	conv := chat.NewConversation(sender)

	answer, err := conv.Ask(context.Background(), "hint", model.ProblemContext{}, nil)
	testutil.AssertTrue(t, err != nil, "error is returned to the caller")
	testutil.AssertEqual(t, answer.Content, chat.ApologyMessage)
	testutil.AssertEqual(t, conv.Messages()[1].Content, chat.ApologyMessage)
}

func TestConversationReset(t *testing.T) {
	conv := chat.NewConversation(&fakeSender{chunks: []string{"ok"}})
	_, _ = conv.Ask(context.Background(), "hello", model.ProblemContext{}, nil)
	testutil.AssertEqual(t, len(conv.Messages()), 2)

	conv.Reset()
	testutil.AssertEqual(t, len(conv.Messages()), 0)
}

func TestConversationRejectsBlankMessage(t *testing.T) {
	sender := &fakeSender{chunks: []string{"unused"}}
	conv := chat.NewConversation(sender)

	_, err := conv.Ask(context.Background(), "   ", model.ProblemContext{}, nil)
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.ChatMessageEmpty), "blank message is a validation error")
	testutil.AssertEqual(t, len(conv.Messages()), 0)
	testutil.AssertEqual(t, len(sender.got), 0)
}
