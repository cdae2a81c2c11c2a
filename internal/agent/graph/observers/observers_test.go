package observers

import (
	"context"
	"errors"
	"strings"
	"testing"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"
)

func TestHandlersTolerateEmptyPayloads(t *testing.T) {
	ctx := context.Background()
	info := &einocb.RunInfo{Name: "test"}

	mh := newModelHandler()
	require.NotPanics(t, func() {
		mh.OnStart(ctx, info, nil)
		mh.OnStart(ctx, info, &model.CallbackInput{Messages: []*schema.Message{nil, schema.UserMessage("hi")}})
		mh.OnEnd(ctx, info, nil)
		mh.OnEnd(ctx, info, &model.CallbackOutput{Message: schema.AssistantMessage("ok", nil)})
		mh.OnError(ctx, info, errors.New("x"))
	})

	ph := newPromptHandler()
	require.NotPanics(t, func() {
		ph.OnEnd(ctx, info, nil)
		ph.OnEnd(ctx, info, &prompt.CallbackOutput{Result: []*schema.Message{nil}})
		ph.OnError(ctx, info, errors.New("x"))
	})

	require.NotNil(t, NewAllCallbacks())
	require.NotNil(t, NewPromptCallbacks())
}

func TestLastUserContent(t *testing.T) {
	msgs := []*schema.Message{
		schema.SystemMessage("sys"),
		schema.UserMessage(" first "),
		schema.AssistantMessage("reply", nil),
		schema.UserMessage(" second "),
		nil,
	}
	require.Equal(t, "second", lastUserContent(msgs))
	require.Equal(t, "", lastUserContent(nil))
}

func TestClip(t *testing.T) {
	require.Equal(t, "short", clip("short"))
	long := strings.Repeat("a", maxLoggedContent+10)
	require.Equal(t, strings.Repeat("a", maxLoggedContent)+"...", clip(long))
}
