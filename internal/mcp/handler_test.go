package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/capsim/internal/config"
	"github.com/rpggio/capsim/internal/generator"
	"github.com/rpggio/capsim/internal/repository/mocks"
)

func connect(t *testing.T, cfg Config) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := NewServer(cfg).Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	return session
}

func callGenerate(t *testing.T, session *sdkmcp.ClientSession, args map[string]any) (*sdkmcp.CallToolResult, GenerateOutput) {
	t.Helper()

	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "generate_dataset",
		Arguments: args,
	})
	require.NoError(t, err)

	var out GenerateOutput
	if !res.IsError {
		require.NotEmpty(t, res.Content)
		text, ok := res.Content[0].(*sdkmcp.TextContent)
		require.True(t, ok)
		require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	}
	return res, out
}

func TestListTools(t *testing.T) {
	session := connect(t, Config{Service: generator.NewService(nil, nil), Base: config.Default()})

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Tools, 1)
	require.Equal(t, "generate_dataset", res.Tools[0].Name)
}

func TestGenerateDataset_Defaults(t *testing.T) {
	session := connect(t, Config{Service: generator.NewService(nil, nil), Base: config.Default()})

	res, out := callGenerate(t, session, map[string]any{})
	require.False(t, res.IsError)
	require.Equal(t, 300, out.ProjectRows)
	require.Equal(t, "P1000", out.FirstProjectID)
	require.Equal(t, uint64(42), out.Seed)
	require.Greater(t, out.TimeSeriesRows, 0)
	require.False(t, out.Persisted)
}

func TestGenerateDataset_OverridesAreDeterministic(t *testing.T) {
	session := connect(t, Config{Service: generator.NewService(nil, nil), Base: config.Default()})
	args := map[string]any{"projects": 25, "sampled_projects": 2, "seed": 7}

	_, a := callGenerate(t, session, args)
	_, b := callGenerate(t, session, args)

	require.Equal(t, 25, a.ProjectRows)
	require.Equal(t, uint64(7), a.Seed)
	require.Equal(t, a.MeanFinalCost, b.MeanFinalCost)
	require.Equal(t, a.TimeSeriesRows, b.TimeSeriesRows)
	require.NotEqual(t, a.RunID, b.RunID)
}

func TestGenerateDataset_Persist(t *testing.T) {
	writer := &mocks.Writer{}
	writer.On("Write", mock.Anything, mock.Anything).Return(nil)
	session := connect(t, Config{Service: generator.NewService(writer, nil), Base: config.Default()})

	res, out := callGenerate(t, session, map[string]any{"projects": 10, "persist": true})
	require.False(t, res.IsError)
	require.True(t, out.Persisted)
	writer.AssertNumberOfCalls(t, "Write", 1)
}

func TestGenerateDataset_InvalidConfiguration(t *testing.T) {
	session := connect(t, Config{Service: generator.NewService(nil, nil), Base: config.Default()})

	res, _ := callGenerate(t, session, map[string]any{"projects": 3})
	require.True(t, res.IsError)
}

func TestTrafficLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	session := connect(t, Config{Service: generator.NewService(nil, nil), Base: config.Default(), Logger: logger})

	res, _ := callGenerate(t, session, map[string]any{"projects": 10})
	require.False(t, res.IsError)

	logs := buf.String()
	require.Contains(t, logs, "mcp traffic")
	require.Contains(t, logs, "method=tools/call")
	require.Contains(t, logs, "tool=generate_dataset")
	require.Contains(t, logs, "stage=response")
}

func TestFormatPayload(t *testing.T) {
	require.Equal(t, "<nil>", formatPayload(nil))
	require.Equal(t, `{"a":1}`, formatPayload(map[string]int{"a": 1}))
	require.Equal(t, "chan int", formatPayload(make(chan int)))

	long := formatPayload(strings.Repeat("x", maxPayloadLog*2))
	require.True(t, strings.HasSuffix(long, "bytes)"))
	require.Less(t, len(long), maxPayloadLog+32)
}
