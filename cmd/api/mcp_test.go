package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcLine struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int            `json:"id"`
	Result  json.RawMessage `json:"result"`
}

func TestRunMCP_StdoutCarriesOnlyJSONRPC(t *testing.T) {
	for _, key := range []string{
		"CALENDARBOT_CONFIG", "ENV", "DB_PATH", "HISTORY_BACKEND", "OVERLAP_POLICY",
		"LOG_LEVEL", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("STORE", "memory")

	prevOut, prevLevel := log.Output(), log.Level()
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetLevel(prevLevel)
	})
	log.SetLevel(log.INFO)

	stdin := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"list_appointments","arguments":{}}}`,
	}, "\n") + "\n")
	var stdout, diag bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, runMCP(ctx, stdin, &stdout, &diag))

	var lines []rpcLine
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		var line rpcLine
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line), "stdout line %q", scanner.Text())
		require.Equal(t, "2.0", line.JSONRPC, "stdout line %q", scanner.Text())
		lines = append(lines, line)
	}
	require.Len(t, lines, 2)

	require.NotNil(t, lines[0].ID)
	assert.Equal(t, 1, *lines[0].ID)
	var init struct {
		ServerInfo struct {
			Name string `json:"name"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(lines[0].Result, &init))
	assert.Equal(t, "calendarbot", init.ServerInfo.Name)

	require.NotNil(t, lines[1].ID)
	assert.Equal(t, 2, *lines[1].ID)
	assert.Contains(t, string(lines[1].Result), "You do not have any appointments")

	assert.Contains(t, diag.String(), "no .env file found")
}
