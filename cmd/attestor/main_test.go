package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/attestor"
	"github.com/poiesic/attestor/ai/mock"
	"github.com/poiesic/attestor/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// runApp runs the CLI with args and returns what it wrote to stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run(append([]string{"attestor"}, args...))
	return out.String(), err
}

// withProvider routes every engine the CLI opens through a mock provider.
func withProvider(t *testing.T, completer *mock.MockCompleter) {
	t.Helper()
	previous := newEngine
	newEngine = func(path string, opts ...attestor.EngineOption) (*attestor.Engine, error) {
		opts = append(opts, attestor.WithProvider(mock.NewMockProviderWithCompleter(completer)))
		return attestor.NewEngine(path, opts...)
	}
	t.Cleanup(func() { newEngine = previous })
}

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func findFlag[T cli.Flag](t *testing.T, cmd *cli.Command, name string) T {
	t.Helper()
	for _, flag := range cmd.Flags {
		if f, ok := flag.(T); ok && flag.Names()[0] == name {
			return f
		}
	}
	t.Fatalf("flag %q not found on %s", name, cmd.Name)
	var zero T
	return zero
}

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	cmd := app.Command(name)
	require.NotNil(t, cmd, "command %q", name)
	return cmd
}

func TestSearchCommandFlags(t *testing.T) {
	cmd := findCommand(t, newApp(), "search")

	t.Run("questions is required", func(t *testing.T) {
		_, err := runApp(t, "search", "--db", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "questions")
	})

	t.Run("host has default value", func(t *testing.T) {
		assert.Equal(t, "http://localhost:11434/v1", findFlag[*cli.StringFlag](t, cmd, "host").Value)
	})

	t.Run("db is optional so the config file can supply it", func(t *testing.T) {
		assert.False(t, findFlag[*cli.StringFlag](t, cmd, "db").Required)
	})

	t.Run("batch-size has default value of 5", func(t *testing.T) {
		assert.Equal(t, 5, findFlag[*cli.IntFlag](t, cmd, "batch-size").Value)
	})

	t.Run("timeout has default value of 60s", func(t *testing.T) {
		assert.Equal(t, 60*time.Second, findFlag[*cli.DurationFlag](t, cmd, "timeout").Value)
	})

	t.Run("limit defaults to all questions", func(t *testing.T) {
		assert.Equal(t, 0, findFlag[*cli.IntFlag](t, cmd, "limit").Value)
	})
}

func TestIngestCommandValidation(t *testing.T) {
	t.Run("missing db flag fails", func(t *testing.T) {
		_, err := runApp(t, "ingest", "--dir", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("missing dir flag fails", func(t *testing.T) {
		_, err := runApp(t, "ingest", "--db", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dir")
	})

	t.Run("unknown default category fails", func(t *testing.T) {
		_, err := runApp(t, "ingest", "--db", t.TempDir(), "--dir", t.TempDir(), "--default-category", "astrology")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrUnknownCategory)
	})
}

func TestCategoriesCommand(t *testing.T) {
	out, err := runApp(t, "categories")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(core.Categories()))
	assert.Equal(t, "administration", lines[0])
	assert.Contains(t, lines, "utilization-management")
}

func TestIngestListAndSearch(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "Available categories:") {
			return `["utilization-management"]`, nil
		}
		if strings.Contains(prompt, "Policy: UM-200") {
			return `{"found": true, "excerpt": "within seventy-two (72) hours", "confidence": 0.92}`, nil
		}
		return `{"found": false, "excerpt": "", "confidence": 0}`, nil
	}
	withProvider(t, completer)

	db := filepath.Join(t.TempDir(), "corpus")
	policies := t.TempDir()
	writeFile(t, policies, "um-200.md", "---\npolicy_number: UM-200\npolicy_name: Prior Authorization\ncategory: utilization-management\n---\nUrgent requests are decided within seventy-two (72) hours.")
	writeFile(t, policies, "um-100.md", "---\npolicy_number: UM-100\npolicy_name: Concurrent Review\ncategory: utilization-management\n---\nInpatient stays are reviewed daily.")
	writeFile(t, policies, "fin-1.txt", "Claims are paid within 30 days.")

	out, err := runApp(t, "ingest", "--db", db, "--dir", policies, "--default-category", "financial")
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 3 policies")

	out, err = runApp(t, "list", "--db", db, "--category", "utilization-management")
	require.NoError(t, err)
	assert.Contains(t, out, "UM-100")
	assert.Contains(t, out, "UM-200")
	assert.NotContains(t, out, "fin-1")

	questions := writeFile(t, t.TempDir(), "questions.json",
		`[{"number": 4, "text": "Are urgent requests decided within 72 hours?"}, {"number": 9, "text": "Is there a second question?"}]`)

	out, err = runApp(t, "search", "--db", db, "--questions", questions, "--limit", "1", "--retries", "0")
	require.NoError(t, err)

	var results map[string]*core.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	require.Contains(t, results, "4")
	assert.Equal(t, core.StatusMet, results["4"].Status)
	require.NotNil(t, results["4"].Evidence)
	assert.Equal(t, "UM-200", results["4"].Evidence.PolicyNumber)
	assert.Equal(t, "within seventy-two (72) hours", results["4"].Evidence.Excerpt)
}

func TestSearchCommandWritesOutputFile(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(context.Context, string) (string, error) {
		return `[]`, nil
	}
	withProvider(t, completer)

	dir := t.TempDir()
	questions := writeFile(t, dir, "questions.yaml", "- number: 1\n  text: Is anything covered?\n")
	output := filepath.Join(dir, "results.json")

	out, err := runApp(t, "search", "--db", filepath.Join(dir, "corpus"), "--questions", questions, "--output", output)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var results map[string]*core.SearchResult
	require.NoError(t, json.Unmarshal(data, &results))
	assert.Equal(t, core.StatusUnderReview, results["1"].Status, "no routed categories leaves the question under review")
}

func TestSearchSettingsPrecedence(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "attestor.yaml", strings.Join([]string{
		"db: " + filepath.Join(dir, "from-config"),
		"host: http://inference.internal:8000",
		"model: from-config",
		"batch_size: 9",
		"timeout: 5s",
		"cache_ttl: 10m",
		"retries: 0",
	}, "\n"))

	var got *searchSettings
	app := newApp()
	cmd := findCommand(t, app, "search")
	cmd.Action = func(c *cli.Context) error {
		cfg, err := loadConfig(c.String("config"))
		if err != nil {
			return err
		}
		got, err = resolveSearchSettings(c, cfg)
		return err
	}
	app.Writer = &bytes.Buffer{}

	err := app.Run([]string{"attestor", "search", "--config", config, "--questions", "q.yaml", "--model", "from-flag"})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, filepath.Join(dir, "from-config"), got.db)
	assert.Equal(t, "http://inference.internal:8000/v1", got.aiConfig.Host, "host is normalized")
	assert.Equal(t, "from-flag", got.aiConfig.Model, "explicit flags win over the config file")
	assert.Equal(t, 10*time.Minute, got.cacheConfig.TTL)
	assert.Len(t, got.options, 5)
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty path yields empty config", func(t *testing.T) {
		cfg, err := loadConfig("")
		require.NoError(t, err)
		assert.Equal(t, &fileConfig{}, cfg)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "bad.yaml", "batch_size: [")
		_, err := loadConfig(path)
		assert.Error(t, err)
	})

	t.Run("durations and pointers", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "ok.yaml", "request_timeout: 90s\ntemperature: 0.2\nretries: 2\n")
		cfg, err := loadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
		require.NotNil(t, cfg.Temperature)
		assert.InDelta(t, 0.2, *cfg.Temperature, 1e-9)
		require.NotNil(t, cfg.Retries)
		assert.Equal(t, 2, *cfg.Retries)
	})
}

func TestLoadQuestions(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		file string
		data string
	}{
		{"json", "q.json", `[{"number": 3, "text": "first"}, {"number": 10, "text": "second"}]`},
		{"yaml", "q.yaml", "- number: 3\n  text: first\n- number: 10\n  text: second\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, err := loadQuestions(writeFile(t, dir, tt.file, tt.data))
			require.NoError(t, err)
			assert.Equal(t, []core.Question{{Number: 3, Text: "first"}, {Number: 10, Text: "second"}}, questions)
		})
	}

	t.Run("not a list", func(t *testing.T) {
		_, err := loadQuestions(writeFile(t, dir, "bad.yaml", "number: 1\n"))
		assert.Error(t, err)
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, input := range []string{"debug", "info", "warn", "error", "DEBUG", "WaRn"} {
			t.Run(input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "log-level", Value: "info"},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error { return nil },
				}

				err := app.Run([]string{"test", "--log-level", input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("debug level enables debug records", func(t *testing.T) {
		_, err := runApp(t, "-l", "debug", "categories")
		require.NoError(t, err)
		assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		_, err := runApp(t, "--log-level", "invalid", "categories")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
