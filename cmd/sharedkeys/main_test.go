package main

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tymbaca/sharedkeys/mapreduce"
	"github.com/tymbaca/sharedkeys/mapreduce/storage/bbolt"
)

func TestRun(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(),
		[]string{"-threads", "2", "-maps", "4", "-size", "50", "-print", "-log-level", "warn"},
		&stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	require.Contains(t, out, "sharedkeys STARTED")
	require.Contains(t, out, "---- Finished MAP phase in ")
	require.Contains(t, out, "---- Finished REDUCE phase in ")
	require.Contains(t, out, "  Reduced Shared Map:")
	require.Contains(t, out, "  Reduced Unshared Map:")
	require.Contains(t, out, "stats: Records: 200")
	require.Contains(t, out, "sharedkeys DONE")

	timing := regexp.MustCompile(`(?m)^Thread \d access time \S+ s -- write/update time \S+ s$`)
	require.Len(t, timing.FindAllString(out, -1), 4)

	// every partition holds the same keys, so each thread pairs all of them
	shared := regexp.MustCompile(`(?m)^    Key \( \S+, \S+ \) Value \[-?\d+\]$`)
	require.Len(t, shared.FindAllString(out, -1), 100)
}

func TestRunWithoutPrint(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(),
		[]string{"-threads", "3", "-maps", "6", "-size", "10", "-overlap", "0", "-log-level", "error"},
		&stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	require.NotContains(t, stdout.String(), "Reduced Shared Map")
	require.Contains(t, stdout.String(), "Shared: 0")
}

func TestRunExportsToBbolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(),
		[]string{"-threads", "1", "-maps", "2", "-size", "20", "-db", path, "-log-level", "warn"},
		&stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	storage, err := bbolt.New(path)
	require.NoError(t, err)
	defer storage.Close()

	keys, err := storage.GetKeys(context.Background(), mapreduce.SharedBucket(0))
	require.NoError(t, err)
	require.Len(t, keys, 20)
}

func TestRunRejectsBadArgs(t *testing.T) {
	cases := map[string][]string{
		"no args":         nil,
		"help":            {"-h"},
		"long help":       {"--help"},
		"non numeric":     {"-threads", "two", "-maps", "4", "-size", "5"},
		"zero threads":    {"-threads", "0", "-maps", "4", "-size", "5"},
		"missing size":    {"-threads", "1", "-maps", "4"},
		"positional args": {"-threads", "1", "-maps", "4", "-size", "5", "extra"},
		"unknown flag":    {"-threads", "1", "-maps", "4", "-size", "5", "-fast"},
		"bad log level":   {"-threads", "1", "-maps", "4", "-size", "5", "-log-level", "loud"},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			code := run(context.Background(), args, &stdout, &stderr)
			require.Equal(t, 1, code)
			require.Contains(t, stderr.String(), "Usage:")
			require.Empty(t, stdout.String())
		})
	}
}
