package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLaunchRequiresCasePath(t *testing.T) {
	cmd := launchCmd(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.True(t, cmd.Hidden)

	err := cmd.Run(context.Background(), []string{"launch"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "case path")
}

func TestLaunchRequiresChildSpec(t *testing.T) {
	t.Setenv("FUZZKIT_CHILD_SPEC", "")

	cmd := launchCmd(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := cmd.Run(context.Background(), []string{"launch", "/tmp/case1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "FUZZKIT_CHILD_SPEC")
}
