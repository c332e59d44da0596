package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/config"
	"github.com/erazemk/lostfound/internal/mirror"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

func TestNewSinkChoice(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sheet := newSink(config.Mirror{SheetURL: "http://sheet.test/", KafkaBrokers: []string{"k:9092"}}, logger)
	assert.IsType(t, &mirror.SheetSink{}, sheet)

	kafka := newSink(config.Mirror{KafkaBrokers: []string{"k:9092"}, KafkaTopic: "items"}, logger)
	assert.IsType(t, &mirror.KafkaSink{}, kafka)
	assert.NoError(t, kafka.Close())

	assert.IsType(t, &mirror.LogSink{}, newSink(config.Mirror{}, logger))
}

func TestInitDatabaseCreatesAdmin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "init.sqlite3")

	database, password, err := initDatabase(path, "desk@school.edu")
	require.NoError(t, err)
	defer database.Close()

	assert.Len(t, password, 16)
	assert.NoError(t, model.ValidatePassword(password))

	admin, err := store.GetUserByEmail(context.Background(), database, "desk@school.edu")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, password))
}
