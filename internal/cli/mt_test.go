package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedcat/seedprov/internal/provjson"
	"github.com/seedcat/seedprov/internal/record"
)

func TestMTCommandAdoptsIntoEmptyEditor(t *testing.T) {
	server, _ := newFakeServices(t)
	configPath, storePath := writeTestConfig(t, server.URL, "dataset", "translation")

	output, err := runCLI(t, "mt", "3", "-c", configPath, "-t", "spa_Latn")
	require.NoError(t, err)
	assert.Contains(t, output, "El rápido zorro marrón.")

	store := openTestStore(t, storePath)
	latest, ok, err := store.LatestTranslation(context.Background(), "spa_Latn", 3)
	require.NoError(t, err)
	require.True(t, ok, "suggestion should become the current translation")
	assert.Equal(t, "El rápido zorro marrón.", latest.Attributes.GetString(record.AttrContent))
	assert.Equal(t, provjson.MachineTranslationID("spa_Latn", 3), latest.WasQuotedFrom)
}

func TestMTCommandDismissesComparisonByDefault(t *testing.T) {
	server, _ := newFakeServices(t)
	configPath, storePath := writeTestConfig(t, server.URL, "dataset", "translation")

	_, err := runCLI(t, "edit", "3", "Mi traducción.", "-c", configPath, "-t", "spa_Latn")
	require.NoError(t, err)

	output, err := runCLI(t, "mt", "3", "-c", configPath, "-t", "spa_Latn")
	require.NoError(t, err)
	assert.Contains(t, output, "El rápido zorro marrón.")

	store := openTestStore(t, storePath)
	latest, ok, err := store.LatestTranslation(context.Background(), "spa_Latn", 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Mi traducción.", latest.Attributes.GetString(record.AttrContent))
}

func TestMTCommandAdoptReplacesCurrent(t *testing.T) {
	server, _ := newFakeServices(t)
	configPath, storePath := writeTestConfig(t, server.URL, "dataset", "translation")

	_, err := runCLI(t, "edit", "3", "Mi traducción.", "-c", configPath, "-t", "spa_Latn")
	require.NoError(t, err)

	_, err = runCLI(t, "mt", "3", "--adopt", "-c", configPath, "-t", "spa_Latn")
	require.NoError(t, err)

	store := openTestStore(t, storePath)
	latest, ok, err := store.LatestTranslation(context.Background(), "spa_Latn", 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "El rápido zorro marrón.", latest.Attributes.GetString(record.AttrContent))
	assert.Equal(t, provjson.MachineTranslationID("spa_Latn", 3), latest.WasQuotedFrom)

	versions, err := store.TranslationVersions(context.Background(), "spa_Latn", 3)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.NotZero(t, versions[0].InvalidatedAtTime)
}

func TestMTCommandCachesModelOutput(t *testing.T) {
	server, _ := newFakeServices(t)
	configPath, storePath := writeTestConfig(t, server.URL, "dataset", "translation")

	_, err := runCLI(t, "mt", "3", "-c", configPath, "-t", "spa_Latn")
	require.NoError(t, err)

	store := openTestStore(t, storePath)
	cached, ok, err := store.GetEntity(context.Background(), record.MachineTranslations, record.SentenceKey("spa_Latn", 3))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "El rápido zorro marrón.", cached.Attributes.GetString(record.AttrContent))
}

func TestMTCommandRecordsRemoteAgent(t *testing.T) {
	server, _ := newFakeServices(t)
	configPath, storePath := writeTestConfig(t, server.URL, "dataset", "translation")

	_, err := runCLI(t, "mt", "3", "-c", configPath, "-t", "spa_Latn")
	require.NoError(t, err)

	store := openTestStore(t, storePath)
	activities, err := store.ActivitiesBySentence(context.Background(), "spa_Latn", 3)
	require.NoError(t, err)

	var agent string
	for _, activity := range activities {
		if activity.Type == record.MachineTranslate {
			agent = activity.WasAssociatedWith
		}
	}
	assert.Equal(t, "facebook/nllb-200-distilled-600M", agent)
}

func TestMTCommandRequiresDatasetService(t *testing.T) {
	server, _ := newFakeServices(t)
	configPath, _ := writeTestConfig(t, server.URL, "translation")

	_, err := runCLI(t, "mt", "3", "-c", configPath, "-t", "spa_Latn")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no dataset service configured")
}

func TestMTCommandRequiresTranslationService(t *testing.T) {
	server, _ := newFakeServices(t)
	configPath, _ := writeTestConfig(t, server.URL, "dataset")

	_, err := runCLI(t, "mt", "3", "-c", configPath, "-t", "spa_Latn")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no translation service configured")
}
