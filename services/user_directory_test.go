package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pivotalcli/config"
	"pivotalcli/models"
)

var members = models.Directory{
	"TEST_TEST":  {ID: 123456, Name: "TEST R. TESTER"},
	"OTHER_TEST": {ID: 444444, Name: "OTHER R. TESTER"},
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".pt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadOrBuildWithoutCacheQueriesMembers(t *testing.T) {
	path := writeConfig(t, "api_token: TOKEN\nproject_id: \"42\"\nusernames:\n  - TEST_TEST\n")
	doc, err := config.ReadDocument(path)
	require.NoError(t, err)

	lister := &listerMock{}
	lister.On("ListMembers", mock.Anything).Return(members, nil).Once()

	dir, err := NewUserDirectory(lister, doc).LoadOrBuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, members, dir)
	lister.AssertExpectations(t)

	reloaded, err := config.ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, members, reloaded.Directory())
}

func TestLoadOrBuildWithCacheSkipsMembers(t *testing.T) {
	path := writeConfig(t, `api_token: TOKEN
project_id: "42"
usernames:
  - TEST_TEST
username_to_user_id_map:
  TEST_TEST:
    id: 123456
    name: TEST R. TESTER
`)
	doc, err := config.ReadDocument(path)
	require.NoError(t, err)

	lister := &listerMock{}
	dir, err := NewUserDirectory(lister, doc).LoadOrBuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Directory{"TEST_TEST": {ID: 123456, Name: "TEST R. TESTER"}}, dir)
	lister.AssertNotCalled(t, "ListMembers", mock.Anything)
}

func TestSecondStartupUsesPersistedDirectory(t *testing.T) {
	path := writeConfig(t, "api_token: TOKEN\nproject_id: \"42\"\nusernames: [TEST_TEST]\n")

	first := &listerMock{}
	first.On("ListMembers", mock.Anything).Return(members, nil).Once()
	doc, err := config.ReadDocument(path)
	require.NoError(t, err)
	built, err := NewUserDirectory(first, doc).LoadOrBuild(context.Background())
	require.NoError(t, err)

	second := &listerMock{}
	doc, err = config.ReadDocument(path)
	require.NoError(t, err)
	loaded, err := NewUserDirectory(second, doc).LoadOrBuild(context.Background())
	require.NoError(t, err)

	assert.Equal(t, built, loaded)
	first.AssertExpectations(t)
	second.AssertNotCalled(t, "ListMembers", mock.Anything)
}

func TestRebuildOverwritesCache(t *testing.T) {
	path := writeConfig(t, `api_token: TOKEN
project_id: "42"
usernames: [TEST_TEST]
username_to_user_id_map:
  GONE_USER:
    id: 1
    name: Gone
`)
	doc, err := config.ReadDocument(path)
	require.NoError(t, err)

	lister := &listerMock{}
	lister.On("ListMembers", mock.Anything).Return(members, nil).Once()

	dir, err := NewUserDirectory(lister, doc).Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, members, dir)

	reloaded, err := config.ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, members, reloaded.Directory())
}

func TestRebuildFailureKeepsFile(t *testing.T) {
	before := "api_token: TOKEN\nproject_id: \"42\"\nusernames: [TEST_TEST]\n"
	path := writeConfig(t, before)
	doc, err := config.ReadDocument(path)
	require.NoError(t, err)

	lister := &listerMock{}
	lister.On("ListMembers", mock.Anything).Return(nil, errors.New("Failed to reach API.")).Once()

	dir, err := NewUserDirectory(lister, doc).Rebuild(context.Background())
	require.Error(t, err)
	assert.Empty(t, dir)
	assert.Contains(t, err.Error(), "Failed to reach API.")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, string(data))
}

func TestUserIDs(t *testing.T) {
	assert.Equal(t, []int64{444444, 123456}, UserIDs(members, []string{"OTHER_TEST", "NOBODY", "TEST_TEST"}))
	assert.Empty(t, UserIDs(members, nil))
}
