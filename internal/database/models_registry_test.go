package database

import (
	"testing"

	"snapgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistentModels_ParentsFirst(t *testing.T) {
	registered := PersistentModels()
	require.Len(t, registered, 5)

	assert.IsType(t, &models.User{}, registered[0])
	assert.IsType(t, &models.Post{}, registered[1])
	assert.IsType(t, &models.Comment{}, registered[2])
	assert.IsType(t, &models.Like{}, registered[3])
	assert.IsType(t, &models.Follow{}, registered[4])
}
