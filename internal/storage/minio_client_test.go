package storage

import (
	"encoding/json"
	"testing"
	"time"

	"hidaya/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	tests := []struct {
		name string
		flag *models.Flag
		want string
	}{
		{
			name: "answer",
			flag: &models.Flag{FlagID: "f1", ItemType: models.ItemAnswer, ItemID: "a1"},
			want: "flags/f1/answer-a1.json",
		},
		{
			name: "question",
			flag: &models.Flag{FlagID: "f2", ItemType: models.ItemQuestion, ItemID: "q9"},
			want: "flags/f2/question-q9.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectName(tt.flag))
		})
	}
}

func TestEncodeSnapshot(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	flag := &models.Flag{FlagID: "f1", ItemType: models.ItemAnswer, ItemID: "a1", Status: models.FlagResolved}
	answer := &models.Answer{AnswerID: "a1", Text: "removed text"}

	body, err := EncodeSnapshot(flag, answer, at)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))

	assert.Equal(t, "2025-01-02T03:04:05Z", decoded["archivedAt"])
	assert.Equal(t, "resolved", decoded["flag"].(map[string]any)["status"])
	assert.Equal(t, "removed text", decoded["content"].(map[string]any)["text"])
}
