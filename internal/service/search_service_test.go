package service

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/require"

	"github.com/rizalarfiyan/siakad-backend/internal/model"
)

func TestStudentIDFromHit(t *testing.T) {
	id := uuid.New()
	hit := meilisearch.Hit{
		"id":     json.RawMessage(`"` + id.String() + `"`),
		"name":   json.RawMessage(`"Student One"`),
		"rollNo": json.RawMessage(`"r1"`),
	}

	got, ok := studentIDFromHit(hit)
	require.True(t, ok)
	require.Equal(t, id, got)
}

func TestStudentIDFromHitSkipsMalformed(t *testing.T) {
	_, ok := studentIDFromHit(meilisearch.Hit{"id": json.RawMessage(`"not-a-uuid"`)})
	require.False(t, ok)

	_, ok = studentIDFromHit(meilisearch.Hit{"id": json.RawMessage(`123`)})
	require.False(t, ok)

	_, ok = studentIDFromHit(meilisearch.Hit{})
	require.False(t, ok)
}

func TestSearchServiceNoOpsWithoutClient(t *testing.T) {
	svc := NewSearchService(nil)
	require.False(t, svc.Enabled())

	ids, err := svc.SearchStudents("anything")
	require.NoError(t, err)
	require.Nil(t, ids)

	require.NoError(t, svc.IndexStudent(&model.Student{ID: uuid.New()}))
	require.NoError(t, svc.RemoveStudent(uuid.New()))
}
